package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

// AuthMetricsOptions configures the auth outcome collectors.
type AuthMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// AuthMetrics implements port.AuthMetrics with Prometheus counters.
type AuthMetrics struct {
	Logins              *prometheus.CounterVec
	CredentialMigration *prometheus.CounterVec
	CodesIssued         *prometheus.CounterVec
	CodeCooldowns       *prometheus.CounterVec
	CodesReclaimed      prometheus.Counter
}

// NewAuthMetrics registers the auth collectors, reusing any that are already registered.
func NewAuthMetrics(opts AuthMetricsOptions) (*AuthMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "marketplace_auth"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	logins, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts partitioned by outcome.",
	}, "outcome")
	if err != nil {
		return nil, err
	}

	migrations, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_migrations_total",
		Help:      "Plaintext credentials rewritten as hashes, partitioned by owning table.",
	}, "owner")
	if err != nil {
		return nil, err
	}

	issued, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verification",
		Name:      "codes_issued_total",
		Help:      "Verification codes issued, partitioned by purpose.",
	}, "purpose")
	if err != nil {
		return nil, err
	}

	cooldowns, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verification",
		Name:      "cooldown_rejections_total",
		Help:      "Code requests rejected by the resend cooldown, partitioned by purpose.",
	}, "purpose")
	if err != nil {
		return nil, err
	}

	reclaimed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verification",
		Name:      "codes_reclaimed_total",
		Help:      "Expired verification codes removed by the janitor.",
	})
	if err := reg.Register(reclaimed); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register reclaimed collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("existing reclaimed collector has unexpected type %T", already.ExistingCollector)
		}
		reclaimed = existing
	}

	return &AuthMetrics{
		Logins:              logins,
		CredentialMigration: migrations,
		CodesIssued:         issued,
		CodeCooldowns:       cooldowns,
		CodesReclaimed:      reclaimed,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, label string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, []string{label})
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register %s collector: %w", opts.Name, err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("existing %s collector has unexpected type %T", opts.Name, already.ExistingCollector)
		}
		return existing, nil
	}
	return vec, nil
}

func (m *AuthMetrics) ObserveLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *AuthMetrics) ObserveCredentialMigration(owner domain.CredentialOwner) {
	m.CredentialMigration.WithLabelValues(string(owner)).Inc()
}

func (m *AuthMetrics) ObserveCodeIssued(purpose domain.VerificationPurpose) {
	m.CodesIssued.WithLabelValues(string(purpose)).Inc()
}

func (m *AuthMetrics) ObserveCodeCooldown(purpose domain.VerificationPurpose) {
	m.CodeCooldowns.WithLabelValues(string(purpose)).Inc()
}

func (m *AuthMetrics) ObserveCodesReclaimed(count int) {
	if count <= 0 {
		return
	}
	m.CodesReclaimed.Add(float64(count))
}

var _ port.AuthMetrics = (*AuthMetrics)(nil)

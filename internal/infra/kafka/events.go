package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types published by the auth service.
const (
	EventAccountRegistered  = "auth.account.registered"
	EventAccountClaimed     = "auth.account.claimed"
	EventCredentialMigrated = "auth.account.credential_migrated"
	EventPasswordChanged    = "auth.account.password_changed"
	EventEmailChanged       = "auth.account.email_changed"
	EventAccountDeleted     = "auth.account.deleted"
	EventVendorDeleted      = "auth.vendor.deleted"
)

// EventPublisher implements port.EventPublisher on top of the Kafka producer.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	metadata := map[string]string{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	body, err := json.Marshal(eventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	return p.producer.Send(ctx, eventType, userID, body)
}

// PublishAccountRegistered publishes auth.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Email        string         `json:"email"`
		Role         string         `json:"role"`
		VendorID     *string        `json:"vendor_id,omitempty"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Email:        event.Email,
		Role:         string(event.Role),
		VendorID:     event.VendorID,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}
	return p.publish(ctx, event.EventID, EventAccountRegistered, event.UserID, event.RegisteredAt, payload)
}

// PublishAccountClaimed publishes auth.account.claimed events.
func (p *EventPublisher) PublishAccountClaimed(ctx context.Context, event domain.AccountClaimedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		VendorID  string    `json:"vendor_id"`
		ClaimedAt time.Time `json:"claimed_at"`
	}{
		UserID:    event.UserID,
		VendorID:  event.VendorID,
		ClaimedAt: event.ClaimedAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventAccountClaimed, event.UserID, event.ClaimedAt, payload)
}

// PublishCredentialMigrated publishes auth.account.credential_migrated events.
func (p *EventPublisher) PublishCredentialMigrated(ctx context.Context, event domain.CredentialMigratedEvent) error {
	payload := struct {
		UserID     string    `json:"user_id"`
		Source     string    `json:"source"`
		MigratedAt time.Time `json:"migrated_at"`
	}{
		UserID:     event.UserID,
		Source:     string(event.Source),
		MigratedAt: event.MigratedAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventCredentialMigrated, event.UserID, event.MigratedAt, payload)
}

// PublishPasswordChanged publishes auth.account.password_changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		ChangedAt time.Time `json:"changed_at"`
		Reason    string    `json:"reason"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
		Reason:    event.Reason,
	}
	return p.publish(ctx, event.EventID, EventPasswordChanged, event.UserID, event.ChangedAt, payload)
}

// PublishEmailChanged publishes auth.account.email_changed events. The address itself is not included.
func (p *EventPublisher) PublishEmailChanged(ctx context.Context, event domain.EmailChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventEmailChanged, event.UserID, event.ChangedAt, payload)
}

// PublishAccountDeleted publishes auth.vendor.deleted for vendor-only removals and
// auth.account.deleted otherwise.
func (p *EventPublisher) PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error {
	eventType := EventAccountDeleted
	if event.VendorOnly {
		eventType = EventVendorDeleted
	}
	payload := struct {
		UserID    string    `json:"user_id"`
		VendorID  *string   `json:"vendor_id,omitempty"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		UserID:    event.UserID,
		VendorID:  event.VendorID,
		DeletedAt: event.DeletedAt.UTC(),
	}
	return p.publish(ctx, event.EventID, eventType, event.UserID, event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)

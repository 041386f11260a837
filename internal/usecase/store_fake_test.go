package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

type memState struct {
	accounts  map[string]domain.Account
	vendors   map[string]domain.Vendor
	customers map[string]domain.CustomerProfile
	codes     map[string]domain.VerificationCode
	codeOrder []string

	catalogDeletes []string
	customerWipes  []string
}

func newMemState() *memState {
	return &memState{
		accounts:  map[string]domain.Account{},
		vendors:   map[string]domain.Vendor{},
		customers: map[string]domain.CustomerProfile{},
		codes:     map[string]domain.VerificationCode{},
	}
}

func (s *memState) clone() *memState {
	out := newMemState()
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.vendors {
		out.vendors[k] = v
	}
	for k, v := range s.customers {
		out.customers[k] = v
	}
	for k, v := range s.codes {
		out.codes[k] = v
	}
	out.codeOrder = append([]string(nil), s.codeOrder...)
	out.catalogDeletes = append([]string(nil), s.catalogDeletes...)
	out.customerWipes = append([]string(nil), s.customerWipes...)
	return out
}

// memStore is an in-memory port.Store. WithinTx works on a copy that replaces the committed
// state only when fn succeeds.
type memStore struct {
	state *memState

	txCalls     int
	rollbacks   int
	failCodeAdd error
	failEnsure  error
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (m *memStore) Repositories() port.Repositories {
	return memRepositories(m, m.state)
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	m.txCalls++
	draft := m.state.clone()
	if err := fn(ctx, memRepositories(m, draft)); err != nil {
		m.rollbacks++
		return err
	}
	*m.state = *draft
	return nil
}

func memRepositories(m *memStore, st *memState) port.Repositories {
	return port.Repositories{
		Accounts:    &memAccounts{st: st},
		Vendors:     &memVendors{st: st},
		Customers:   &memCustomers{st: st, store: m},
		Codes:       &memCodes{st: st, store: m},
		Marketplace: &memMarketplace{st: st},
	}
}

func (m *memStore) addAccount(a domain.Account) {
	m.state.accounts[a.ID] = a
}

func (m *memStore) addVendor(v domain.Vendor) {
	m.state.vendors[v.ID] = v
}

func (m *memStore) account(id string) domain.Account {
	return m.state.accounts[id]
}

func (m *memStore) vendor(id string) domain.Vendor {
	return m.state.vendors[id]
}

func (m *memStore) codesFor(email string, purpose domain.VerificationPurpose) []domain.VerificationCode {
	var out []domain.VerificationCode
	for _, id := range m.state.codeOrder {
		c, ok := m.state.codes[id]
		if ok && c.Email == email && c.Purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}

type memAccounts struct{ st *memState }

func (r *memAccounts) Create(_ context.Context, a domain.Account) error {
	for _, existing := range r.st.accounts {
		if existing.Email == a.Email {
			return repository.ErrConflict
		}
	}
	r.st.accounts[a.ID] = a
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.st.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.st.accounts {
		if a.Email == email {
			out := a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAccounts) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	a, ok := r.st.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = at
	r.st.accounts[id] = a
	return nil
}

func (r *memAccounts) UpdateEmail(_ context.Context, id, email string, at time.Time) error {
	a, ok := r.st.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range r.st.accounts {
		if otherID != id && other.Email == email {
			return repository.ErrConflict
		}
	}
	a.Email = email
	a.IsEmailVerified = true
	a.UpdatedAt = at
	r.st.accounts[id] = a
	return nil
}

func (r *memAccounts) UpdateRole(_ context.Context, id string, role domain.Role, vendorID *string, at time.Time) error {
	a, ok := r.st.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Role = role
	a.VendorID = vendorID
	a.UpdatedAt = at
	r.st.accounts[id] = a
	return nil
}

func (r *memAccounts) Delete(_ context.Context, id string) error {
	if _, ok := r.st.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.st.accounts, id)
	return nil
}

type memVendors struct{ st *memState }

func (r *memVendors) Create(_ context.Context, v domain.Vendor) error {
	for _, existing := range r.st.vendors {
		if existing.Slug == v.Slug {
			return repository.ErrConflict
		}
	}
	r.st.vendors[v.ID] = v
	return nil
}

func (r *memVendors) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	v, ok := r.st.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *memVendors) GetByContactEmail(_ context.Context, email string) (*domain.Vendor, error) {
	var matches []domain.Vendor
	for _, v := range r.st.vendors {
		if strings.EqualFold(v.ContactEmail, email) {
			matches = append(matches, v)
		}
	}
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return &matches[0], nil
}

func (r *memVendors) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, v := range r.st.vendors {
		if v.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memVendors) UpdatePassword(_ context.Context, id, password string) error {
	v, ok := r.st.vendors[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Password = password
	r.st.vendors[id] = v
	return nil
}

func (r *memVendors) SetOwner(_ context.Context, id, ownerID string) error {
	v, ok := r.st.vendors[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.OwnerID = &ownerID
	r.st.vendors[id] = v
	return nil
}

func (r *memVendors) UpdateContactEmail(_ context.Context, id, email string) error {
	v, ok := r.st.vendors[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.ContactEmail = email
	r.st.vendors[id] = v
	return nil
}

func (r *memVendors) Delete(_ context.Context, id string) error {
	if _, ok := r.st.vendors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.st.vendors, id)
	return nil
}

type memCustomers struct {
	st    *memState
	store *memStore
}

func (r *memCustomers) Ensure(_ context.Context, p domain.CustomerProfile) error {
	if r.store.failEnsure != nil {
		return r.store.failEnsure
	}
	if _, ok := r.st.customers[p.UserID]; !ok {
		r.st.customers[p.UserID] = p
	}
	return nil
}

func (r *memCustomers) Delete(_ context.Context, userID string) error {
	delete(r.st.customers, userID)
	return nil
}

type memCodes struct {
	st    *memState
	store *memStore
}

func (r *memCodes) Create(_ context.Context, c domain.VerificationCode) error {
	if r.store.failCodeAdd != nil {
		return r.store.failCodeAdd
	}
	r.st.codes[c.ID] = c
	r.st.codeOrder = append(r.st.codeOrder, c.ID)
	return nil
}

func (r *memCodes) Latest(_ context.Context, email string, purpose domain.VerificationPurpose) (*domain.VerificationCode, error) {
	for i := len(r.st.codeOrder) - 1; i >= 0; i-- {
		c, ok := r.st.codes[r.st.codeOrder[i]]
		if ok && c.Email == email && c.Purpose == purpose {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCodes) InvalidateUnused(_ context.Context, email string, purpose domain.VerificationPurpose) (int64, error) {
	var n int64
	for id, c := range r.st.codes {
		if c.Email == email && c.Purpose == purpose && !c.Used {
			c.Used = true
			r.st.codes[id] = c
			n++
		}
	}
	return n, nil
}

func (r *memCodes) FindValid(_ context.Context, email, code string, purpose domain.VerificationPurpose, now time.Time) (*domain.VerificationCode, error) {
	for i := len(r.st.codeOrder) - 1; i >= 0; i-- {
		c, ok := r.st.codes[r.st.codeOrder[i]]
		if ok && c.Email == email && c.Code == code && c.Purpose == purpose && c.ValidAt(now) {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCodes) Consume(_ context.Context, id string, now time.Time) (bool, error) {
	c, ok := r.st.codes[id]
	if !ok || !c.ValidAt(now) {
		return false, nil
	}
	c.Used = true
	r.st.codes[id] = c
	return true, nil
}

func (r *memCodes) Redeem(ctx context.Context, email, code string, purpose domain.VerificationPurpose, now time.Time) (bool, error) {
	c, err := r.FindValid(ctx, email, code, purpose, now)
	if err != nil {
		return false, nil
	}
	return r.Consume(ctx, c.ID, now)
}

func (r *memCodes) MarkUsed(_ context.Context, id string) error {
	c, ok := r.st.codes[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Used = true
	r.st.codes[id] = c
	return nil
}

func (r *memCodes) Delete(_ context.Context, id string) error {
	delete(r.st.codes, id)
	return nil
}

func (r *memCodes) DeleteByEmail(_ context.Context, email string) (int64, error) {
	var n int64
	for id, c := range r.st.codes {
		if c.Email == email {
			delete(r.st.codes, id)
			n++
		}
	}
	return n, nil
}

func (r *memCodes) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, c := range r.st.codes {
		if c.ExpiresAt.Before(cutoff) {
			delete(r.st.codes, id)
			n++
		}
	}
	return n, nil
}

type memMarketplace struct{ st *memState }

func (r *memMarketplace) DeleteVendorCatalog(_ context.Context, vendorID string) error {
	r.st.catalogDeletes = append(r.st.catalogDeletes, vendorID)
	return nil
}

func (r *memMarketplace) DeleteCustomerData(_ context.Context, userID string) error {
	r.st.customerWipes = append(r.st.customerWipes, userID)
	return nil
}

type recordingSender struct {
	messages []port.VerificationMessage
	err      error
}

func (s *recordingSender) SendVerificationCode(_ context.Context, msg port.VerificationMessage) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) last() port.VerificationMessage {
	if len(s.messages) == 0 {
		return port.VerificationMessage{}
	}
	return s.messages[len(s.messages)-1]
}

type recordingMetrics struct {
	nopMetrics
	logins     map[string]int
	migrations map[domain.CredentialOwner]int
	cooldowns  int
	issued     int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{logins: map[string]int{}, migrations: map[domain.CredentialOwner]int{}}
}

func (m *recordingMetrics) ObserveLogin(outcome string) { m.logins[outcome]++ }

func (m *recordingMetrics) ObserveCredentialMigration(owner domain.CredentialOwner) {
	m.migrations[owner]++
}

func (m *recordingMetrics) ObserveCodeIssued(domain.VerificationPurpose) { m.issued++ }

func (m *recordingMetrics) ObserveCodeCooldown(domain.VerificationPurpose) { m.cooldowns++ }

type recordingPublisher struct {
	nopPublisher
	registered []domain.AccountRegisteredEvent
	claimed    []domain.AccountClaimedEvent
	migrated   []domain.CredentialMigratedEvent
	changed    []domain.PasswordChangedEvent
	deleted    []domain.AccountDeletedEvent
}

func (p *recordingPublisher) PublishAccountRegistered(_ context.Context, e domain.AccountRegisteredEvent) error {
	p.registered = append(p.registered, e)
	return nil
}

func (p *recordingPublisher) PublishAccountClaimed(_ context.Context, e domain.AccountClaimedEvent) error {
	p.claimed = append(p.claimed, e)
	return nil
}

func (p *recordingPublisher) PublishCredentialMigrated(_ context.Context, e domain.CredentialMigratedEvent) error {
	p.migrated = append(p.migrated, e)
	return nil
}

func (p *recordingPublisher) PublishPasswordChanged(_ context.Context, e domain.PasswordChangedEvent) error {
	p.changed = append(p.changed, e)
	return nil
}

func (p *recordingPublisher) PublishAccountDeleted(_ context.Context, e domain.AccountDeletedEvent) error {
	p.deleted = append(p.deleted, e)
	return nil
}

// testClock is a manually advanced clock.
type testClock struct{ t time.Time }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

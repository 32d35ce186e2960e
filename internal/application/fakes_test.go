package application

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
)

func pairKey(a, b uuid.UUID) string { return a.String() + "|" + b.String() }

func outboxEventStub() ports.OutboxEvent {
	return ports.OutboxEvent{EventID: uuid.New(), EventType: "test.stub", OccurredAt: time.Now().UTC()}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *fakeUserRepo) CreateWithOutboxTx(_ context.Context, params ports.CreateUserTxParams, _ ports.OutboxEvent) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == params.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	user := domain.User{
		UserID:       uuid.New(),
		Email:        params.Email,
		FullName:     params.FullName,
		Phone:        params.Phone,
		DocumentID:   params.DocumentID,
		PasswordHash: params.PasswordHash,
		RegisteredBy: params.RegisteredBy,
		CreatedAt:    params.SignedUpAt,
		UpdatedAt:    params.SignedUpAt,
	}
	r.users[user.UserID] = user
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.DeletedAt != nil {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetConfirmed(_ context.Context, userID uuid.UUID, confirmed bool, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Confirmed = confirmed
	u.UpdatedAt = updatedAt
	r.users[userID] = u
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]domain.Event)}
}

func (r *fakeEventRepo) GetByID(_ context.Context, eventID uuid.UUID) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return ev, nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[uuid.UUID]domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[uuid.UUID]domain.Role)}
}

func (r *fakeRoleRepo) GetByID(_ context.Context, roleID uuid.UUID) (domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleID]
	if !ok {
		return domain.Role{}, domain.ErrNotFound
	}
	return role, nil
}

func (r *fakeRoleRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Role
	for _, role := range r.roles {
		if role.EventID == eventID {
			out = append(out, role)
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	mu      sync.Mutex
	byPair  map[string][]domain.RoleAssignment
	roles   *fakeRoleRepo
	pay     *fakePaymentRepo
	listErr error
}

func newFakeAssignmentRepo(roles *fakeRoleRepo, pay *fakePaymentRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{byPair: make(map[string][]domain.RoleAssignment), roles: roles, pay: pay}
}

func (r *fakeAssignmentRepo) ListByUserEvent(_ context.Context, userID, eventID uuid.UUID) ([]domain.RoleAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	src := r.byPair[pairKey(userID, eventID)]
	out := make([]domain.RoleAssignment, len(src))
	copy(out, src)
	return out, nil
}

func (r *fakeAssignmentRepo) ReplaceTx(ctx context.Context, userID, eventID uuid.UUID, roleIDs []uuid.UUID, assignedAt time.Time, _ ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]domain.RoleAssignment, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role, err := r.roles.GetByID(ctx, roleID)
		if err != nil {
			return err
		}
		next = append(next, domain.RoleAssignment{
			UserID:     userID,
			EventID:    eventID,
			RoleID:     role.RoleID,
			RoleName:   role.Name,
			Category:   role.Category,
			AssignedAt: assignedAt,
		})
	}
	if domain.CountExclusive(next) > 1 {
		return domain.ErrExclusivityViolation
	}
	r.byPair[pairKey(userID, eventID)] = next
	return nil
}

func (r *fakeAssignmentRepo) SwapExclusiveTx(ctx context.Context, userID, eventID, newRoleID, oldRoleID uuid.UUID, newFee domain.RegistrationFee, swappedAt time.Time, _ ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(userID, eventID)
	current := r.byPair[key]
	next := make([]domain.RoleAssignment, 0, len(current))
	swapped := false
	for _, a := range current {
		if a.RoleID == oldRoleID {
			role, err := r.roles.GetByID(ctx, newRoleID)
			if err != nil {
				return err
			}
			next = append(next, domain.RoleAssignment{
				UserID:     userID,
				EventID:    eventID,
				RoleID:     role.RoleID,
				RoleName:   role.Name,
				Category:   role.Category,
				AssignedAt: swappedAt,
			})
			swapped = true
			continue
		}
		next = append(next, a)
	}
	if !swapped {
		return domain.ErrNotFound
	}
	r.byPair[key] = next
	r.pay.repoint(userID, eventID, newRoleID, newFee, swappedAt)
	return nil
}

type fakeFeeRepo struct {
	mu   sync.Mutex
	fees map[string]domain.RegistrationFee
}

func newFakeFeeRepo() *fakeFeeRepo {
	return &fakeFeeRepo{fees: make(map[string]domain.RegistrationFee)}
}

func (r *fakeFeeRepo) put(fee domain.RegistrationFee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees[pairKey(fee.EventID, fee.RoleID)] = fee
}

func (r *fakeFeeRepo) GetByEventRole(_ context.Context, eventID, roleID uuid.UUID) (domain.RegistrationFee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fee, ok := r.fees[pairKey(eventID, roleID)]
	if !ok {
		return domain.RegistrationFee{}, domain.ErrNotFound
	}
	return fee, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]domain.Payment)}
}

func (r *fakePaymentRepo) CreateTx(_ context.Context, params ports.CreatePaymentParams, _ ports.OutboxEvent) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(params.UserID, params.EventID)
	if _, ok := r.payments[key]; ok {
		return domain.Payment{}, domain.ErrConflict
	}
	var seq int64 = 1
	for _, p := range r.payments {
		if p.EventID == params.EventID {
			seq++
		}
	}
	payment := domain.Payment{
		PaymentID:   uuid.New(),
		UserID:      params.UserID,
		EventID:     params.EventID,
		RoleID:      params.RoleID,
		FeeID:       params.FeeID,
		AmountCents: params.AmountCents,
		Currency:    params.Currency,
		Status:      params.Status,
		Reference:   domain.PaymentReference(seq),
		CreatedAt:   params.CreatedAt,
		UpdatedAt:   params.CreatedAt,
	}
	r.payments[key] = payment
	return payment, nil
}

func (r *fakePaymentRepo) GetByUserEvent(_ context.Context, userID, eventID uuid.UUID) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[pairKey(userID, eventID)]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) repoint(userID, eventID, roleID uuid.UUID, fee domain.RegistrationFee, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(userID, eventID)
	p, ok := r.payments[key]
	if !ok {
		return
	}
	p.RoleID = roleID
	p.FeeID = fee.FeeID
	p.AmountCents = fee.AmountCents
	p.Currency = fee.Currency
	p.UpdatedAt = at
	r.payments[key] = p
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, params ports.SessionCreateParams) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := domain.Session{
		SessionID:      uuid.New(),
		UserID:         params.UserID,
		IPAddress:      params.IPAddress,
		UserAgent:      params.UserAgent,
		CreatedAt:      params.LastActivityAt,
		LastActivityAt: params.LastActivityAt,
		ExpiresAt:      params.ExpiresAt,
	}
	r.sessions[session.SessionID] = session
	return session, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, sessionID uuid.UUID) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) TouchActivity(_ context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastActivityAt = touchedAt
	r.sessions[sessionID] = s
	return nil
}

func (r *fakeSessionRepo) RevokeByID(_ context.Context, sessionID uuid.UUID, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.RevokedAt = &revokedAt
	r.sessions[sessionID] = s
	return nil
}

type confirmationToken struct {
	userID    uuid.UUID
	expiresAt time.Time
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	tokens map[string]confirmationToken
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: make(map[string]confirmationToken)}
}

func (r *fakeVerificationRepo) CreateConfirmationToken(_ context.Context, userID uuid.UUID, tokenHash string, _, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenHash] = confirmationToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *fakeVerificationRepo) ConsumeConfirmationToken(_ context.Context, tokenHash string, confirmedAt time.Time) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok, ok := r.tokens[tokenHash]
	if !ok || tok.expiresAt.Before(confirmedAt) {
		return uuid.Nil, domain.ErrNotFound
	}
	delete(r.tokens, tokenHash)
	return tok.userID, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func newFakeOutboxRepo() *fakeOutboxRepo { return &fakeOutboxRepo{} }

func (r *fakeOutboxRepo) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkPublished(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) typesSeen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: make(map[uuid.UUID]bool)}
}

func (s *fakeRevocationStore) MarkRevoked(_ context.Context, sessionID uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[sessionID] = true
	return nil
}

func (s *fakeRevocationStore) IsRevoked(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[sessionID], nil
}

type fakeLockoutStore struct {
	mu     sync.Mutex
	states map[string]ports.LockoutState
}

func newFakeLockoutStore() *fakeLockoutStore {
	return &fakeLockoutStore{states: make(map[string]ports.LockoutState)}
}

func (s *fakeLockoutStore) Get(_ context.Context, key string) (ports.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key], nil
}

func (s *fakeLockoutStore) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[key]
	state.FailedCount++
	if state.FailedCount >= threshold {
		until := now.Add(lockoutWindow)
		state.LockedUntil = &until
	}
	s.states[key] = state
	return state, nil
}

func (s *fakeLockoutStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

type fakeSelectionStore struct {
	mu         sync.Mutex
	selections map[uuid.UUID]uuid.UUID
}

func newFakeSelectionStore() *fakeSelectionStore {
	return &fakeSelectionStore{selections: make(map[uuid.UUID]uuid.UUID)}
}

func (s *fakeSelectionStore) Put(_ context.Context, sessionID, eventID uuid.UUID, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[sessionID] = eventID
	return nil
}

func (s *fakeSelectionStore) Get(_ context.Context, sessionID uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventID, ok := s.selections[sessionID]
	return eventID, ok, nil
}

func (s *fakeSelectionStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, sessionID)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

// fakeSigner encodes claims as base64 JSON. Good enough to round-trip through
// the service without real crypto.
type fakeSigner struct{}

type fakeTokenBody struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	SessionID uuid.UUID `json:"session_id"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

func (fakeSigner) Sign(claims ports.AuthClaims) (string, error) {
	raw, err := json.Marshal(fakeTokenBody{
		UserID:    claims.UserID,
		Email:     claims.Email,
		SessionID: claims.SessionID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		return "", err
	}
	return "fake." + base64.RawURLEncoding.EncodeToString(raw), nil
}

func (fakeSigner) ParseAndValidate(raw string) (ports.AuthClaims, error) {
	encoded, ok := strings.CutPrefix(raw, "fake.")
	if !ok {
		return ports.AuthClaims{}, fmt.Errorf("malformed token")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return ports.AuthClaims{}, err
	}
	var body fakeTokenBody
	if err := json.Unmarshal(decoded, &body); err != nil {
		return ports.AuthClaims{}, err
	}
	return ports.AuthClaims{
		UserID:    body.UserID,
		Email:     body.Email,
		SessionID: body.SessionID,
		IssuedAt:  body.IssuedAt,
		ExpiresAt: body.ExpiresAt,
	}, nil
}

func (fakeSigner) PublicJWKs() ([]map[string]any, error) { return nil, nil }

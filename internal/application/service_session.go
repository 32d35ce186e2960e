package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
)

// SignUp creates an account in the unconfirmed state and, when the chosen role
// is exclusive, binds the registration fee and creates the initial payment.
// The fee is resolved before anything is written: a missing fee record blocks
// account creation instead of producing an unbilled account.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (SignUpResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignUpResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return SignUpResponse{}, err
	}
	if req.EventID == uuid.Nil || req.RoleID == uuid.Nil {
		return SignUpResponse{}, fmt.Errorf("%w: event_id and role_id are required", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return SignUpResponse{}, fmt.Errorf("%w: account already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return SignUpResponse{}, err
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return SignUpResponse{}, err
	}
	if event.Status != domain.EventOpen && event.Status != domain.EventTesting {
		return SignUpResponse{}, fmt.Errorf("%w: event registration is %s", domain.ErrInvalidInput, event.Status)
	}

	role, err := s.roles.GetByID(ctx, req.RoleID)
	if err != nil {
		return SignUpResponse{}, err
	}
	if role.EventID != event.EventID {
		return SignUpResponse{}, fmt.Errorf("%w: role does not belong to event", domain.ErrInvalidInput)
	}

	var fee domain.RegistrationFee
	if role.IsExclusive() {
		fee, err = s.resolveFee(ctx, event.EventID, role)
		if err != nil {
			return SignUpResponse{}, err
		}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return SignUpResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"email":        email,
		"event_id":     event.EventID,
		"role":         role.Name,
		"signed_up_at": now,
	})
	user, err := s.users.CreateWithOutboxTx(ctx, ports.CreateUserTxParams{
		Email:        email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		DocumentID:   req.DocumentID,
		PasswordHash: passwordHash,
		RegisteredBy: req.RegisteredBy,
		SignedUpAt:   now,
	}, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "user.signed_up",
		PartitionKey: email,
		Payload:      payload,
		OccurredAt:   now,
	})
	if err != nil {
		return SignUpResponse{}, err
	}

	rolesPayload, _ := json.Marshal(map[string]any{
		"user_id":  user.UserID,
		"event_id": event.EventID,
		"role_ids": []uuid.UUID{role.RoleID},
	})
	if err := s.assignments.ReplaceTx(ctx, user.UserID, event.EventID, []uuid.UUID{role.RoleID}, now, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "roles.assigned",
		PartitionKey: user.UserID.String(),
		Payload:      rolesPayload,
		OccurredAt:   now,
	}); err != nil {
		return SignUpResponse{}, err
	}

	resp := SignUpResponse{UserID: user.UserID}
	if role.IsExclusive() {
		payment, err := s.bindRegistrationFee(ctx, user.UserID, event.EventID, role, fee)
		if err != nil {
			return SignUpResponse{}, err
		}
		resp.PaymentReference = payment.Reference
		resp.PaymentStatus = string(payment.Status)
	}

	token := randomHex(32)
	if err := s.verification.CreateConfirmationToken(ctx, user.UserID, hashToken(token), now, now.Add(72*time.Hour)); err != nil {
		return SignUpResponse{}, err
	}

	return resp, nil
}

// SignIn validates credentials and builds a fully populated session in one
// step. Any fetch failure after the credential check tears the session back
// down so the caller never observes a half-populated one.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (SignInResponse, error) {
	eventID := req.EventID
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignInResponse{}, err
	}

	lockKey := "signin:" + email
	lockState, err := s.lockouts.Get(ctx, lockKey)
	if err == nil && lockState.LockedUntil != nil && lockState.LockedUntil.After(s.nowFn()) {
		return SignInResponse{}, domain.ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return SignInResponse{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		_, _ = s.lockouts.RecordFailure(ctx, lockKey, s.nowFn(), s.cfg.FailedThreshold, s.cfg.LockoutDuration)
		return SignInResponse{}, domain.ErrInvalidCredentials
	}
	if !user.Confirmed {
		return SignInResponse{}, domain.ErrEmailUnconfirmed
	}
	_ = s.lockouts.Clear(ctx, lockKey)

	now := s.nowFn()
	session, err := s.sessions.Create(ctx, ports.SessionCreateParams{
		UserID:         user.UserID,
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		LastActivityAt: now,
	})
	if err != nil {
		return SignInResponse{}, fmt.Errorf("create session: %w", err)
	}

	var assignments []domain.RoleAssignment
	if eventID != uuid.Nil {
		assignments, err = s.assignments.ListByUserEvent(ctx, user.UserID, eventID)
		if err != nil {
			// Never leave a half-populated session behind.
			_ = s.sessions.RevokeByID(ctx, session.SessionID, now)
			return SignInResponse{}, fmt.Errorf("fetch role assignments: %w", err)
		}
		_ = s.selections.Put(ctx, session.SessionID, eventID, s.cfg.EventSelectionTTL)
	}

	token, err := s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		SessionID: session.SessionID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		_ = s.sessions.RevokeByID(ctx, session.SessionID, now)
		return SignInResponse{}, fmt.Errorf("sign token: %w", err)
	}

	signedInPayload, _ := json.Marshal(map[string]any{
		"user_id":      user.UserID,
		"session_id":   session.SessionID,
		"signed_in_at": now,
	})
	_ = s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "session.signed_in",
		PartitionKey: user.UserID.String(),
		Payload:      signedInPayload,
		OccurredAt:   now,
	})
	s.notifier.Publish(AuthEvent{Kind: AuthSignedIn, Token: token})

	decision := routeDecision(user, eventID != uuid.Nil, assignments)
	return SignInResponse{
		Token:     token,
		SessionID: session.SessionID,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
		Route:     decision.Route,
		Roles:     decision.Roles,
		User:      toUserView(user),
		Decision:  decision,
	}, nil
}

// SignOut revokes the session behind the token. Revocation is recorded both
// on the row and in the cache so stale tokens fail fast.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	now := s.nowFn()
	if err := s.sessions.RevokeByID(ctx, claims.SessionID, now); err != nil {
		return err
	}
	_ = s.revocations.MarkRevoked(ctx, claims.SessionID, now.Add(s.cfg.TokenTTL))
	_ = s.selections.Delete(ctx, claims.SessionID)

	payload, _ := json.Marshal(map[string]any{
		"user_id":       claims.UserID,
		"session_id":    claims.SessionID,
		"signed_out_at": now,
	})
	_ = s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "session.signed_out",
		PartitionKey: claims.UserID.String(),
		Payload:      payload,
		OccurredAt:   now,
	})
	s.notifier.Publish(AuthEvent{Kind: AuthSignedOut, Token: token})
	return nil
}

// Bootstrap recovers a previously issued session token. Recovery failure is
// not an error: the result is an anonymous session, redirected to sign-in
// unless the navigation target is on the public allow-list.
func (s *Service) Bootstrap(ctx context.Context, req BootstrapRequest) (BootstrapResult, error) {
	anonymous := BootstrapResult{
		Anonymous:        true,
		RedirectToSignIn: !domain.IsPublicDestination(req.NavTarget),
	}
	if req.Token == "" {
		return anonymous, nil
	}

	claims, err := s.ValidateToken(ctx, req.Token)
	if err != nil {
		return anonymous, nil
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		// User row missing behind a valid token: revert to anonymous rather
		// than exposing a half-populated session.
		return anonymous, fmt.Errorf("fetch user: %w", err)
	}

	var activeEvent *uuid.UUID
	if eventID, ok, err := s.selections.Get(ctx, claims.SessionID); err == nil && ok {
		activeEvent = &eventID
	}

	var assignments []domain.RoleAssignment
	if activeEvent != nil {
		assignments, err = s.assignments.ListByUserEvent(ctx, user.UserID, *activeEvent)
		if err != nil {
			return anonymous, fmt.Errorf("fetch role assignments: %w", err)
		}
	}

	decision := routeDecision(user, activeEvent != nil, assignments)
	view := toUserView(user)
	return BootstrapResult{
		Route:         decision.Route,
		Roles:         decision.Roles,
		User:          &view,
		ActiveEventID: activeEvent,
		Assignments:   assignments,
	}, nil
}

// CurrentSession re-derives the session view and routing decision for an
// authenticated token, scoped to the active event selection. A confirmed
// user holding zero roles for the selected event is a data-setup fault and
// is surfaced as ErrIntegrityFault rather than an empty view.
func (s *Service) CurrentSession(ctx context.Context, token string) (SessionView, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return SessionView{}, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return SessionView{}, err
	}

	var activeEvent *uuid.UUID
	var assignments []domain.RoleAssignment
	if eventID, ok, selErr := s.selections.Get(ctx, claims.SessionID); selErr == nil && ok {
		activeEvent = &eventID
		assignments, err = s.assignments.ListByUserEvent(ctx, user.UserID, eventID)
		if err != nil {
			return SessionView{}, err
		}
	}

	decision := routeDecision(user, activeEvent != nil, assignments)
	if decision.Route == domain.RouteIntegrityFault {
		return SessionView{}, fmt.Errorf("%w: no roles held for the selected event", domain.ErrIntegrityFault)
	}
	return SessionView{
		User:          toUserView(user),
		Route:         decision.Route,
		Roles:         decision.Roles,
		ActiveEventID: activeEvent,
		Assignments:   assignments,
	}, nil
}

// RouteForEvent resolves the routing decision for the token scoped to an
// explicit event instead of the stored selection. A nil event falls back to
// the selection-scoped view.
func (s *Service) RouteForEvent(ctx context.Context, token string, eventID uuid.UUID) (SessionView, error) {
	if eventID == uuid.Nil {
		return s.CurrentSession(ctx, token)
	}
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return SessionView{}, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return SessionView{}, err
	}
	assignments, err := s.assignments.ListByUserEvent(ctx, user.UserID, eventID)
	if err != nil {
		return SessionView{}, err
	}

	decision := domain.ResolveRoute(user, assignments)
	scoped := eventID
	return SessionView{
		User:          toUserView(user),
		Route:         decision.Route,
		Roles:         decision.Roles,
		ActiveEventID: &scoped,
		Assignments:   assignments,
	}, nil
}

// SelectEvent persists the active event selection for the session.
func (s *Service) SelectEvent(ctx context.Context, token string, eventID uuid.UUID) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	return s.selections.Put(ctx, claims.SessionID, eventID, s.cfg.EventSelectionTTL)
}

// ResendVerification re-issues an email confirmation token. It deliberately
// does not reveal whether the account exists.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil
	}
	if user.Confirmed {
		return nil
	}
	now := s.nowFn()
	token := randomHex(32)
	return s.verification.CreateConfirmationToken(ctx, user.UserID, hashToken(token), now, now.Add(72*time.Hour))
}

// ConfirmEmail consumes a confirmation token and flips the user's confirmed
// flag. Approval workflows call this on behalf of the organizer.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}
	userID, err := s.verification.ConsumeConfirmationToken(ctx, hashToken(token), s.nowFn())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthorized
		}
		return err
	}
	return s.users.SetConfirmed(ctx, userID, true, s.nowFn())
}

// ValidateToken checks signature, revocation flags, and the session row.
func (s *Service) ValidateToken(ctx context.Context, token string) (ports.AuthClaims, error) {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	if revoked, _ := s.revocations.IsRevoked(ctx, claims.SessionID); revoked {
		return ports.AuthClaims{}, domain.ErrSessionRevoked
	}
	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	if session.UserID != claims.UserID {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	if session.RevokedAt != nil {
		return ports.AuthClaims{}, domain.ErrSessionRevoked
	}
	if session.ExpiresAt.Before(s.nowFn()) {
		return ports.AuthClaims{}, domain.ErrSessionExpired
	}
	if session.CreatedAt.Add(s.cfg.SessionAbsoluteTTL).Before(s.nowFn()) {
		return ports.AuthClaims{}, domain.ErrSessionExpired
	}
	_ = s.sessions.TouchActivity(ctx, session.SessionID, s.nowFn())
	return claims, nil
}

// PublicJWKs exposes the verification keys for sibling services.
func (s *Service) PublicJWKs() ([]map[string]any, error) {
	return s.tokenSigner.PublicJWKs()
}

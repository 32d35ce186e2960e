package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
)

const testPassword = "sw1mf4st2026"

type fixture struct {
	t   *testing.T
	svc *Service

	users       *fakeUserRepo
	events      *fakeEventRepo
	roles       *fakeRoleRepo
	assignments *fakeAssignmentRepo
	fees        *fakeFeeRepo
	payments    *fakePaymentRepo
	sessions    *fakeSessionRepo
	outbox      *fakeOutboxRepo
	selections  *fakeSelectionStore

	event      domain.Event
	athlete    domain.Role
	public     domain.Role
	organizer  domain.Role
	judge      domain.Role
	delegation domain.Role
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:           t,
		users:       newFakeUserRepo(),
		events:      newFakeEventRepo(),
		roles:       newFakeRoleRepo(),
		fees:        newFakeFeeRepo(),
		payments:    newFakePaymentRepo(),
		sessions:    newFakeSessionRepo(),
		outbox:      newFakeOutboxRepo(),
		selections:  newFakeSelectionStore(),
	}
	f.assignments = newFakeAssignmentRepo(f.roles, f.payments)

	now := time.Now().UTC()
	f.event = domain.Event{
		EventID:              uuid.New(),
		Name:                 "State Championship 2026",
		Status:               domain.EventOpen,
		RegistrationOpensAt:  now.Add(-24 * time.Hour),
		RegistrationClosesAt: now.Add(30 * 24 * time.Hour),
		CreatedAt:            now,
	}
	f.events.events[f.event.EventID] = f.event

	mkRole := func(name string, category domain.RoleCategory) domain.Role {
		role := domain.Role{RoleID: uuid.New(), EventID: f.event.EventID, Name: name, Category: category, CreatedAt: now}
		f.roles.roles[role.RoleID] = role
		return role
	}
	f.athlete = mkRole(domain.RoleAthlete, domain.CategoryExclusive)
	f.public = mkRole(domain.RoleGeneralPublic, domain.CategoryExclusive)
	f.organizer = mkRole(domain.RoleOrganizer, domain.CategoryAdditive)
	f.judge = mkRole(domain.RoleJudge, domain.CategoryAdditive)
	f.delegation = mkRole(domain.RoleDelegationRep, domain.CategoryAdditive)

	f.fees.put(domain.RegistrationFee{
		FeeID:       uuid.New(),
		EventID:     f.event.EventID,
		RoleID:      f.athlete.RoleID,
		AmountCents: 15000,
		Currency:    "BRL",
	})
	f.fees.put(domain.RegistrationFee{
		FeeID:    uuid.New(),
		EventID:  f.event.EventID,
		RoleID:   f.public.RoleID,
		Exempt:   true,
		Currency: "BRL",
	})

	f.svc = NewService(Dependencies{
		Config: Config{
			TokenTTL:           15 * time.Minute,
			SessionTTL:         12 * time.Hour,
			SessionAbsoluteTTL: 24 * time.Hour,
			FailedThreshold:    5,
			LockoutDuration:    15 * time.Minute,
			EventSelectionTTL:  24 * time.Hour,
		},
		Users:        f.users,
		Events:       f.events,
		Roles:        f.roles,
		Assignments:  f.assignments,
		Fees:         f.fees,
		Payments:     f.payments,
		Sessions:     f.sessions,
		Verification: newFakeVerificationRepo(),
		Outbox:       f.outbox,
		Revocations:  newFakeRevocationStore(),
		Lockouts:     newFakeLockoutStore(),
		Selections:   f.selections,
		Hasher:       fakeHasher{},
		TokenSigner:  fakeSigner{},
	})
	return f
}

func (f *fixture) signUp(email string, roleID uuid.UUID) SignUpResponse {
	f.t.Helper()
	resp, err := f.svc.SignUp(context.Background(), SignUpRequest{
		Email:    email,
		Password: testPassword,
		FullName: "Test Swimmer",
		EventID:  f.event.EventID,
		RoleID:   roleID,
	})
	if err != nil {
		f.t.Fatalf("SignUp(%s): %v", email, err)
	}
	return resp
}

func (f *fixture) confirm(userID uuid.UUID) {
	f.t.Helper()
	if err := f.users.SetConfirmed(context.Background(), userID, true, time.Now().UTC()); err != nil {
		f.t.Fatalf("SetConfirmed: %v", err)
	}
}

func (f *fixture) signIn(email string) SignInResponse {
	f.t.Helper()
	resp, err := f.svc.SignIn(context.Background(), SignInRequest{
		Email:    email,
		Password: testPassword,
		EventID:  f.event.EventID,
	})
	if err != nil {
		f.t.Fatalf("SignIn(%s): %v", email, err)
	}
	return resp
}

func TestSignUpExclusiveRoleCreatesPendingPayment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("athlete@example.com", f.athlete.RoleID)

	if resp.PaymentStatus != string(domain.PaymentPending) {
		t.Fatalf("payment status = %q, want pending", resp.PaymentStatus)
	}
	if resp.PaymentReference != "000001" {
		t.Fatalf("payment reference = %q, want 000001", resp.PaymentReference)
	}
	payment, err := f.payments.GetByUserEvent(context.Background(), resp.UserID, f.event.EventID)
	if err != nil {
		t.Fatalf("payment not persisted: %v", err)
	}
	if payment.AmountCents != 15000 || payment.Currency != "BRL" {
		t.Fatalf("payment amount = %d %s, want 15000 BRL", payment.AmountCents, payment.Currency)
	}
}

func TestSignUpExemptFeeConfirmsPayment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("spectator@example.com", f.public.RoleID)

	if resp.PaymentStatus != string(domain.PaymentConfirmed) {
		t.Fatalf("payment status = %q, want confirmed", resp.PaymentStatus)
	}
}

func TestSignUpAdditiveRoleCreatesNoPayment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("organizer@example.com", f.organizer.RoleID)

	if resp.PaymentReference != "" || resp.PaymentStatus != "" {
		t.Fatalf("unexpected payment for additive role: %+v", resp)
	}
	if _, err := f.payments.GetByUserEvent(context.Background(), resp.UserID, f.event.EventID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no payment, got err=%v", err)
	}
}

func TestSignUpMissingFeeBlocksAccountCreation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// An exclusive role without a configured fee.
	junior := domain.Role{RoleID: uuid.New(), EventID: f.event.EventID, Name: domain.RoleAthlete, Category: domain.CategoryExclusive}
	f.roles.roles[junior.RoleID] = junior

	_, err := f.svc.SignUp(context.Background(), SignUpRequest{
		Email:    "blocked@example.com",
		Password: testPassword,
		EventID:  f.event.EventID,
		RoleID:   junior.RoleID,
	})
	if !errors.Is(err, domain.ErrFeeNotConfigured) {
		t.Fatalf("err = %v, want ErrFeeNotConfigured", err)
	}
	if _, err := f.users.GetByEmail(context.Background(), "blocked@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("account must not exist after blocked sign-up, got err=%v", err)
	}
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.signUp("dup@example.com", f.public.RoleID)
	_, err := f.svc.SignUp(context.Background(), SignUpRequest{
		Email:    "DUP@example.com",
		Password: testPassword,
		EventID:  f.event.EventID,
		RoleID:   f.public.RoleID,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestSignInUnconfirmedRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.signUp("pending@example.com", f.public.RoleID)
	_, err := f.svc.SignIn(context.Background(), SignInRequest{
		Email:    "pending@example.com",
		Password: testPassword,
		EventID:  f.event.EventID,
	})
	if !errors.Is(err, domain.ErrEmailUnconfirmed) {
		t.Fatalf("err = %v, want ErrEmailUnconfirmed", err)
	}
}

func TestSignInLockoutAfterRepeatedFailures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("locked@example.com", f.public.RoleID)
	f.confirm(resp.UserID)

	for i := 0; i < 5; i++ {
		_, err := f.svc.SignIn(context.Background(), SignInRequest{
			Email:    "locked@example.com",
			Password: "wrongpass99",
			EventID:  f.event.EventID,
		})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i, err)
		}
	}

	_, err := f.svc.SignIn(context.Background(), SignInRequest{
		Email:    "locked@example.com",
		Password: testPassword,
		EventID:  f.event.EventID,
	})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited after lockout", err)
	}
}

func TestSignInResolvesRouteForSingleRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("athlete@example.com", f.athlete.RoleID)
	f.confirm(resp.UserID)

	signedIn := f.signIn("athlete@example.com")
	if signedIn.Route != domain.RouteProfile {
		t.Fatalf("route = %v, want profile", signedIn.Route)
	}
	if signedIn.Token == "" || signedIn.SessionID == uuid.Nil {
		t.Fatalf("incomplete sign-in response: %+v", signedIn)
	}
}

func TestSignInMultipleRolesRoutesToSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("multi@example.com", f.organizer.RoleID)
	f.confirm(resp.UserID)
	f.mustReplaceRoles(resp.UserID, f.organizer.RoleID, f.judge.RoleID)

	signedIn := f.signIn("multi@example.com")
	if signedIn.Route != domain.RouteRoleSelection {
		t.Fatalf("route = %v, want role selection", signedIn.Route)
	}
	want := []string{domain.RoleOrganizer, domain.RoleJudge}
	if len(signedIn.Roles) != len(want) {
		t.Fatalf("roles = %v, want %v", signedIn.Roles, want)
	}
	for i := range want {
		if signedIn.Roles[i] != want[i] {
			t.Fatalf("roles = %v, want ordered %v", signedIn.Roles, want)
		}
	}
}

func (f *fixture) mustReplaceRoles(userID uuid.UUID, roleIDs ...uuid.UUID) {
	f.t.Helper()
	err := f.assignments.ReplaceTx(context.Background(), userID, f.event.EventID, roleIDs, time.Now().UTC(), outboxEventStub())
	if err != nil {
		f.t.Fatalf("ReplaceTx: %v", err)
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("leaver@example.com", f.public.RoleID)
	f.confirm(resp.UserID)
	signedIn := f.signIn("leaver@example.com")

	if err := f.svc.SignOut(context.Background(), signedIn.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	_, err := f.svc.CurrentSession(context.Background(), signedIn.Token)
	if !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("err = %v, want ErrSessionRevoked after sign-out", err)
	}
}

func TestBootstrapAnonymousRedirectsPrivateTargets(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.svc.Bootstrap(context.Background(), BootstrapRequest{NavTarget: "/dashboard"})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if !res.Anonymous || !res.RedirectToSignIn {
		t.Fatalf("private target: got %+v, want anonymous redirect", res)
	}

	res, err = f.svc.Bootstrap(context.Background(), BootstrapRequest{NavTarget: "/about"})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if !res.Anonymous || res.RedirectToSignIn {
		t.Fatalf("public target: got %+v, want anonymous without redirect", res)
	}
}

func TestBootstrapInvalidTokenIsAnonymous(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.svc.Bootstrap(context.Background(), BootstrapRequest{Token: "fake.garbage", NavTarget: "/dashboard"})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if !res.Anonymous || !res.RedirectToSignIn {
		t.Fatalf("got %+v, want anonymous redirect", res)
	}
}

func TestBootstrapRecoversSessionAndRoute(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("returning@example.com", f.athlete.RoleID)
	f.confirm(resp.UserID)
	signedIn := f.signIn("returning@example.com")

	res, err := f.svc.Bootstrap(context.Background(), BootstrapRequest{Token: signedIn.Token, NavTarget: "/dashboard"})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.Anonymous {
		t.Fatal("expected recovered session, got anonymous")
	}
	if res.Route != domain.RouteProfile {
		t.Fatalf("route = %v, want profile", res.Route)
	}
	if res.ActiveEventID == nil || *res.ActiveEventID != f.event.EventID {
		t.Fatalf("active event = %v, want %v", res.ActiveEventID, f.event.EventID)
	}
}

func TestSignInEmitsOutboxEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("emitter@example.com", f.public.RoleID)
	f.confirm(resp.UserID)
	f.signIn("emitter@example.com")

	for _, eventType := range f.outbox.typesSeen() {
		if eventType == "session.signed_in" {
			return
		}
	}
	t.Fatalf("no session.signed_in event enqueued, saw %v", f.outbox.typesSeen())
}

func TestSignInWithoutEventPromptsEventSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("undecided@example.com", f.athlete.RoleID)
	f.confirm(resp.UserID)

	signedIn, err := f.svc.SignIn(context.Background(), SignInRequest{
		Email:    "undecided@example.com",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if signedIn.Route != domain.RouteEventSelection {
		t.Fatalf("route = %s, want %s", signedIn.Route, domain.RouteEventSelection)
	}
	if len(signedIn.Roles) != 0 {
		t.Fatalf("roles = %v, want none before an event is selected", signedIn.Roles)
	}
}

func TestBootstrapWithoutSelectionPromptsEventSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("drifting@example.com", f.athlete.RoleID)
	f.confirm(resp.UserID)

	signedIn, err := f.svc.SignIn(context.Background(), SignInRequest{
		Email:    "drifting@example.com",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	res, err := f.svc.Bootstrap(context.Background(), BootstrapRequest{Token: signedIn.Token, NavTarget: "/dashboard"})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.Anonymous {
		t.Fatal("expected recovered session, got anonymous")
	}
	if res.Route != domain.RouteEventSelection {
		t.Fatalf("route = %s, want %s", res.Route, domain.RouteEventSelection)
	}
}

func TestCurrentSessionZeroRolesIsIntegrityFault(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("vanished@example.com", f.public.RoleID)
	f.confirm(resp.UserID)
	signedIn := f.signIn("vanished@example.com")

	err := f.assignments.ReplaceTx(context.Background(), resp.UserID, f.event.EventID, nil, time.Now().UTC(), ports.OutboxEvent{})
	if err != nil {
		t.Fatalf("ReplaceTx: %v", err)
	}

	_, err = f.svc.CurrentSession(context.Background(), signedIn.Token)
	if !errors.Is(err, domain.ErrIntegrityFault) {
		t.Fatalf("err = %v, want ErrIntegrityFault for a confirmed user with no roles", err)
	}
}

func TestRouteForEventScopesAssignments(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.signUp("scoped@example.com", f.public.RoleID)
	f.confirm(resp.UserID)
	signedIn := f.signIn("scoped@example.com")

	view, err := f.svc.RouteForEvent(context.Background(), signedIn.Token, f.event.EventID)
	if err != nil {
		t.Fatalf("RouteForEvent: %v", err)
	}
	if view.Route != domain.RouteProfile {
		t.Fatalf("route = %s, want %s", view.Route, domain.RouteProfile)
	}
	if view.ActiveEventID == nil || *view.ActiveEventID != f.event.EventID {
		t.Fatalf("active event = %v, want %v", view.ActiveEventID, f.event.EventID)
	}

	otherEvent := uuid.New()
	view, err = f.svc.RouteForEvent(context.Background(), signedIn.Token, otherEvent)
	if err != nil {
		t.Fatalf("RouteForEvent(other event): %v", err)
	}
	if view.Route != domain.RouteIntegrityFault {
		t.Fatalf("route without assignments = %s, want %s", view.Route, domain.RouteIntegrityFault)
	}
}

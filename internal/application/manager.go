package application

import (
	"context"
	"log/slog"
	"sync"
)

// SessionManager holds the authoritative last-observed credential state for a
// process that consumes the auth event stream. Credential changes arrive via
// the notifier; each change bumps a generation counter and the session view is
// re-fetched asynchronously. A fetch result is applied only if the generation
// it was started under is still current, so a sign-out observed while a slow
// sign-in fetch is in flight wins and the stale view is discarded.
type SessionManager struct {
	svc    *Service
	logger *slog.Logger

	mu    sync.Mutex
	gen   uint64
	token string
	view  *SessionView
}

func NewSessionManager(svc *Service, logger *slog.Logger) *SessionManager {
	return &SessionManager{svc: svc, logger: logger}
}

// Run consumes credential events until the context is canceled.
func (m *SessionManager) Run(ctx context.Context) {
	events, cancel := m.svc.AuthEvents().Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.apply(ctx, ev)
		}
	}
}

// Apply processes a single credential event. Exposed separately from Run so
// tests can drive the manager synchronously.
func (m *SessionManager) Apply(ctx context.Context, ev AuthEvent) {
	m.apply(ctx, ev)
}

func (m *SessionManager) apply(ctx context.Context, ev AuthEvent) {
	m.mu.Lock()
	switch ev.Kind {
	case AuthSignedIn, AuthTokenRefreshed:
		m.gen++
		m.token = ev.Token
		gen := m.gen
		token := ev.Token
		m.mu.Unlock()
		go m.fetch(ctx, gen, token)
		return
	case AuthSignedOut:
		m.gen++
		m.token = ""
		m.view = nil
	}
	m.mu.Unlock()
}

func (m *SessionManager) fetch(ctx context.Context, gen uint64, token string) {
	view, err := m.svc.CurrentSession(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.logger.Debug("discarding stale session fetch",
			slog.Uint64("fetch_generation", gen),
			slog.Uint64("current_generation", m.gen))
		return
	}
	if err != nil {
		m.logger.Warn("session fetch failed", slog.String("error", err.Error()))
		m.token = ""
		m.view = nil
		return
	}
	m.view = &view
}

// Snapshot returns the last-observed credential state.
func (m *SessionManager) Snapshot() (token string, view *SessionView, signedIn bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", nil, false
	}
	if m.view == nil {
		return m.token, nil, true
	}
	v := *m.view
	return m.token, &v, true
}

// Settled reports whether a view has been applied for the current generation.
func (m *SessionManager) Settled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token == "" || m.view != nil
}

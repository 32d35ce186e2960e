package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/event-portal/internal/application"
)

// Handler is the HTTP adapter entrypoint for portal use-cases.
// Keeping only application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers portal HTTP routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Get("/.well-known/jwks.json", handler.jwks)

	r.Route("/portal/v1", func(r chi.Router) {
		r.Post("/signup", handler.signUp)
		r.Post("/signin", handler.signIn)
		r.Post("/bootstrap", handler.bootstrap)
		r.Post("/verification/resend", handler.resendVerification)
		r.Post("/verification/confirm", handler.confirmEmail)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/signout", handler.signOut)
			r.Get("/session", handler.currentSession)
			r.Put("/session/event", handler.selectEvent)
			r.Get("/events/{event_id}/roles", handler.listEventRoles)
			r.Put("/events/{event_id}/roles", handler.setRoles)
			r.Post("/events/{event_id}/roles/swap", handler.swapExclusiveRole)
			r.Get("/events/{event_id}/payment", handler.getPayment)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) jwks(w http.ResponseWriter, r *http.Request) {
	keys, err := h.service.PublicJWKs()
	if err != nil {
		writeMappedError(r.Context(), w, "jwks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/application"
)

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req application.SignUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "sign_up", err)
		return
	}

	res, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "sign_up", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req application.SignInRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "sign_in", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	res, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "sign_in", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "sign_out")
		return
	}
	if err := h.service.SignOut(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "sign_out", err)
		return
	}
	writeMessage(w, http.StatusOK, "signed out")
}

func (h *Handler) bootstrap(w http.ResponseWriter, r *http.Request) {
	var req application.BootstrapRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "bootstrap", err)
		return
	}
	if req.Token == "" {
		if token, err := bearerTokenFromHeader(r.Header.Get("Authorization")); err == nil {
			req.Token = token
		}
	}

	res, err := h.service.Bootstrap(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "bootstrap", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "current_session")
		return
	}
	res, err := h.service.CurrentSession(r.Context(), token)
	if err != nil {
		writeMappedError(r.Context(), w, "current_session", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

type selectEventRequest struct {
	EventID uuid.UUID `json:"event_id"`
}

func (h *Handler) selectEvent(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "select_event")
		return
	}
	var req selectEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "select_event", err)
		return
	}
	if err := h.service.SelectEvent(r.Context(), token, req.EventID); err != nil {
		writeMappedError(r.Context(), w, "select_event", err)
		return
	}
	writeMessage(w, http.StatusOK, "event selected")
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "resend_verification", err)
		return
	}
	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		writeMappedError(r.Context(), w, "resend_verification", err)
		return
	}
	// Always the same answer so the endpoint cannot be used to probe accounts.
	writeMessage(w, http.StatusOK, "if the account exists, a confirmation email has been sent")
}

type confirmEmailRequest struct {
	Token string `json:"token"`
}

func (h *Handler) confirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "confirm_email", err)
		return
	}
	if err := h.service.ConfirmEmail(r.Context(), req.Token); err != nil {
		writeMappedError(r.Context(), w, "confirm_email", err)
		return
	}
	writeMessage(w, http.StatusOK, "email confirmed")
}

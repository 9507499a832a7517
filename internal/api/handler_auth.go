package api

import (
	"net/http"
	"strings"

	"lakeauth/internal/domain"
	"lakeauth/internal/service"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	session, err := h.sessions.Login(r.Context(), service.LoginRequest{
		AccessKeyID:     req.AccessKeyID,
		SecretAccessKey: req.SecretAccessKey,
		Username:        req.Username,
		Password:        req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthenticationToken{
		Token:           session.Token,
		TokenExpiration: session.TokenExpiration.Unix(),
	})
}

func (h *Handler) getAuthCapabilities(w http.ResponseWriter, _ *http.Request) {
	caps := h.sessions.Capabilities()
	writeJSON(w, http.StatusOK, AuthCapabilities{
		InviteUser:     caps.InviteUser,
		ForgotPassword: caps.ForgotPassword,
	})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Email == "" {
		h.writeError(w, r, domain.ErrValidation("email is required"))
		return
	}
	if err := h.sessions.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updatePassword is authorized by the reset token sent as a Bearer token.
func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		h.writeError(w, r, domain.ErrAuthentication("reset token required"))
		return
	}
	var req UpdatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.sessions.UpdatePassword(r.Context(), token, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

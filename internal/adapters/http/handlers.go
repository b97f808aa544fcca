package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kulltaa/masterCondo/internal/application"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		account, err := h.service.Authenticate(r.Context(), raw)
		if err != nil {
			writeMappedError(r.Context(), w, "authenticate", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithAccount(r.Context(), raw, account)))
	})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// logout reads the raw bearer value itself instead of going through the auth
// gate: an expired token is still a legitimate logout target, and a missing
// header is a validation error rather than an authentication failure.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", `"authorization" header is required`)
		return
	}
	raw, err := bearerTokenFromHeader(header)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", `"authorization" header must carry a bearer token`)
		return
	}

	if err := h.service.Logout(r.Context(), raw); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logout successfully")
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	req := application.VerifyRequest{
		Email: r.URL.Query().Get("email"),
		Token: r.URL.Query().Get("token"),
	}
	if err := h.service.VerifyEmail(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "verify_email", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account has been verified successfully")
}

func (h *Handler) forgot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.service.Forgot(r.Context(), req.Email); err != nil {
		writeMappedError(r.Context(), w, "forgot_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "An email with recover instructions has been sent")
}

func (h *Handler) validateForgotParams(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.service.ValidateRecoveryToken(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "validate_forgot_params", err)
		return
	}
	writeMessage(w, http.StatusOK, "Token is valid")
}

func (h *Handler) recover(w http.ResponseWriter, r *http.Request) {
	var req application.RecoverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.service.Recover(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "recover_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password has been updated successfully")
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	writeSuccess(w, http.StatusOK, h.service.Status(account))
}

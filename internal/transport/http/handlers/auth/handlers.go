package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/auth"
	"github.com/Leeseongbin2/smm-panel-v2/internal/requestctx"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/api"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/shared"
)

type Handler struct {
	Store       *auth.Store
	Secret      string
	TokenTTL    time.Duration
	AllowSignup bool
}

func NewHandler(store *auth.Store, secret string, tokenTTL time.Duration, allowSignup bool) *Handler {
	return &Handler{Store: store, Secret: secret, TokenTTL: tokenTTL, AllowSignup: allowSignup}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	StoreName string `json:"storeName"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	OwnerID   string `json:"ownerId"`
	Email     string `json:"email"`
	StoreName string `json:"storeName"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	owner, err := h.Store.FindOwnerByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, auth.ErrOwnerNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to look up account", reqID)
		return
	}

	if err := auth.CheckPassword(owner.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		OwnerID:   owner.ID,
		Email:     owner.Email,
		StoreName: owner.StoreName,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.TokenTTL).UTC().Format(time.RFC3339),
		OwnerID:   owner.ID,
		Email:     owner.Email,
		StoreName: owner.StoreName,
	}, reqID)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	if !h.AllowSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self signup is disabled", reqID)
		return
	}

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	storeName := strings.TrimSpace(payload.StoreName)

	v := shared.NewValidator()
	v.Required("email", email, "is required")
	if email != "" && !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	v.Required("storeName", storeName, "is required")
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	taken, err := h.Store.OwnerEmailTaken(r.Context(), email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to check account", reqID)
		return
	}
	if taken {
		api.Fail(w, http.StatusConflict, "email_taken", "an account with this email already exists", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to create account", reqID)
		return
	}

	ownerID, err := h.Store.CreateOwner(r.Context(), email, hash, storeName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to create account", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		OwnerID:   ownerID,
		Email:     email,
		StoreName: storeName,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Created(w, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.TokenTTL).UTC().Format(time.RFC3339),
		OwnerID:   ownerID,
		Email:     email,
		StoreName: storeName,
	}, reqID)
}

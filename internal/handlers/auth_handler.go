package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"campusauth/internal/config"
	"campusauth/internal/middleware"
	"campusauth/internal/models"
	"campusauth/internal/password"
	"campusauth/internal/repository"
	"campusauth/internal/services"
	"campusauth/internal/token"
)

// Login failures share one message so callers cannot tell an unknown email
// from a wrong password.
const invalidCredentialsMsg = "Invalid email or password."

type AuthHandler struct {
	users  repository.UserRepository
	resets repository.PasswordResetRepository
	hasher *password.Hasher
	issuer *token.Issuer
	mailer services.EmailSender
	cfg    *config.Config
	v      *validator.Validate
}

func NewAuthHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender) *AuthHandler {
	return &AuthHandler{
		users:  repository.NewUserRepository(db),
		resets: repository.NewPasswordResetRepository(db),
		hasher: password.NewHasher(),
		issuer: token.NewIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, time.Duration(cfg.JWTExpiresMinutes)*time.Minute),
		mailer: mailer,
		cfg:    cfg,
		v:      validator.New(),
	}
}

// Issuer exposes the token issuer so routes can share it with the JWT
// middleware.
func (h *AuthHandler) Issuer() *token.Issuer {
	return h.issuer
}

// @Tags Auth
// @Summary Sign up
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup payload"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "signup_failed", "Failed to create user")
		return
	}

	u := &models.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Name:           strings.TrimSpace(req.Name),
		HashedPassword: hash,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeJSONError(w, http.StatusBadRequest, "duplicate_email", "Email already registered.")
			return
		}
		log.Printf("signup: create user: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "signup_failed", "Failed to create user")
		return
	}

	signed, err := h.issuer.Issue(u.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "signup_failed", "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: signed, User: u.Public()})
}

// @Tags Auth
// @Summary Log in
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login payload"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", invalidCredentialsMsg)
			return
		}
		log.Printf("login: lookup: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	valid, newHash, err := h.hasher.VerifyAndUpgrade(req.Password, u.HashedPassword)
	if err != nil && !errors.Is(err, password.ErrInvalidHash) {
		log.Printf("login: verify password: %v", err)
	}
	if !valid {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", invalidCredentialsMsg)
		return
	}

	// Lazy re-hash under the current scheme. Login still succeeds if the
	// write fails; the next login will retry.
	if newHash != "" {
		if err := h.users.UpdatePasswordHash(r.Context(), u.ID, newHash); err != nil {
			log.Printf("login: upgrade password hash for %s: %v", u.ID, err)
		}
	}

	signed, err := h.issuer.Issue(u.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "login_failed", "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: signed, User: u.Public()})
}

// @Tags Auth
// @Summary Current user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Not authenticated.")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Not authenticated.")
			return
		}
		log.Printf("me: lookup %s: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: middleware.RawToken(r.Context()), User: u.Public()})
}

// @Tags Auth
// @Summary Request password reset
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Email"
// @Success 202 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	// Unknown emails get the same response as known ones.
	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONMessage(w, http.StatusAccepted, "If an account exists, you'll receive an email shortly.")
			return
		}
		log.Printf("password reset request: lookup: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	ttl := time.Duration(h.cfg.ResetTokenTTLMinutes) * time.Minute
	plaintext, err := h.resets.Issue(r.Context(), u.ID, ttl)
	if err != nil {
		log.Printf("password reset request: issue token: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	subject, body := services.PasswordResetMail(h.cfg.PublicBaseURL, plaintext, ttl)
	if err := h.mailer.Send(u.Email, subject, body); err != nil {
		log.Printf("password reset request: send mail: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "service_unavailable", "Password reset is temporarily unavailable.")
		return
	}

	writeJSONMessage(w, http.StatusAccepted, "If an account exists, you'll receive an email shortly.")
}

// @Tags Auth
// @Summary Confirm password reset
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	userID, err := h.resets.Consume(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenInvalid) {
			writeJSONError(w, http.StatusBadRequest, "invalid_token", "Invalid or expired token")
			return
		}
		log.Printf("password reset confirm: consume: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "reset_failed", "Failed to reset password")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "reset_failed", "Failed to reset password")
		return
	}

	if err := h.users.UpdatePasswordHash(r.Context(), userID, hash); err != nil {
		log.Printf("password reset confirm: update hash: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "reset_failed", "Failed to reset password")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Password updated successfully.")
}

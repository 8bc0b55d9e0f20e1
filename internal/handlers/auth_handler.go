package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tailor-backend/internal/logger"
	"tailor-backend/internal/models"
	"tailor-backend/internal/services"
	"tailor-backend/pkg/utils"
)

type AuthHandler struct {
	Service      *services.UserService
	LoginTimeout time.Duration
}

func NewAuthHandler(s *services.UserService, loginTimeout time.Duration) *AuthHandler {
	return &AuthHandler{
		Service:      s,
		LoginTimeout: loginTimeout,
	}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.bounded(w, r, func(ctx context.Context) (*models.AuthResponse, error) {
		return h.Service.Signup(ctx, &req)
	}, http.StatusCreated)
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.bounded(w, r, func(ctx context.Context) (*models.AuthResponse, error) {
		return h.Service.Login(ctx, &req)
	}, http.StatusOK)
}

type authResult struct {
	resp *models.AuthResponse
	err  error
}

// bounded runs a sign-in call under LoginTimeout. When the deadline passes
// first the caller gets 504 and the late result is discarded.
func (h *AuthHandler) bounded(w http.ResponseWriter, r *http.Request, call func(context.Context) (*models.AuthResponse, error), status int) {
	ctx := r.Context()
	if h.LoginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.LoginTimeout)
		defer cancel()
	}

	done := make(chan authResult, 1)
	go func() {
		resp, err := call(ctx)
		done <- authResult{resp, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			writeError(w, r, res.err)
			return
		}
		utils.JSON(w, status, res.resp)
	case <-ctx.Done():
		logger.FromContext(r.Context()).Warn("sign-in timed out", zap.Duration("timeout", h.LoginTimeout))
		utils.Error(w, http.StatusGatewayTimeout, "Sign-in timed out, please try again")
	}
}

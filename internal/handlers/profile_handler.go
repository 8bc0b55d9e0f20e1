package handlers

import (
	"net/http"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/models"
	"tailor-backend/internal/services"
	"tailor-backend/pkg/utils"
)

type ProfileHandler struct {
	Service *services.ProfileService
}

func NewProfileHandler(s *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{Service: s}
}

// GetProfile returns the caller's profile, creating the default one if the
// account predates profiles.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	profile, err := h.Service.EnsureProfile(r.Context(), session.User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"user": session.User, "profile": profile})
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	profile, err := h.Service.UpdateProfile(r.Context(), auth.FromContext(r.Context()).User, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

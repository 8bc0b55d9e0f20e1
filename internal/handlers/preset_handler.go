package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"tailor-backend/internal/models"
	"tailor-backend/internal/services"
	"tailor-backend/pkg/utils"
)

type PresetHandler struct {
	Presets *services.PresetService
	Custom  *services.CustomMeasurementService
}

func NewPresetHandler(presets *services.PresetService, custom *services.CustomMeasurementService) *PresetHandler {
	return &PresetHandler{Presets: presets, Custom: custom}
}

func (h *PresetHandler) SavePreset(w http.ResponseWriter, r *http.Request) {
	var req models.SavePresetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	preset, err := h.Presets.SavePreset(r.Context(), userID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, preset)
}

func (h *PresetHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.Presets.ListPresets(r.Context(), userID(r), models.Gender(r.URL.Query().Get("gender")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, presets)
}

func (h *PresetHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := h.Presets.DeletePreset(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PresetHandler) CreateCustomMeasurement(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomMeasurementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cm, err := h.Custom.CreateCustomMeasurement(r.Context(), userID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, cm)
}

func (h *PresetHandler) ListCustomMeasurements(w http.ResponseWriter, r *http.Request) {
	list, err := h.Custom.ListCustomMeasurements(r.Context(), userID(r), models.Gender(r.URL.Query().Get("gender")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *PresetHandler) DeleteCustomMeasurement(w http.ResponseWriter, r *http.Request) {
	if err := h.Custom.DeleteCustomMeasurement(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

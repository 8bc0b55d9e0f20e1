package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"tailor-backend/internal/models"
	"tailor-backend/internal/services"
	"tailor-backend/pkg/utils"
)

type MeasurementHandler struct {
	Service *services.MeasurementService
}

func NewMeasurementHandler(s *services.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{Service: s}
}

func (h *MeasurementHandler) CreateMeasurement(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMeasurementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.Service.CreateMeasurement(r.Context(), userID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, m)
}

func (h *MeasurementHandler) GetMeasurement(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.GetMeasurement(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

// ListMeasurements accepts an optional ?customerId= filter.
func (h *MeasurementHandler) ListMeasurements(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListMeasurements(r.Context(), userID(r), r.URL.Query().Get("customerId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *MeasurementHandler) UpdateMeasurement(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMeasurementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.Service.UpdateMeasurement(r.Context(), userID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

func (h *MeasurementHandler) DeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteMeasurement(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Fields lists the measurement fields available for ?gender=.
func (h *MeasurementHandler) Fields(w http.ResponseWriter, r *http.Request) {
	gender := models.Gender(r.URL.Query().Get("gender"))
	if !gender.Valid() {
		utils.Error(w, http.StatusBadRequest, "gender must be male or female")
		return
	}
	fields, err := h.Service.AllowedFields(r.Context(), userID(r), gender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"gender": gender, "fields": fields})
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tailor-backend/internal/logger"
	"tailor-backend/internal/models"
	"tailor-backend/internal/services"
	"tailor-backend/pkg/utils"
)

type OrderHandler struct {
	Service  *services.OrderService
	Receipts *services.ReceiptService
}

func NewOrderHandler(s *services.OrderService, receipts *services.ReceiptService) *OrderHandler {
	return &OrderHandler{Service: s, Receipts: receipts}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), userID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

// GetOrder returns the order with its payments and balance.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetOrderDetail(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, detail)
}

// ListOrders accepts optional ?customerId= and ?status= filters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.Service.ListOrders(r.Context(), userID(r), q.Get("customerId"), models.OrderStatus(q.Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.Service.UpdateOrder(r.Context(), userID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) CollectOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.MarkCollected(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// DeleteOrder removes the order and its payments. A part-way failure is
// reported with the steps that did complete.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteOrder(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Receipt streams the order receipt as a PDF download.
func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, err := h.Receipts.GetReceiptData(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pdf, err := h.Receipts.GenerateReceiptPDF(data)
	if err != nil {
		logger.FromContext(r.Context()).Error("receipt render failed", zap.String("order_id", id), zap.Error(err))
		utils.Error(w, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, id))
	w.Write(pdf)
}

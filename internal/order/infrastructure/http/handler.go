package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/application"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

// Handler is the order intake surface standing in for whatever upstream
// creates orders. It accepts an order, hands it to the saga, and lets the
// stored snapshot be inspected afterwards.
type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-intake"),
	}
}

type createOrderReq struct {
	ID         string            `json:"id"`
	Customer   json.RawMessage   `json:"customer"`
	Payment    json.RawMessage   `json:"payment"`
	Items      []domain.LineItem `json:"items"`
	TotalCents int64             `json:"total_cents"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	o := domain.NewOrder(req.ID, req.Customer, req.Payment, req.Items)
	// A client-declared total is kept for the collector to verify against
	// catalog prices, never trusted as-is.
	o.TotalCents = req.TotalCents

	if err := h.service.Submit(ctx, o); err != nil {
		h.log.Error("order submit failed", "order_id", o.ID, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"order_id": o.ID, "status": string(o.Status)})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrOrderNotFound) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("order lookup failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(o)
}

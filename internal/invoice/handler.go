package invoice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spaceworks-id/spaceworks/internal/platform/httpx"
)

// Handler serves the invoice JSON API consumed by the admin console.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the invoice handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers invoice endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Post("/{id}/send", h.handleSend)
	r.Post("/{id}/pay", h.handlePay)
	r.Post("/{id}/cancel", h.handleCancel)
}

type lineItemRequest struct {
	Description string `json:"description" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	UnitPrice   string `json:"unitPrice" validate:"required"`
}

type draftInvoiceRequest struct {
	OrderID             string            `json:"orderId"`
	CustomerName        string            `json:"customerName" validate:"required"`
	CustomerEmail       string            `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone       string            `json:"customerPhone"`
	ServiceName         string            `json:"serviceName"`
	CityName            string            `json:"cityName"`
	Items               []lineItemRequest `json:"items" validate:"dive"`
	TaxRatePercent      string            `json:"taxRatePercent"`
	DiscountRatePercent string            `json:"discountRatePercent"`
	IssueDate           string            `json:"issueDate" validate:"required"`
	PaymentTerm         string            `json:"paymentTerm" validate:"required"`
}

type payRequest struct {
	PaidAt     string `json:"paidAt"`
	PaidAmount string `json:"paidAmount"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	inv, err := h.service.CreateDraft(r.Context(), input)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoiceView(*inv))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	inv, err := h.service.UpdateDraft(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceView(*inv))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceView(*inv))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:       Status(r.URL.Query().Get("status")),
		CustomerName: r.URL.Query().Get("customer"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filter.Offset = offset
		}
	}
	invoices, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	views := make([]invoiceViewModel, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, invoiceView(inv))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": views})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Send)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Cancel)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req payRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	var paidAt time.Time
	if req.PaidAt != "" {
		parsed, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "paidAt must be YYYY-MM-DD")
			return
		}
		paidAt = parsed
	}
	paidAmount := decimal.Zero
	if req.PaidAmount != "" {
		parsed, err := decimal.NewFromString(req.PaidAmount)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "paidAmount must be a number")
			return
		}
		paidAmount = parsed
	}
	if err := h.service.MarkPaid(r.Context(), id, paidAt, paidAmount); err != nil {
		h.respondError(w, "mark invoice paid", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(StatusPaid)})
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) error) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		h.respondError(w, "transition invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request) (DraftInvoiceInput, bool) {
	var req draftInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return DraftInvoiceInput{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return DraftInvoiceInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return DraftInvoiceInput{}, false
	}
	return input, true
}

func (req draftInvoiceRequest) toInput() (DraftInvoiceInput, error) {
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return DraftInvoiceInput{}, errors.New("issueDate must be YYYY-MM-DD")
	}
	taxRate, err := parseRate(req.TaxRatePercent)
	if err != nil {
		return DraftInvoiceInput{}, errors.New("taxRatePercent must be a number")
	}
	discountRate, err := parseRate(req.DiscountRatePercent)
	if err != nil {
		return DraftInvoiceInput{}, errors.New("discountRatePercent must be a number")
	}
	items := make([]LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return DraftInvoiceInput{}, errors.New("item quantity must be a number")
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return DraftInvoiceInput{}, errors.New("item unitPrice must be a number")
		}
		items = append(items, LineItemInput{
			Description: item.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
	}
	return DraftInvoiceInput{
		OrderID:             req.OrderID,
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		ServiceName:         req.ServiceName,
		CityName:            req.CityName,
		Items:               items,
		TaxRatePercent:      taxRate,
		DiscountRatePercent: discountRate,
		IssueDate:           issueDate,
		PaymentTerm:         PaymentTerm(req.PaymentTerm),
	}, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invalid invoice id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Invalid Status", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

type lineItemViewModel struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Amount      string `json:"amount"`
}

type invoiceViewModel struct {
	ID                  string              `json:"id"`
	Number              string              `json:"number"`
	OrderID             string              `json:"orderId,omitempty"`
	CustomerName        string              `json:"customerName"`
	CustomerEmail       string              `json:"customerEmail,omitempty"`
	CustomerPhone       string              `json:"customerPhone,omitempty"`
	ServiceName         string              `json:"serviceName,omitempty"`
	CityName            string              `json:"cityName,omitempty"`
	Items               []lineItemViewModel `json:"items"`
	TaxRatePercent      string              `json:"taxRatePercent"`
	DiscountRatePercent string              `json:"discountRatePercent"`
	Subtotal            string              `json:"subtotal"`
	DiscountAmount      string              `json:"discountAmount"`
	TaxAmount           string              `json:"taxAmount"`
	Total               string              `json:"total"`
	IssueDate           string              `json:"issueDate"`
	PaymentTerm         string              `json:"paymentTerm"`
	DueDate             string              `json:"dueDate"`
	Status              string              `json:"status"`
	PaidAt              string              `json:"paidAt,omitempty"`
	PaidAmount          string              `json:"paidAmount,omitempty"`
}

func invoiceView(inv Invoice) invoiceViewModel {
	items := make([]lineItemViewModel, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, lineItemViewModel{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			Amount:      item.Amount().String(),
		})
	}
	vm := invoiceViewModel{
		ID:                  inv.ID.String(),
		Number:              inv.Number,
		OrderID:             inv.OrderID,
		CustomerName:        inv.CustomerName,
		CustomerEmail:       inv.CustomerEmail,
		CustomerPhone:       inv.CustomerPhone,
		ServiceName:         inv.ServiceName,
		CityName:            inv.CityName,
		Items:               items,
		TaxRatePercent:      inv.TaxRatePercent.String(),
		DiscountRatePercent: inv.DiscountRatePercent.String(),
		Subtotal:            inv.Totals.Subtotal.String(),
		DiscountAmount:      inv.Totals.DiscountAmount.String(),
		TaxAmount:           inv.Totals.TaxAmount.String(),
		Total:               inv.Totals.Total.String(),
		IssueDate:           inv.IssueDate.Format("2006-01-02"),
		PaymentTerm:         string(inv.PaymentTerm),
		DueDate:             inv.DueDate.Format("2006-01-02"),
		Status:              string(inv.Status),
	}
	if inv.PaidAt != nil {
		vm.PaidAt = inv.PaidAt.Format("2006-01-02")
		vm.PaidAmount = inv.PaidAmount.String()
	}
	return vm
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/form"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrUnknownDoctype is returned for doctypes the desk does not serve
var ErrUnknownDoctype = errors.New("unknown doctype")

// Handlers contains the REST request handlers
type Handlers struct {
	deps   Dependencies
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger Logger) *Handlers {
	return &Handlers{deps: deps, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreateDonationRequest is the body of POST /api/donations
type CreateDonationRequest struct {
	Donor         string  `json:"donor"`
	DonorType     string  `json:"donor_type"`
	Company       string  `json:"company"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	ModeOfPayment string  `json:"mode_of_payment"`
	PaymentID     string  `json:"payment_id"`
}

// CreateDonorRequest is the body of POST /api/donors
type CreateDonorRequest struct {
	DonorName string `json:"donor_name"`
	DonorType string `json:"donor_type"`
	Email     string `json:"email" binding:"required"`
	Mobile    string `json:"mobile"`
	PANNumber string `json:"pan_number"`
}

// PaymentAuthorizedRequest is the body of POST /api/donations/:name/payment-authorized
type PaymentAuthorizedRequest struct {
	Status string `json:"status" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	if h.deps.Health != nil {
		if err := h.deps.Health(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: response, Error: err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListDonations handles GET /api/donations
func (h *Handlers) ListDonations(c *gin.Context) {
	filter, err := donationFilterFromQuery(c)
	if err != nil {
		h.fail(c, "Invalid query parameters", err)
		return
	}

	donations, err := h.deps.Donations.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to list donations", err)
		return
	}
	if donations == nil {
		donations = []*entity.Donation{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: donations})
}

// CreateDonation handles POST /api/donations
func (h *Handlers) CreateDonation(c *gin.Context) {
	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Invalid donation body", badRequest(err))
		return
	}

	donation := &entity.Donation{
		Donor:         req.Donor,
		DonorType:     req.DonorType,
		Company:       req.Company,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ModeOfPayment: req.ModeOfPayment,
		PaymentID:     req.PaymentID,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.fail(c, "Invalid donation date", badRequest(err))
			return
		}
		donation.Date = date
	}

	if err := h.deps.Donations.Create(c.Request.Context(), donation); err != nil {
		h.fail(c, "Failed to create donation", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: donation})
}

// GetDonation handles GET /api/donations/:name
func (h *Handlers) GetDonation(c *gin.Context) {
	donation, err := h.deps.Donations.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "Failed to get donation", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: donation})
}

// SubmitDonation handles POST /api/donations/:name/submit
func (h *Handlers) SubmitDonation(c *gin.Context) {
	donation, err := h.deps.Donations.Submit(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "Failed to submit donation", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: donation})
}

// PaymentAuthorized handles POST /api/donations/:name/payment-authorized
func (h *Handlers) PaymentAuthorized(c *gin.Context) {
	var req PaymentAuthorizedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Invalid payment status body", badRequest(err))
		return
	}

	donation, err := h.deps.Donations.OnPaymentAuthorized(c.Request.Context(), c.Param("name"), req.Status)
	if err != nil {
		h.fail(c, "Failed to apply payment status", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: donation})
}

// ExportDonations handles GET /api/donations/export.xlsx
func (h *Handlers) ExportDonations(c *gin.Context) {
	filter, err := donationFilterFromQuery(c)
	if err != nil {
		h.fail(c, "Invalid query parameters", err)
		return
	}

	export, err := h.deps.Export.DonationRegister(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to export donation register", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, xlsxContentType, export.Content)
}

// CreateDonor handles POST /api/donors
func (h *Handlers) CreateDonor(c *gin.Context) {
	var req CreateDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Invalid donor body", badRequest(err))
		return
	}

	donor := &entity.Donor{
		DonorName: req.DonorName,
		DonorType: req.DonorType,
		Email:     req.Email,
		Mobile:    req.Mobile,
		PANNumber: req.PANNumber,
	}
	if err := h.deps.Donors.Create(c.Request.Context(), donor); err != nil {
		h.fail(c, "Failed to create donor", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: donor})
}

// GetDonor handles GET /api/donors/:name
func (h *Handlers) GetDonor(c *gin.Context) {
	donor, err := h.deps.Donors.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "Failed to get donor", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: donor})
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.deps.Settings.Get(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get settings", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: settings})
}

// UpdateSettings handles PUT /api/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var settings entity.NonProfitSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		h.fail(c, "Invalid settings body", badRequest(err))
		return
	}

	if err := h.deps.Settings.Update(c.Request.Context(), &settings); err != nil {
		h.fail(c, "Failed to update settings", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: &settings})
}

// CallMethod handles POST /api/method/:doctype/:name/:method. The response
// body mirrors a document method call: {"message": {...}}.
func (h *Handlers) CallMethod(c *gin.Context) {
	var args map[string]interface{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			h.fail(c, "Invalid method arguments", badRequest(err))
			return
		}
	}

	doctype, err := resolveDoctype(c.Param("doctype"))
	if err != nil {
		h.fail(c, "Unknown doctype", err)
		return
	}

	resp, err := h.deps.Methods.Call(c.Request.Context(), form.CallRequest{
		Doctype: doctype,
		Name:    c.Param("name"),
		Method:  c.Param("method"),
		Args:    args,
	})
	if err != nil {
		h.fail(c, "Document method failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LoadRecord returns the desk snapshot of one document
func (h *Handlers) LoadRecord(ctx context.Context, doctype, name string) (*form.Record, error) {
	switch doctype {
	case entity.DoctypeDonation:
		d, err := h.deps.Donations.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		return &form.Record{Doctype: doctype, Name: d.Name, DocStatus: int(d.DocStatus), Fields: d.Fields()}, nil
	case entity.DoctypeDonor:
		d, err := h.deps.Donors.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		return &form.Record{Doctype: doctype, Name: d.Name, Fields: d.Fields()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoctype, doctype)
	}
}

// fail logs err and writes the error envelope with the mapped status
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
		c.JSON(status, Response{Success: false, Error: "internal server error"})
		return
	}
	h.logger.Info(msg, "path", c.Request.URL.Path, "status", status, "error", err.Error())
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return badRequestError{err: err} }

// statusFor maps application errors to HTTP status codes
func statusFor(err error) int {
	var br badRequestError
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, ErrUnknownDoctype),
		errors.Is(err, ErrUnknownMethod),
		errors.Is(err, form.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrDonorRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrCancelled),
		errors.Is(err, service.ErrInvoiceAlreadyLinked),
		errors.Is(err, service.ErrCustomerAlreadyLinked),
		errors.Is(err, form.ErrFrozen):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotSubmitted),
		errors.Is(err, service.ErrNotPaid),
		errors.Is(err, service.ErrNoCustomer),
		errors.Is(err, service.ErrSettingsIncomplete),
		errors.Is(err, service.ErrNoLinkedItem):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidSignature):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func donationFilterFromQuery(c *gin.Context) (entity.DonationFilter, error) {
	filter := entity.DonationFilter{Donor: c.Query("donor")}

	if v := c.Query("docstatus"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, badRequest(fmt.Errorf("docstatus: %w", err))
		}
		status := entity.DocStatus(n)
		filter.DocStatus = &status
	}
	if v := c.Query("paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return filter, badRequest(fmt.Errorf("paid: %w", err))
		}
		filter.Paid = &paid
	}
	if v := c.Query("without_invoice"); v != "" {
		without, err := strconv.ParseBool(v)
		if err != nil {
			return filter, badRequest(fmt.Errorf("without_invoice: %w", err))
		}
		filter.WithoutInvoice = without
	}

	limit, err := intQuery(c, "limit")
	if err != nil {
		return filter, err
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		return filter, err
	}
	if limit < 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	filter.Limit, filter.Offset = limit, offset
	return filter, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest(fmt.Errorf("%s: %w", key, err))
	}
	return n, nil
}

// resolveDoctype accepts a doctype name or its lowercase slug ("donation", "donor")
func resolveDoctype(s string) (string, error) {
	for _, doctype := range []string{entity.DoctypeDonation, entity.DoctypeDonor} {
		if strings.EqualFold(s, doctype) {
			return doctype, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownDoctype, s)
}

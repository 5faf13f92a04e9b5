package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/form"
)

// MethodMakeCustomerAndLink creates a customer for a donor
const MethodMakeCustomerAndLink = "make_customer_and_link"

// ErrUnknownMethod is returned for methods outside the whitelist
var ErrUnknownMethod = errors.New("method not whitelisted")

type methodFunc func(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error)

// MethodRouter dispatches whitelisted document methods. It serves the
// /api/method endpoint and is the in-process form.Caller for the desk.
type MethodRouter struct {
	methods map[string]methodFunc
	logger  Logger
}

// NewMethodRouter creates a router over the donation and donor services
func NewMethodRouter(donations service.DonationService, donors service.DonorService, logger Logger) *MethodRouter {
	m := &MethodRouter{
		methods: make(map[string]methodFunc),
		logger:  logger,
	}

	m.methods[methodKey(entity.DoctypeDonation, form.MethodGenerateInvoice)] = func(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
		result, err := donations.GenerateInvoice(ctx, name, service.InvoiceOptions{
			Save:             form.Truthy(args["save"]),
			WithPaymentEntry: form.Truthy(args["with_payment_entry"]),
		})
		if err != nil {
			return nil, err
		}
		payload := map[string]interface{}{
			"invoice":     result.Invoice.Name,
			"grand_total": result.Invoice.GrandTotal,
		}
		if result.PaymentEntry != nil {
			payload["payment_entry"] = result.PaymentEntry.Name
		}
		return payload, nil
	}

	m.methods[methodKey(entity.DoctypeDonor, MethodMakeCustomerAndLink)] = func(ctx context.Context, name string, _ map[string]interface{}) (map[string]interface{}, error) {
		customer, err := donors.MakeCustomerAndLink(ctx, name)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"customer": customer.Name}, nil
	}

	return m
}

func methodKey(doctype, method string) string {
	return doctype + "." + method
}

// Call implements form.Caller
func (m *MethodRouter) Call(ctx context.Context, req form.CallRequest) (*form.CallResponse, error) {
	fn, ok := m.methods[methodKey(req.Doctype, req.Method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, req.Doctype, req.Method)
	}

	m.logger.Info("Calling document method",
		"doctype", req.Doctype,
		"name", req.Name,
		"method", req.Method)

	payload, err := fn(ctx, req.Name, req.Args)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Name, err)
	}
	return &form.CallResponse{Payload: payload}, nil
}

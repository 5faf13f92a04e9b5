package form

import (
	"context"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

const (
	// MethodGenerateInvoice is the server-side method that invoices a donation
	MethodGenerateInvoice = "generate_invoice"
	// LabelGenerateInvoice labels the action offered on an uninvoiced, submitted donation
	LabelGenerateInvoice = "Generate Invoice"
	// MsgCreatingDonationInvoice is shown while the invoice is being created
	MsgCreatingDonationInvoice = "Creating Donation Invoice"
)

// DonationController drives the Donation record view
type DonationController struct {
	caller     Caller
	translator Translator
	logger     Logger
}

// NewDonationController creates a controller that reaches the server through caller
func NewDonationController(caller Caller, translator Translator, logger Logger) *DonationController {
	if translator == nil {
		translator = Identity{}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &DonationController{
		caller:     caller,
		translator: translator,
		logger:     logger,
	}
}

// Register binds the controller to the Donation view events
func (c *DonationController) Register(r *Registry) {
	r.On(entity.DoctypeDonation, EventRefresh, "donation.refresh", c.Refresh)
}

// CanGenerateInvoice reports whether rec is a submitted donation without an invoice
func CanGenerateInvoice(rec *Record) bool {
	return !rec.Truthy("invoice") && rec.DocStatus == int(entity.DocStatusSubmitted)
}

// Refresh offers "Generate Invoice" on submitted donations that have no invoice yet
func (c *DonationController) Refresh(ctx context.Context, rec *Record, view View) error {
	if !CanGenerateInvoice(rec) {
		return nil
	}

	name := rec.Name
	view.AddAction(LabelGenerateInvoice, func(ctx context.Context) error {
		return c.generateInvoice(ctx, name, view)
	})
	return nil
}

// generateInvoice issues one generate_invoice call with the view frozen and
// reloads the view when the server reports a linked invoice.
func (c *DonationController) generateInvoice(ctx context.Context, name string, view View) error {
	view.Freeze(c.translator.Translate(MsgCreatingDonationInvoice))

	resp, err := c.caller.Call(ctx, CallRequest{
		Doctype: entity.DoctypeDonation,
		Name:    name,
		Method:  MethodGenerateInvoice,
		Args:    map[string]interface{}{"save": true},
	})
	view.Unfreeze()

	if err != nil {
		c.logger.Error("Invoice generation call failed", "donation", name, "error", err)
		view.ShowError(err)
		return err
	}

	if !Truthy(resp.Get("invoice")) {
		return nil
	}

	c.logger.Info("Donation invoiced, reloading view", "donation", name, "invoice", resp.Get("invoice"))
	return view.Reload(ctx)
}

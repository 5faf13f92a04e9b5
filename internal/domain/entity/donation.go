package entity

import "time"

// Donation records a contribution from a donor
type Donation struct {
	Name          string    `json:"name"`
	Donor         string    `json:"donor"`
	DonorName     string    `json:"donor_name"`
	DonorType     string    `json:"donor_type"`
	Email         string    `json:"email"`
	Company       string    `json:"company"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	ModeOfPayment string    `json:"mode_of_payment"`
	PaymentID     string    `json:"payment_id"`
	Paid          bool      `json:"paid"`
	Invoice       string    `json:"invoice"`
	DocStatus     DocStatus `json:"docstatus"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsSubmitted reports whether the donation has been submitted
func (d *Donation) IsSubmitted() bool {
	return d.DocStatus == DocStatusSubmitted
}

// HasPaymentDetails mirrors the minimum payment information required before invoicing
func (d *Donation) HasPaymentDetails() bool {
	return d.Paid || d.Currency != "" || d.Amount != 0
}

// Fields returns the donation as a flat field map, the shape a record view works with
func (d *Donation) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":            d.Name,
		"donor":           d.Donor,
		"donor_name":      d.DonorName,
		"donor_type":      d.DonorType,
		"email":           d.Email,
		"company":         d.Company,
		"date":            d.Date.Format("2006-01-02"),
		"amount":          d.Amount,
		"currency":        d.Currency,
		"mode_of_payment": d.ModeOfPayment,
		"payment_id":      d.PaymentID,
		"paid":            d.Paid,
		"invoice":         d.Invoice,
		"docstatus":       int(d.DocStatus),
	}
}

// DonationFilter narrows a donation listing
type DonationFilter struct {
	Donor          string
	DocStatus      *DocStatus
	Paid           *bool
	WithoutInvoice bool
	Limit          int
	Offset         int
}

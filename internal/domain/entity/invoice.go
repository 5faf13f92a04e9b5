package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesInvoice is the invoice generated for a donation
type SalesInvoice struct {
	Name        string             `json:"name"`
	Customer    string             `json:"customer"`
	DebitTo     string             `json:"debit_to"`
	Currency    string             `json:"currency"`
	Company     string             `json:"company"`
	IsPOS       bool               `json:"is_pos"`
	PostingDate time.Time          `json:"posting_date"`
	Items       []SalesInvoiceItem `json:"items"`
	GrandTotal  float64            `json:"grand_total"`
	DocStatus   DocStatus          `json:"docstatus"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SalesInvoiceItem is one billed line
type SalesInvoiceItem struct {
	ItemCode string  `json:"item_code"`
	Rate     float64 `json:"rate"`
	Qty      float64 `json:"qty"`
	Amount   float64 `json:"amount"`
}

// SetMissingValues fills derived amounts and the posting date
func (inv *SalesInvoice) SetMissingValues(now time.Time) {
	if inv.PostingDate.IsZero() {
		inv.PostingDate = now
	}

	total := decimal.Zero
	for i := range inv.Items {
		if inv.Items[i].Qty == 0 {
			inv.Items[i].Qty = 1
		}
		amount := decimal.NewFromFloat(inv.Items[i].Rate).
			Mul(decimal.NewFromFloat(inv.Items[i].Qty)).
			Round(2)
		inv.Items[i].Amount = amount.InexactFloat64()
		total = total.Add(amount)
	}
	inv.GrandTotal = total.InexactFloat64()
}

// PaymentEntry records money received against an invoice
type PaymentEntry struct {
	Name             string     `json:"name"`
	PaymentType      string     `json:"payment_type"`
	PartyType        string     `json:"party_type"`
	Party            string     `json:"party"`
	ReferenceDoctype string     `json:"reference_doctype"`
	ReferenceName    string     `json:"reference_name"`
	PaidAmount       float64    `json:"paid_amount"`
	PaidTo           string     `json:"paid_to"`
	PostingDate      time.Time  `json:"posting_date"`
	ReferenceNo      string     `json:"reference_no"`
	ReferenceDate    *time.Time `json:"reference_date,omitempty"`
	DocStatus        DocStatus  `json:"docstatus"`
	CreatedAt        time.Time  `json:"created_at"`
}

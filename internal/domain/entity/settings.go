package entity

import "time"

// NonProfitSettings is the single settings document for donations
type NonProfitSettings struct {
	Company                        string    `json:"company"`
	DonationCompany                string    `json:"donation_company"`
	DonationDebitAccount           string    `json:"donation_debit_account"`
	DonationPaymentAccount         string    `json:"donation_payment_account"`
	DefaultDonorType               string    `json:"default_donor_type"`
	AllowDonationInvoicing         bool      `json:"allow_donation_invoicing"`
	AutomateDonationInvoicing      bool      `json:"automate_donation_invoicing"`
	AutomateDonationPaymentEntries bool      `json:"automate_donation_payment_entries"`
	CustomerGroup                  string    `json:"customer_group"`
	Territory                      string    `json:"territory"`
	DefaultCurrency                string    `json:"default_currency"`
	UpdatedAt                      time.Time `json:"updated_at"`
}

// CompanyForDonations returns the company new donations are booked against
func (s *NonProfitSettings) CompanyForDonations() string {
	if s.DonationCompany != "" {
		return s.DonationCompany
	}
	return s.Company
}

// AutoInvoicing reports whether submitted, paid donations are invoiced without user action
func (s *NonProfitSettings) AutoInvoicing() bool {
	return s.AllowDonationInvoicing && s.AutomateDonationInvoicing
}

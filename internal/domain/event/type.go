package event

// Type identifies the type of domain event
type Type string

const (
	TypeDonationCreated           Type = "donation.created"
	TypeDonationSubmitted         Type = "donation.submitted"
	TypeDonationPaymentAuthorized Type = "donation.payment_authorized"
	TypeInvoiceGenerated          Type = "invoice.generated"
	TypePaymentEntryCreated       Type = "payment_entry.created"
	TypeDonorCreated              Type = "donor.created"
	TypeCustomerLinked            Type = "customer.linked"
	TypeWebhookFailed             Type = "webhook.failed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeDonationCreated,
		TypeDonationSubmitted,
		TypeDonationPaymentAuthorized,
		TypeInvoiceGenerated,
		TypePaymentEntryCreated,
		TypeDonorCreated,
		TypeCustomerLinked,
		TypeWebhookFailed:
		return true
	default:
		return false
	}
}

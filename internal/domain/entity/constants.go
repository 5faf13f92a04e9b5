package entity

// DocStatus is the submission state shared by every submittable document
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// String returns the display label of the status
func (s DocStatus) String() string {
	switch s {
	case DocStatusDraft:
		return "Draft"
	case DocStatusSubmitted:
		return "Submitted"
	case DocStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Doctype names
const (
	DoctypeDonation      = "Donation"
	DoctypeDonor         = "Donor"
	DoctypeDonorType     = "Donor Type"
	DoctypeCustomer      = "Customer"
	DoctypeSalesInvoice  = "Sales Invoice"
	DoctypePaymentEntry  = "Payment Entry"
	DoctypeModeOfPayment = "Mode of Payment"
	DoctypeErrorLog      = "Error Log"
)

// Naming series prefixes
const (
	SeriesDonation     = "DON-.YYYY.-"
	SeriesSalesInvoice = "SINV-.YYYY.-"
	SeriesPaymentEntry = "PE-.YYYY.-"
	SeriesDonor        = "DONOR-"
	SeriesCustomer     = "CUST-"
)

// User types of a session user
const (
	UserTypeSystem  = "System User"
	UserTypeWebsite = "Website User"
)

// Payment statuses reported by a payment gateway
const (
	PaymentStatusCompleted  = "Completed"
	PaymentStatusAuthorized = "Authorized"
	PaymentStatusFailed     = "Failed"
)

// Customer types
const (
	CustomerTypeIndividual = "Individual"
	CustomerTypeCompany    = "Company"
)

// Comment types
const (
	CommentTypeComment = "Comment"
	CommentTypeInfo    = "Info"
)

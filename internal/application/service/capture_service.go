package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/domain/event"
)

// Capture outcomes reported back to the payment gateway
const (
	CaptureSuccess = "Success"
	CaptureFailed  = "Failed"
	CaptureIgnored = "Ignored"
)

const (
	razorpayPaymentCaptured = "payment.captured"
	currencyExponent        = 2
)

// SignatureVerifier checks that a webhook body was signed by the gateway
type SignatureVerifier interface {
	Verify(body []byte, signature string) error
}

// CaptureResult is returned to the gateway for every webhook delivery
type CaptureResult struct {
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Donation string `json:"donation,omitempty"`
	ErrorLog string `json:"error_log,omitempty"`
}

// RazorpayWebhook is the subset of a Razorpay webhook body used for donations
type RazorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity RazorpayPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// RazorpayPayment is a captured payment
type RazorpayPayment struct {
	ID          string          `json:"id"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method"`
	Email       string          `json:"email"`
	Contact     string          `json:"contact"`
	Description string          `json:"description"`
	InvoiceID   string          `json:"invoice_id"`
	Notes       json.RawMessage `json:"notes"`
}

// IsSubscription reports whether the payment belongs to a subscription
// rather than a one-off donation.
func (p *RazorpayPayment) IsSubscription() bool {
	return p.InvoiceID != "" || strings.Contains(strings.ToLower(p.Description), "subscription")
}

// CaptureService turns captured gateway payments into submitted donations
type CaptureService interface {
	Capture(ctx context.Context, body []byte, signature string) *CaptureResult
}

type captureServiceImpl struct {
	verifier     SignatureVerifier
	donors       DonorService
	donations    DonationService
	settings     SettingsService
	modeRepo     port.ModeOfPaymentRepository
	commentRepo  port.CommentRepository
	errorLogRepo port.ErrorLogRepository
	publisher    Publisher
	logger       Logger
}

// NewCaptureService creates a new CaptureService
func NewCaptureService(
	verifier SignatureVerifier,
	donors DonorService,
	donations DonationService,
	settings SettingsService,
	modeRepo port.ModeOfPaymentRepository,
	commentRepo port.CommentRepository,
	errorLogRepo port.ErrorLogRepository,
	publisher Publisher,
	logger Logger,
) CaptureService {
	return &captureServiceImpl{
		verifier:     verifier,
		donors:       donors,
		donations:    donations,
		settings:     settings,
		modeRepo:     modeRepo,
		commentRepo:  commentRepo,
		errorLogRepo: errorLogRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *captureServiceImpl) Capture(ctx context.Context, body []byte, signature string) *CaptureResult {
	if err := s.verifier.Verify(body, signature); err != nil {
		s.logger.Error("Donation webhook verification failed", "error", err)
		return s.fail(ctx, "Donation Webhook Verification Error", err.Error(), err)
	}

	var hook RazorpayWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		s.logger.Error("Failed to parse donation webhook", "error", err)
		return s.fail(ctx, "Donation Webhook Parse Error", err.Error(), err)
	}

	if hook.Event != razorpayPaymentCaptured {
		s.logger.Info("Ignoring donation webhook event", "event", hook.Event)
		return &CaptureResult{Status: CaptureIgnored, Reason: "unhandled event " + hook.Event}
	}

	payment := hook.Payload.Payment.Entity
	if payment.IsSubscription() {
		s.logger.Info("Ignoring subscription payment", "payment_id", payment.ID)
		return &CaptureResult{Status: CaptureIgnored, Reason: "subscription payment"}
	}

	donation, donorName, err := s.capturePayment(ctx, &payment)
	if err != nil {
		s.logger.Error("Failed to create donation from payment", "error", err, "payment_id", payment.ID)
		message := fmt.Sprintf("%v\n\nPayment ID: %s", err, payment.ID)
		return s.fail(ctx, "Error creating donation entry for "+donorName, message, err)
	}

	s.logger.Info("Donation captured from payment", "donation", donation.Name, "payment_id", payment.ID)
	return &CaptureResult{Status: CaptureSuccess, Donation: donation.Name}
}

// capturePayment returns the donor name it got to so a failure can be attributed
func (s *captureServiceImpl) capturePayment(ctx context.Context, payment *RazorpayPayment) (*entity.Donation, string, error) {
	donor, err := s.donors.FindByEmail(ctx, payment.Email)
	if err != nil {
		return nil, payment.Email, err
	}
	if donor == nil {
		donor, err = s.createDonor(ctx, payment)
		if err != nil {
			return nil, payment.Email, fmt.Errorf("create donor: %w", err)
		}
	}

	donation, err := s.createDonation(ctx, donor, payment)
	if err != nil {
		return nil, donor.Name, err
	}
	return donation, donor.Name, nil
}

func (s *captureServiceImpl) createDonor(ctx context.Context, payment *RazorpayPayment) (*entity.Donor, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	donor := &entity.Donor{
		DonorName: payment.Email,
		DonorType: settings.DefaultDonorType,
		Email:     payment.Email,
		Mobile:    payment.Contact,
	}

	comment := applyNotes(donor, payment.Notes)

	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, err
	}

	if comment != "" {
		err := s.commentRepo.Create(ctx, &entity.Comment{
			ReferenceDoctype: entity.DoctypeDonor,
			ReferenceName:    donor.Name,
			CommentType:      entity.CommentTypeComment,
			Content:          comment,
		})
		if err != nil {
			return nil, fmt.Errorf("store payment notes: %w", err)
		}
	}
	return donor, nil
}

// applyNotes copies the donor name and PAN out of payment notes and returns
// the text to keep as a comment on the donor.
func applyNotes(donor *entity.Donor, raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var notes map[string]interface{}
	if err := json.Unmarshal(raw, &notes); err != nil || len(notes) == 0 {
		return ""
	}

	keys := make([]string, 0, len(notes))
	for k := range notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		value := fmt.Sprint(notes[k])
		lines = append(lines, fmt.Sprintf("%s: %s", k, value))

		lower := strings.ToLower(k)
		if strings.Contains(lower, "name") {
			donor.DonorName = value
		}
		if strings.Contains(lower, "pan") {
			donor.PANNumber = value
		}
	}
	return strings.Join(lines, "\n")
}

func (s *captureServiceImpl) createDonation(ctx context.Context, donor *entity.Donor, payment *RazorpayPayment) (*entity.Donation, error) {
	if payment.Method != "" {
		exists, err := s.modeRepo.Exists(ctx, payment.Method)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := s.modeRepo.Create(ctx, &entity.ModeOfPayment{Name: payment.Method}); err != nil {
				return nil, fmt.Errorf("create mode of payment: %w", err)
			}
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	donation := &entity.Donation{
		Donor:         donor.Name,
		DonorName:     donor.DonorName,
		DonorType:     donor.DonorType,
		Email:         donor.Email,
		Company:       settings.CompanyForDonations(),
		Amount:        decimal.New(payment.Amount, -currencyExponent).InexactFloat64(),
		Currency:      strings.ToUpper(payment.Currency),
		ModeOfPayment: payment.Method,
		PaymentID:     payment.ID,
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, err
	}
	if _, err := s.donations.Submit(ctx, donation.Name); err != nil {
		return nil, err
	}

	authorized, err := s.donations.OnPaymentAuthorized(ctx, donation.Name, entity.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	return authorized, nil
}

// fail stores an error log and raises webhook.failed so system managers hear about it
func (s *captureServiceImpl) fail(ctx context.Context, title, message string, cause error) *CaptureResult {
	log := &entity.ErrorLog{
		Name:    uuid.NewString(),
		Title:   title,
		Message: message,
	}
	result := &CaptureResult{Status: CaptureFailed, Reason: cause.Error()}

	if err := s.errorLogRepo.Create(ctx, log); err != nil {
		s.logger.Error("Failed to store webhook error log", "error", err, "title", title)
		return result
	}
	result.ErrorLog = log.Name

	s.publisher.DispatchAsync(ctx, event.NewEvent(event.TypeWebhookFailed, entity.DoctypeErrorLog, log.Name, map[string]interface{}{
		"title":   log.Title,
		"message": log.Message,
	}))
	return result
}

package service

import (
	"context"
	"fmt"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

const webhookFailureSubject = "[Important] Razorpay donation webhook failed, please check."

// NotificationService alerts system managers
type NotificationService interface {
	// NotifyWebhookFailure tells every system manager about a failed donation webhook.
	// Delivery failures are logged, never returned.
	NotifyWebhookFailure(ctx context.Context, log *entity.ErrorLog)
}

type notificationServiceImpl struct {
	sender         port.MessageSender
	systemManagers []string
	logger         Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender port.MessageSender, systemManagers []string, logger Logger) NotificationService {
	return &notificationServiceImpl{
		sender:         sender,
		systemManagers: systemManagers,
		logger:         logger,
	}
}

func (s *notificationServiceImpl) NotifyWebhookFailure(ctx context.Context, log *entity.ErrorLog) {
	if len(s.systemManagers) == 0 {
		s.logger.Info("No system managers configured, skipping webhook failure alert", "error_log", log.Name)
		return
	}

	message := buildWebhookFailureMessage(log)

	sent := 0
	for _, email := range s.systemManagers {
		if err := s.sender.SendText(ctx, email, message); err != nil {
			s.logger.Error("Failed to alert system manager", "error", err, "email", email, "error_log", log.Name)
			continue
		}
		sent++
	}

	s.logger.Info("Webhook failure alert sent",
		"error_log", log.Name,
		"recipients", sent,
		"configured", len(s.systemManagers),
	)
}

func buildWebhookFailureMessage(log *entity.ErrorLog) string {
	return fmt.Sprintf("%s\n\nDear System Manager,\n"+
		"Razorpay webhook for creating donation failed due to some reason.\n"+
		"Please check the error log linked below\n"+
		"Error Log: %s (%s)\n"+
		"Regards, Administrator",
		webhookFailureSubject, log.Name, log.Title)
}

package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/port"
)

const (
	receiveIDTypeEmail = "email"
	msgTypeText        = "text"
)

// messageCreator is the slice of the im/v1 message API the messenger uses
type messageCreator interface {
	Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error)
}

// Messenger implements port.MessageSender with Lark text messages addressed by email
type Messenger struct {
	messages messageCreator
	logger   *zap.Logger
}

// NewMessenger creates a new Lark message sender adapter
func NewMessenger(client *SDKClient, logger *zap.Logger) *Messenger {
	return &Messenger{
		messages: client.GetClient().Im.Message,
		logger:   logger,
	}
}

// SendText sends a plain text message to the Lark user registered with email
func (m *Messenger) SendText(ctx context.Context, email string, text string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if text == "" {
		return fmt.Errorf("content cannot be empty")
	}

	body, err := textMessageBody(email, text)
	if err != nil {
		return err
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDTypeEmail).
		Body(body).
		Build()

	resp, err := m.messages.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("email", email),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("email", email))

	return nil
}

// textMessageBody addresses a text message to email. The SDK keeps the built
// request body unexported, so the body is assembled here.
func textMessageBody(email, text string) (*larkIm.CreateMessageReqBody, error) {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal text content: %w", err)
	}
	return larkIm.NewCreateMessageReqBodyBuilder().
		ReceiveId(email).
		MsgType(msgTypeText).
		Content(string(content)).
		Build(), nil
}

// LogSender stands in for Lark when no app credentials are configured
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that only logs
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendText logs the message instead of delivering it
func (s *LogSender) SendText(ctx context.Context, email string, text string) error {
	s.logger.Warn("Lark not configured, message not delivered",
		zap.String("email", email),
		zap.Int("length", len(text)))
	return nil
}

var (
	_ port.MessageSender = (*Messenger)(nil)
	_ port.MessageSender = (*LogSender)(nil)
)

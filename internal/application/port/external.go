package port

import "context"

// MessageSender delivers plain text alerts to a person identified by email
type MessageSender interface {
	SendText(ctx context.Context, email string, text string) error
}

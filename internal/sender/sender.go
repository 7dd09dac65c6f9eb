// Package sender delivers notification emails.
package sender

import "context"

// Message is an email to deliver.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Sender delivers messages to recipients.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Package notify emails the counterparty when a negotiation advances. The
// abstraction keeps handlers independent of the delivery channel; the logging
// mock stands in whenever no API key is configured.
package notify

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

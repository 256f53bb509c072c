package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type ResendNotifier struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (n *ResendNotifier) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	return nil
}

package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// MockNotifier logs instead of sending. Used in development and whenever no
// Resend API key is configured.
type MockNotifier struct {
	logger *logrus.Logger
}

func NewMock(logger *logrus.Logger) *MockNotifier {
	return &MockNotifier{logger: logger}
}

func (n *MockNotifier) Send(_ context.Context, msg Message) error {
	n.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("mock notification")
	return nil
}

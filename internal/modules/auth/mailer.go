package auth

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes codes to the application log instead of sending
// mail. Used in local development and tests.
type LogMailer struct {
	Log *logrus.Logger
}

func (m *LogMailer) SendOTP(ctx context.Context, email, code string) error {
	m.Log.WithFields(logrus.Fields{
		"email": email,
		"code":  code,
	}).Info("OTP issued (log mailer)")
	return nil
}

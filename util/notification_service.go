// util/notification_service.go

package util

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/config"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

// NotificationService sends outbound mail. When no SMTP host is configured
// it degrades to logging, which keeps the digest and export jobs runnable in
// development.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	host := config.GetString("smtp.host")
	if host == "" {
		logger.Info("Sending email (smtp unconfigured, log only)",
			zap.String("recipient", recipient),
			zap.String("subject", subject))
		return nil
	}

	from := config.GetString("smtp.from")
	addr := fmt.Sprintf("%s:%d", host, config.GetInt("smtp.port"))
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + recipient,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if user := config.GetString("smtp.user"); user != "" {
		auth = smtp.PlainAuth("", user, config.GetString("smtp.password"), host)
	}

	if err := smtp.SendMail(addr, auth, from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}

	logger.Info("Email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}

// NotifyAdmins emails every superuser address; used by the weekly export.
func (n *NotificationService) NotifyAdmins(ctx context.Context, recipients []string, subject, body string) error {
	for _, recipient := range recipients {
		if err := n.SendEmail(ctx, recipient, subject, body); err != nil {
			logger.Error("Failed to notify admin",
				zap.String("recipient", recipient),
				zap.Error(err))
		}
	}
	return nil
}

// Package notify delivers operational emails. Every send is best-effort:
// callers dispatch asynchronously and a delivery failure never fails the
// operation that triggered it.
package notify

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"slicecraft/models"
	"slicecraft/pkg/logger"
)

// Mailer is the notification sink used by services. Implementations must be
// safe for concurrent use.
type Mailer interface {
	SendLowStockAlert(items []*models.StockItem) error
	SendStatusUpdate(toEmail, orderID, status string) error
	SendPasswordReset(toEmail, resetURL string) error
}

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	AdminEmail string // sender and low-stock recipient
}

type SMTPMailer struct {
	config SMTPConfig
	dialer *gomail.Dialer
	logger *logger.Logger
}

func NewSMTPMailer(config SMTPConfig, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		logger: log.WithComponent("mailer"),
	}
}

// SendLowStockAlert mails the admin one message enumerating every low row.
func (m *SMTPMailer) SendLowStockAlert(items []*models.StockItem) error {
	if len(items) == 0 {
		return nil
	}

	var list strings.Builder
	for _, item := range items {
		fmt.Fprintf(&list, "<li>%s (%s): %g %s remaining</li>", item.Name, item.ItemType, item.Quantity, item.Unit)
	}

	body := fmt.Sprintf(`<h2>Low Inventory Alert</h2>
<p>The following items are running low:</p>
<ul>%s</ul>`, list.String())

	return m.send(m.config.AdminEmail, "Low Inventory Alert", body)
}

// SendStatusUpdate mails an order's owner about a status change.
func (m *SMTPMailer) SendStatusUpdate(toEmail, orderID, status string) error {
	body := fmt.Sprintf(`<h2>Order Status Update</h2>
<p>Your order #%s status has been updated to: %s</p>`, orderID, status)

	return m.send(toEmail, "Order Status Update", body)
}

// SendPasswordReset mails a reset link.
func (m *SMTPMailer) SendPasswordReset(toEmail, resetURL string) error {
	body := fmt.Sprintf(`Please click <a href="%s">here</a> to reset your password.`, resetURL)

	return m.send(toEmail, "Reset your password", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.AdminEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send email", "error", err, "subject", subject)
		return fmt.Errorf("failed to send email: %v", err)
	}

	m.logger.Info("Email sent", "subject", subject)
	return nil
}

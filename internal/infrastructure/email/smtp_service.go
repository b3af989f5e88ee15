package email

import (
	"context"
	"fmt"
	"net/smtp"

	"shop-backend/pkg/logger"
)

type OrderConfirmationData struct {
	Email       string
	OrderNumber string
	Total       string
}

type EmailService interface {
	SendOrderConfirmation(ctx context.Context, data OrderConfirmationData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendOrderConfirmation(_ context.Context, data OrderConfirmationData) error {
	subject := "Your order " + data.OrderNumber + " is confirmed"
	body := fmt.Sprintf(`Hi,

Thanks for your purchase. Your order %s has been placed.

Order total: %s

You will receive another email when it ships.`, data.OrderNumber, data.Total)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.Email, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{data.Email}, msg); err != nil {
		logger.Warn("failed to send order confirmation", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Email,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/ndagijimanapazo/ikaze-backend/internal/config"
)

// Mailer is the email delivery collaborator of the OTP lifecycle.
type Mailer interface {
	SendEmailVerificationOTP(to, code string) error
	SendPasswordResetOTP(to, code string) error
	SendPasswordResetLink(to, token string) error
}

// MailService sends transactional mail over SMTP. Without a
// configured host it degrades to logging the mail instead, so local
// development works without an SMTP server.
type MailService struct {
	dialer    *gomail.Dialer
	from      string
	appName   string
	webAppURL string
}

// NewMailService creates the mail service from config.
func NewMailService(cfg *config.Config) *MailService {
	s := &MailService{
		from:      cfg.MailFrom,
		appName:   cfg.AppName,
		webAppURL: cfg.WebAppURL,
	}
	if cfg.MailHost != "" {
		s.dialer = gomail.NewDialer(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword)
	} else {
		log.Println("⚠️  MAIL_HOST not set - emails will be logged, not sent")
	}
	return s
}

func (s *MailService) SendEmailVerificationOTP(to, code string) error {
	subject := fmt.Sprintf("Verify your email - %s", s.appName)
	body := fmt.Sprintf(`
<html>
  <body style="font-family: sans-serif;">
    <h2>Email Verification</h2>
    <p>Your verification code is:</p>
    <h1 style="letter-spacing: 4px;">%s</h1>
    <p>This code expires in 15 minutes.</p>
    <p>%s Team</p>
  </body>
</html>`, code, s.appName)

	return s.send(to, subject, body)
}

func (s *MailService) SendPasswordResetOTP(to, code string) error {
	subject := fmt.Sprintf("Password reset code - %s", s.appName)
	body := fmt.Sprintf(`
<html>
  <body style="font-family: sans-serif;">
    <h2>Password Reset</h2>
    <p>Your password reset code is:</p>
    <h1 style="letter-spacing: 4px;">%s</h1>
    <p>This code expires in 15 minutes. If you did not request a reset, ignore this email.</p>
    <p>%s Team</p>
  </body>
</html>`, code, s.appName)

	return s.send(to, subject, body)
}

// SendPasswordResetLink is the web variant: the code rides along as a
// reset token in a link instead of being typed in.
func (s *MailService) SendPasswordResetLink(to, token string) error {
	subject := fmt.Sprintf("Reset your password - %s", s.appName)
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", s.webAppURL, token, to)
	body := fmt.Sprintf(`
<html>
  <body style="font-family: sans-serif;">
    <h2>Password Reset</h2>
    <p><a href="%s">Click here to reset your password</a></p>
    <p>The link expires in 15 minutes. If you did not request a reset, ignore this email.</p>
    <p>%s Team</p>
  </body>
</html>`, link, s.appName)

	return s.send(to, subject, body)
}

func (s *MailService) send(to, subject, htmlBody string) error {
	if s.dialer == nil {
		log.Printf("📧 [dev] mail to %s: %s", to, subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/instashare/instashare/internal/server/models"
)

// SMTPSender delivers outcome notifications by plain SMTP submission.
type SMTPSender struct {
	addr string
	from string

	// sendMail is a seam for testing without a mail server.
	sendMail func(addr, from string, to []string, msg []byte) error
}

func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{
		addr: addr,
		from: from,
		sendMail: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

func (s *SMTPSender) NotifyOutcome(ctx context.Context, user *models.User, fileName string, outcome Outcome) error {
	if user == nil || user.Email == "" {
		return fmt.Errorf("no recipient for file %q", fileName)
	}

	msg := buildMessage(s.from, user, fileName, outcome)
	if err := s.sendMail(s.addr, s.from, []string{user.Email}, msg); err != nil {
		return fmt.Errorf("send notification to %s: %w", user.Email, err)
	}
	return nil
}

func buildMessage(from string, user *models.User, fileName string, outcome Outcome) []byte {
	resultLine := fmt.Sprintf("File %q you recently uploaded to our site has succesfully finished its archiving/compression process and now, it is available to download by the community.", fileName)
	if outcome == OutcomeFailed {
		resultLine = fmt.Sprintf("Unfortunately, the file %q you recently uploaded to our site, failed the archiving/compression process. We are sorry for the inconvenience and we encourage you to upload it again.", fileName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", user.Email)
	fmt.Fprintf(&b, "Subject: Your file upload status\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", user.Name)
	b.WriteString("Thank you for sharing your files with the InstaShare community !!!\r\n\r\n")
	b.WriteString(resultLine)
	b.WriteString("\r\n\r\nWe are very grateful to you.\r\n")
	return []byte(b.String())
}

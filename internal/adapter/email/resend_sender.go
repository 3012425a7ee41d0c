package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

// ResendSender submits transactional mail through Resend.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, msg usecase.EmailMessage) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

var _ usecase.EmailSender = (*ResendSender)(nil)

package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/dmitrijs2005/taskhub/internal/logging"
)

// Mailer delivers a single plain-text email. Implementations must be safe
// for concurrent use; callers treat delivery as best effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sesSendEmail is a seam for testing SESMailer without AWS.
var sesSendEmail = func(ctx context.Context, c *sesv2.Client, in *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error) {
	return c.SendEmail(ctx, in)
}

// SESMailer sends email through Amazon SES.
type SESMailer struct {
	client *sesv2.Client
	sender string
}

// NewSESMailer builds an SES-backed mailer using the ambient AWS credential
// chain and the given region and From address.
func NewSESMailer(ctx context.Context, region, sender string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &SESMailer{client: sesv2.NewFromConfig(cfg), sender: sender}, nil
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := sesSendEmail(ctx, m.client, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

// LogMailer logs instead of sending. Used in development and whenever no
// sender address is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "email suppressed (no sender configured)", "to", to, "subject", subject)
	return nil
}

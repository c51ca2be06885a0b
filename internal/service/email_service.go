package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// EmailSender is the subset of the SES client the email service uses
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     EmailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
	logger     *zap.Logger
}

// EmailOptions configures the email service
type EmailOptions struct {
	Region     string
	FromEmail  string
	FromName   string
	AppBaseURL string
	Debug      bool
}

// NewEmailService creates a new email service. An empty sender address
// yields a disabled service that only logs.
func NewEmailService(ctx context.Context, opts EmailOptions, logger *zap.Logger) (*EmailService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FromEmail == "" {
		logger.Info("email service disabled: email.from_email not configured")
		return &EmailService{debug: opts.Debug, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled",
		zap.String("from", opts.FromEmail),
		zap.String("region", opts.Region))

	return NewEmailServiceWithSender(sesv2.NewFromConfig(cfg), opts, logger), nil
}

// NewEmailServiceWithSender creates an enabled email service around client
func NewEmailServiceWithSender(client EmailSender, opts EmailOptions, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{
		client:     client,
		fromEmail:  opts.FromEmail,
		fromName:   opts.FromName,
		appBaseURL: opts.AppBaseURL,
		enabled:    true,
		debug:      opts.Debug,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to new learners
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		s.logger.Info("skipping email send (service disabled)",
			zap.String("kind", "welcome"),
			zap.String("to", toEmail))
		return nil
	}

	subject := "Welcome to Wision!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #c0392b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #c0392b; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>欢迎, %s!</h1>
		</div>
		<div class="content">
			<p>Your Wision account is ready. A new character is waiting for you every day.</p>
			<ul>
				<li>Solve the daily challenge for 25 points</li>
				<li>Combine radicals in the creative lab to discover characters</li>
				<li>Climb the leaderboard and keep your streak going</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s" class="button">Start learning</a>
			</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`欢迎, %s!

Your Wision account is ready. A new character is waiting for you every day.

- Solve the daily challenge for 25 points
- Combine radicals in the creative lab to discover characters
- Climb the leaderboard and keep your streak going

Start learning: %s
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		s.logger.Debug("sending email",
			zap.String("from", fromAddress),
			zap.String("to", toEmail),
			zap.String("subject", subject),
			zap.Int("html_bytes", len(htmlBody)),
			zap.Int("text_bytes", len(textBody)))
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}

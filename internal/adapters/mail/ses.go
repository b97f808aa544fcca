package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/kulltaa/masterCondo/internal/ports"
)

// SESConfig carries the delivery settings for the SES transport.
// Static credentials are optional; when absent the default AWS chain applies.
type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	From      string
}

// SESSender delivers rendered emails through Amazon SES v2.
type SESSender struct {
	client *sesv2.Client
	from   string
}

func NewSESSender(ctx context.Context, cfg SESConfig) (*SESSender, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("mail sender address is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.From,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, msg ports.MailMessage) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}

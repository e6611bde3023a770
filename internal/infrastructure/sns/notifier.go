package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-verification-api/internal/application/verification"
	"github.com/go-verification-api/internal/config"
	"github.com/go-verification-api/internal/domain"
)

// SNS rejects subjects longer than this.
const maxSubjectLen = 100

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Payload is the JSON message published to the topic. A mail worker
// subscribed to the topic turns it into an email.
type Payload struct {
	To        string `json:"to"`
	From      string `json:"from,omitempty"`
	Subject   string `json:"subject"`
	PlainText string `json:"plain_text"`
	HTML      string `json:"html,omitempty"`
}

// Notifier publishes verification messages to an SNS topic.
type Notifier struct {
	client   publisher
	topicARN string
}

// NewNotifier builds an SNS client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint.
func NewNotifier(ctx context.Context, cfg *config.Config) (*Notifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Notifier{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: cfg.SNSTopicARN}, nil
}

func (n *Notifier) Send(ctx context.Context, d verification.Delivery) error {
	if d.To == "" {
		return fmt.Errorf("empty recipient: %w", domain.ErrBadRequest)
	}
	body, err := json.Marshal(Payload{
		To:        d.To,
		From:      d.From,
		Subject:   d.Subject,
		PlainText: d.PlainText,
		HTML:      d.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal sns payload: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(truncateSubject(d.Subject)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"destination":  {DataType: aws.String("String"), StringValue: aws.String(d.To)},
			"content_type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

// truncateSubject cuts s to at most maxSubjectLen bytes without splitting a rune.
func truncateSubject(s string) string {
	if len(s) <= maxSubjectLen {
		return s
	}
	end := 0
	for end < len(s) {
		_, size := utf8.DecodeRuneInString(s[end:])
		if end+size > maxSubjectLen {
			break
		}
		end += size
	}
	return s[:end]
}

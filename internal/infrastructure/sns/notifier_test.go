package sns

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-verification-api/internal/application/verification"
	"github.com/go-verification-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

const topic = "arn:aws:sns:us-east-1:000000000000:verification-mail"

func TestSend_PublishesPayload(t *testing.T) {
	var in *sns.PublishInput
	mp := &mockPublisher{}
	mp.On("Publish", mock.Anything, mock.AnythingOfType("*sns.PublishInput")).
		Run(func(args mock.Arguments) { in = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{MessageId: aws.String("m1")}, nil)

	n := &Notifier{client: mp, topicARN: topic}
	err := n.Send(context.Background(), verification.Delivery{
		To:        "a@b.com",
		From:      "noreply@ventixe.test",
		Subject:   "Ventixe Account Verification Code",
		PlainText: "code 48213",
		HTML:      "<b>48213</b>",
	})
	require.NoError(t, err)

	assert.Equal(t, topic, aws.ToString(in.TopicArn))
	assert.Equal(t, "Ventixe Account Verification Code", aws.ToString(in.Subject))
	assert.Equal(t, "a@b.com", aws.ToString(in.MessageAttributes["destination"].StringValue))

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &p))
	assert.Equal(t, "a@b.com", p.To)
	assert.Equal(t, "code 48213", p.PlainText)
	assert.Equal(t, "<b>48213</b>", p.HTML)
}

func TestSend_TruncatesLongSubject(t *testing.T) {
	var in *sns.PublishInput
	mp := &mockPublisher{}
	mp.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { in = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil)

	n := &Notifier{client: mp, topicARN: topic}
	require.NoError(t, n.Send(context.Background(), verification.Delivery{
		To:      "a@b.com",
		Subject: strings.Repeat("x", 150),
	}))
	assert.Len(t, aws.ToString(in.Subject), maxSubjectLen)
}

func TestSend_TruncatesMultiByteSubjectOnRuneBoundary(t *testing.T) {
	var in *sns.PublishInput
	mp := &mockPublisher{}
	mp.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { in = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil)

	n := &Notifier{client: mp, topicARN: topic}
	// "é" is two bytes; a byte cut at 100 lands inside the 50th rune of "x"+"é"*60.
	require.NoError(t, n.Send(context.Background(), verification.Delivery{
		To:      "a@b.com",
		Subject: "x" + strings.Repeat("é", 60),
	}))

	got := aws.ToString(in.Subject)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxSubjectLen)
	assert.Equal(t, "x"+strings.Repeat("é", 49), got)
}

func TestSend_PublishError(t *testing.T) {
	mp := &mockPublisher{}
	mp.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	n := &Notifier{client: mp, topicARN: topic}
	err := n.Send(context.Background(), verification.Delivery{To: "a@b.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	assert.Contains(t, err.Error(), "throttled")
}

func TestSend_EmptyRecipient(t *testing.T) {
	mp := &mockPublisher{}
	n := &Notifier{client: mp, topicARN: topic}

	err := n.Send(context.Background(), verification.Delivery{})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	mp.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

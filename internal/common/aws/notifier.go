// internal/common/aws/notifier.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// BatchSummary is what operators are told when a batch ends.
type BatchSummary struct {
	BatchID      string   `json:"batchId"`
	State        string   `json:"state"`
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	ArchiveKey   string   `json:"archiveKey,omitempty"`
	FailedNames  []string `json:"failedNames,omitempty"`
}

// Notifier publishes batch summaries to SNS and mails them through SES.
// Either client may be nil to disable that channel.
type Notifier struct {
	sns      SNSAPI
	topicARN string
	ses      SESAPI
	from     string
	to       []string
}

func NewNotifier(snsClient SNSAPI, topicARN string, sesClient SESAPI, from string, to []string) *Notifier {
	return &Notifier{sns: snsClient, topicARN: topicARN, ses: sesClient, from: from, to: to}
}

// NotifyBatch sends s on every configured channel and returns the first error.
func (n *Notifier) NotifyBatch(ctx context.Context, s BatchSummary) error {
	var firstErr error
	if n.sns != nil && n.topicARN != "" {
		if err := n.publish(ctx, s); err != nil {
			firstErr = err
		}
	}
	if n.ses != nil && n.from != "" && len(n.to) > 0 {
		if err := n.mail(ctx, s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *Notifier) publish(ctx context.Context, s BatchSummary) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Subject:  awssdk.String(subject(s)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"state": {DataType: awssdk.String("String"), StringValue: awssdk.String(s.State)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func (n *Notifier) mail(ctx context.Context, s BatchSummary) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(n.from),
		Destination: &sestypes.Destination{ToAddresses: n.to},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject(s)), Charset: awssdk.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(mailBody(s)), Charset: awssdk.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func subject(s BatchSummary) string {
	return fmt.Sprintf("SK batch %s: %s (%d ok, %d failed)", s.BatchID, s.State, s.SuccessCount, s.ErrorCount)
}

func mailBody(s BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s finished with state %s.\n", s.BatchID, s.State)
	fmt.Fprintf(&b, "Generated: %d\nFailed: %d\n", s.SuccessCount, s.ErrorCount)
	if s.ArchiveKey != "" {
		fmt.Fprintf(&b, "Archive: %s\n", s.ArchiveKey)
	}
	if len(s.FailedNames) > 0 {
		b.WriteString("\nNot generated:\n")
		for _, name := range s.FailedNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	return b.String()
}

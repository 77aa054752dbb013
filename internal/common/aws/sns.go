// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace-search/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"golang.org/x/time/rate"
)

// SNSAPI is the subset of the SNS client the publisher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// RankAlertPublisher sends rank-drop alerts to one SNS topic.
type RankAlertPublisher struct {
	client   SNSAPI
	topicARN string
	limiter  *rate.Limiter
}

func NewRankAlertPublisher(client SNSAPI, topicARN string) *RankAlertPublisher {
	return &RankAlertPublisher{client: client, topicARN: topicARN}
}

// NewRankAlertPublisherFromRegion loads the default AWS credential chain.
func NewRankAlertPublisherFromRegion(ctx context.Context, region, topicARN string) (*RankAlertPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewRankAlertPublisher(sns.NewFromConfig(cfg), topicARN), nil
}

// WithRateLimit caps publishing at perSecond alerts with the given burst.
// A tracking run that drops on many queries then waits instead of flooding
// the topic. perSecond <= 0 disables the cap.
func (p *RankAlertPublisher) WithRateLimit(perSecond float64, burst int) *RankAlertPublisher {
	if perSecond <= 0 {
		p.limiter = nil
		return p
	}
	if burst < 1 {
		burst = 1
	}
	p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return p
}

// PublishRankDrop publishes alert as JSON. Severity and listing type are
// message attributes so subscribers can filter on them.
func (p *RankAlertPublisher) PublishRankDrop(ctx context.Context, alert models.RankDropAlert) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rank alert for %s throttled: %w", alert.ListingID, err)
		}
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal rank alert: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Subject:  awssdk.String(fmt.Sprintf("Rank drop (%s): %s", alert.Severity, alert.Query)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"severity": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(alert.Severity),
			},
			"listingType": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(string(alert.ListingType)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish rank alert for %s: %w", alert.ListingID, err)
	}
	return nil
}

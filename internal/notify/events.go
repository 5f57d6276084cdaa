package notify

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"

	"github.com/viralab/hookbrief/internal/analyzer"
)

const (
	eventSource     = "hookbrief"
	eventDetailType = "AnalysisRunFinished"
)

// runFinishedDetail is the EventBridge event payload. The full result
// stays in S3; the event carries only the routing-relevant summary.
type runFinishedDetail struct {
	RunID        string  `json:"runId"`
	SourceRef    string  `json:"sourceRef"`
	Status       string  `json:"status"`
	Error        string  `json:"error,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	VideoType    string  `json:"videoType,omitempty"`
	HookType     string  `json:"hookType,omitempty"`
	HookStrength string  `json:"hookStrength,omitempty"`
}

// EventBridgePublisher emits run-finished events to an event bus.
type EventBridgePublisher struct {
	client  *eventbridge.Client
	busName string
}

// NewEventBridgePublisher creates a publisher for the given bus. An
// empty busName targets the account default bus.
func NewEventBridgePublisher(client *eventbridge.Client, busName string) *EventBridgePublisher {
	return &EventBridgePublisher{client: client, busName: busName}
}

var _ analyzer.Publisher = (*EventBridgePublisher)(nil)

// Publish emits one run event. Best effort: failures are logged and
// swallowed, matching the fire-and-forget contract.
func (p *EventBridgePublisher) Publish(ctx context.Context, event analyzer.RunEvent) {
	detail := runFinishedDetail{
		RunID:     event.RunID,
		SourceRef: event.SourceRef,
		Status:    event.Status,
	}
	if event.Err != nil {
		detail.Error = event.Err.Error()
	}
	if event.Result != nil {
		detail.Duration = event.Result.Metadata.Duration
		detail.VideoType = event.Result.Context.VideoType
		detail.HookType = string(event.Result.HookAnalysis.Type)
		detail.HookStrength = string(event.Result.HookAnalysis.Strength)
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		log.Error().Err(err).Str("runId", event.RunID).Msg("Failed to encode run event")
		return
	}

	entry := eventbridgetypes.PutEventsRequestEntry{
		Source:     aws.String(eventSource),
		DetailType: aws.String(eventDetailType),
		Detail:     aws.String(string(payload)),
	}
	if p.busName != "" {
		entry.EventBusName = aws.String(p.busName)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{entry},
	})
	if err != nil {
		log.Error().Err(err).Str("runId", event.RunID).Msg("EventBridge PutEvents failed")
		return
	}
	if result.FailedEntryCount > 0 {
		for i, e := range result.Entries {
			if e.ErrorCode != nil || e.ErrorMessage != nil {
				log.Error().
					Int("index", i).
					Str("errorCode", aws.ToString(e.ErrorCode)).
					Str("errorMessage", aws.ToString(e.ErrorMessage)).
					Str("runId", event.RunID).
					Msg("EventBridge PutEvents entry failed")
			}
		}
		return
	}

	log.Debug().Str("runId", event.RunID).Str("status", event.Status).Msg("Run event emitted to EventBridge")
}

// Fanout publishes to several sinks in order.
type Fanout []analyzer.Publisher

var _ analyzer.Publisher = (Fanout)(nil)

func (f Fanout) Publish(ctx context.Context, event analyzer.RunEvent) {
	for _, p := range f {
		p.Publish(ctx, event)
	}
}

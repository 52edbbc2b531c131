package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/rezakmal/insightify/internal/models"
)

// TopicLearningActivity carries every ledger append as a JSON message.
const TopicLearningActivity = "learning.activity"

// ActivityPublisher fans out activity ledger entries to interested
// subscribers (audit log, future notification consumers).
type ActivityPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewActivityPublisher(publisher message.Publisher, logger *slog.Logger) *ActivityPublisher {
	return &ActivityPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// Publish emits the activity on the learning.activity topic. Publish
// failures are logged, never surfaced: the ledger row is the source of
// truth and the stream is best-effort.
func (p *ActivityPublisher) Publish(ctx context.Context, activity *models.Activity) {
	if p == nil || p.publisher == nil {
		return
	}

	payload, err := json.Marshal(activity)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to marshal activity event",
			"error", err,
			"activity_id", activity.ID)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", string(activity.Type))
	msg.Metadata.Set("user_id", activity.UserID)

	if err := p.publisher.Publish(TopicLearningActivity, msg); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish activity event",
			"error", err,
			"activity_id", activity.ID,
			"event_type", activity.Type)
	}
}

// RunAuditSubscriber consumes the activity stream and writes each event to
// the structured log. Blocks until the subscription channel closes.
func RunAuditSubscriber(ctx context.Context, subscriber message.Subscriber, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, TopicLearningActivity)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicLearningActivity, err)
	}

	for msg := range messages {
		var activity models.Activity
		if err := json.Unmarshal(msg.Payload, &activity); err != nil {
			logger.Error("Malformed activity event", "error", err, "message_id", msg.UUID)
			msg.Ack()
			continue
		}

		logger.Info("learning activity",
			"event_type", activity.Type,
			"user_id", activity.UserID,
			"course_id", activity.CourseID,
			"module_id", activity.ModuleID,
			"occurred_at", activity.OccurredAt)
		msg.Ack()
	}

	return nil
}

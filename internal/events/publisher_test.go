package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezakmal/insightify/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishDeliversActivity(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TopicLearningActivity)
	require.NoError(t, err)

	publisher := NewActivityPublisher(pubSub, testLogger())
	courseID := "course-1"
	publisher.Publish(ctx, &models.Activity{
		ID:         "act-1",
		UserID:     "user-1",
		CourseID:   &courseID,
		Type:       models.ActivityEnroll,
		OccurredAt: time.Now(),
	})

	select {
	case msg := <-messages:
		var got models.Activity
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "act-1", got.ID)
		assert.Equal(t, models.ActivityEnroll, got.Type)
		assert.Equal(t, string(models.ActivityEnroll), msg.Metadata.Get("event_type"))
		assert.Equal(t, "user-1", msg.Metadata.Get("user_id"))
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on activity topic")
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	publisher := NewActivityPublisher(nil, testLogger())

	// Must not panic or block
	publisher.Publish(context.Background(), &models.Activity{ID: "act-1", UserID: "user-1"})
}

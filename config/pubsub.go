package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// NotificationEvent is the wire shape published to downstream reporting
// consumers after a record is committed.
type NotificationEvent struct {
	ChannelKey    string    `json:"channel_key"`
	ReferenceId   int       `json:"reference_id"`
	ReferenceType string    `json:"reference_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	Payload       []byte    `json:"payload"`
	CorrelationId string    `json:"correlation_id"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex

	declaredTopics   = map[string]bool{}
	declaredTopicsMu sync.Mutex
)

// ErrChannelNotConfigured is a programming-time configuration error, not a
// runtime transient: the channel key has no topic bound in the environment.
var ErrChannelNotConfigured = errors.New("notification channel not configured")

func init() {
	// Load env from .env
	godotenv.Load()
}

// GetPubSubClient returns the shared Pub/Sub client, initializing it lazily.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is
// provided.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	if pubsubClient != nil {
		c := pubsubClient
		pubsubClientMu.Unlock()
		return c, nil
	}
	pubsubClientMu.Unlock()

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		// Application Default Credentials (service account or
		// GOOGLE_APPLICATION_CREDENTIALS).
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	pubsubClientMu.Lock()
	if pubsubClient == nil {
		pubsubClient = c
	} else {
		// Another goroutine won the race; close ours.
		_ = c.Close()
	}
	c2 := pubsubClient
	pubsubClientMu.Unlock()

	log.Printf("pubsub client ready (project_id=%s)", projectID)
	return c2, nil
}

func getPubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run/Cloud Functions often set this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	if v := os.Getenv("GCP_PROJECT"); v != "" {
		return v
	}
	return ""
}

// ResolveChannelTopic maps a channel key to its configured topic name.
// Keys are bound via NOTIFY_CHANNEL_<KEY>=<topic>, e.g.
// NOTIFY_CHANNEL_TRANSACTIONS=pos-transactions.
func ResolveChannelTopic(channelKey string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(channelKey))
	if key == "" {
		return "", fmt.Errorf("%w: empty channel key", ErrChannelNotConfigured)
	}
	topic := strings.TrimSpace(os.Getenv("NOTIFY_CHANNEL_" + key))
	if topic == "" {
		return "", fmt.Errorf("%w: %q", ErrChannelNotConfigured, channelKey)
	}
	return topic, nil
}

// CreateTopicIfNotExists declares the destination idempotently. Safe to call
// repeatedly; results are cached per process.
func CreateTopicIfNotExists(ctx context.Context, c *pubsub.Client, topic string) (*pubsub.Topic, error) {
	if c == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	declaredTopicsMu.Lock()
	done := declaredTopics[topic]
	declaredTopicsMu.Unlock()

	t := c.Topic(topic)
	if done {
		return t, nil
	}

	ok, err := t.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		t, err = c.CreateTopic(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("create topic %q: %w", topic, err)
		}
	}

	declaredTopicsMu.Lock()
	declaredTopics[topic] = true
	declaredTopicsMu.Unlock()
	return t, nil
}

// PublishNotification serializes the event and publishes it to the channel's
// topic. It waits only for the broker to accept the message, never for any
// subscriber acknowledgment; a topic with zero subscribers drops the message
// silently. Returns the server-assigned message ID.
func PublishNotification(ctx context.Context, event NotificationEvent) (string, error) {
	topicName, err := ResolveChannelTopic(event.ChannelKey)
	if err != nil {
		return "", err
	}

	client, err := GetPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	t, err := CreateTopicIfNotExists(ctx, client, topicName)
	if err != nil {
		return "", err
	}

	msgJSON, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	result := t.Publish(ctx, &pubsub.Message{
		Data: msgJSON,
	})
	return result.Get(ctx)
}

package models

import (
	"time"

	"github.com/mkbenefits/benefits_backend/config"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// NotificationOutboxRecord parks a notification whose first, in-request
// publish attempt failed after the transaction was already committed. The
// dispatcher re-publishes it in the background; the committed transaction
// itself is never touched again.
type NotificationOutboxRecord struct {
	ID            int       `gorm:"primary_key;index:idx_notify_dispatch,priority:3" json:"id"`
	ChannelKey    string    `gorm:"size:64;not null" json:"channel_key"`
	ReferenceId   int       `gorm:"index;not null" json:"reference_id"`
	ReferenceType string    `gorm:"size:20;not null" json:"reference_type"`
	Payload       []byte    `gorm:"type:blob" json:"payload"`
	OccurredAt    time.Time `gorm:"not null" json:"occurred_at"`

	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_notify_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_notify_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`

	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToNotificationEvent(record NotificationOutboxRecord) config.NotificationEvent {
	return config.NotificationEvent{
		ChannelKey:    record.ChannelKey,
		ReferenceId:   record.ReferenceId,
		ReferenceType: record.ReferenceType,
		OccurredAt:    record.OccurredAt,
		Payload:       record.Payload,
		CorrelationId: record.CorrelationId,
	}
}

package models

import (
	"encoding/json"
	"time"
)

// Tracking statuses.
const (
	TrackingStatusPending = "PENDING"
	TrackingStatusSuccess = "SUCCESS"
	TrackingStatusFailed  = "FAILED"
)

// ValidTrackingStatus reports whether status is a known tracking status.
func ValidTrackingStatus(status string) bool {
	switch status {
	case TrackingStatusPending, TrackingStatusSuccess, TrackingStatusFailed:
		return true
	}
	return false
}

// Tracking records one external usage of a batch of questions, together with
// an optional webhook the consumer wants called back on.
type Tracking struct {
	UUID              string          `db:"uuid" json:"uuid"`
	Name              string          `db:"name" json:"name"`
	Status            string          `db:"status" json:"status"`
	WebhookURL        *string         `db:"webhook_url" json:"webhookUrl"`
	Metadata          json.RawMessage `db:"metadata" json:"metadata"`
	WebhookExecutedAt *time.Time      `db:"webhook_executed_at" json:"webhookExecutedAt"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`

	UsedQuestions []UsedQuestion `db:"-" json:"usedQuestion,omitempty"`
}

type UsedQuestion struct {
	ID           int64     `db:"id" json:"id"`
	TrackingUUID string    `db:"tracking_uuid" json:"-"`
	QuestionUUID string    `db:"question_uuid" json:"questionUuid"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	Question *Question `db:"-" json:"question,omitempty"`
}

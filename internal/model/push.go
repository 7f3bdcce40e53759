package model

import "time"

type PushSubscription struct {
	ID         int64     `json:"id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxSent      OutboxStatus = "sent"
	OutboxCancelled OutboxStatus = "cancelled"
	OutboxFailed    OutboxStatus = "failed"
)

// ScheduledNotification is one pending device alarm, addressed by Handle.
type ScheduledNotification struct {
	ID        int64        `json:"id"`
	Handle    string       `json:"handle"`
	FireAt    time.Time    `json:"fire_at"`
	Payload   string       `json:"payload"`
	Status    OutboxStatus `json:"status"`
	Attempts  int          `json:"attempts"`
	LastError string       `json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

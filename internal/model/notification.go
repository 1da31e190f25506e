package model

import "time"

type NotificationType string

const (
	NotificationCaseAdded    NotificationType = "case_added"
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationCaseUpdated  NotificationType = "case_updated"
)

type Notification struct {
	ID             string           `bson:"_id" json:"id"`
	RecipientEmail string           `bson:"recipient_email" json:"recipient_email"`
	RecipientName  string           `bson:"recipient_name" json:"recipient_name"`
	Type           NotificationType `bson:"type" json:"type"`
	Title          string           `bson:"title" json:"title"`
	Message        string           `bson:"message" json:"message"`
	CaseMRN        string           `bson:"case_mrn,omitempty" json:"case_mrn,omitempty"`
	TaskID         string           `bson:"task_id,omitempty" json:"task_id,omitempty"`
	Read           bool             `bson:"read" json:"read"`
	CreatedAt      time.Time        `bson:"created_at" json:"created_at"`
}

// NotificationEvent is published after a notification is stored.
type NotificationEvent struct {
	NotificationID string           `json:"notification_id"`
	RecipientEmail string           `json:"recipient_email"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	CaseMRN        string           `json:"case_mrn,omitempty"`
}

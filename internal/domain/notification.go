package domain

import "time"

// Notification kinds.
const (
	NotificationEvent  = "event"
	NotificationPost   = "post"
	NotificationSystem = "system"
)

// Notification is a drawer entry for one user. The read flag is the only
// client-mutable field.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"-" dynamodbav:"user_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Kind           string    `json:"type" dynamodbav:"kind"`
	Read           bool      `json:"read" dynamodbav:"read"`
	RelatedID      string    `json:"relatedId,omitempty" dynamodbav:"related_id"`
	Location       string    `json:"location,omitempty" dynamodbav:"location"`
	Date           string    `json:"date,omitempty" dynamodbav:"date"`
	Image          string    `json:"image,omitempty" dynamodbav:"image"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// NotificationList is the drawer payload: entries newest first plus the
// derived unread counter.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

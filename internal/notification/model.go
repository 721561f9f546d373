package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is what registrants receive on their Redis channel.
type Message struct {
	WorkshopID uuid.UUID `json:"workshop_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// UserChannel is the Redis pub/sub channel a client listens on for user-scoped messages.
func UserChannel(userID string) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

// WorkshopTopic is the FCM topic devices subscribe to for a workshop.
func WorkshopTopic(workshopID uuid.UUID) string {
	return "workshop-" + workshopID.String()
}

package notification

import (
    "time"
)

// Message is the envelope pushed to clients over every channel
type Message struct {
    Type      string                 `json:"type"`
    Data      map[string]interface{} `json:"data"`
    Timestamp time.Time              `json:"timestamp"`
}

// Envelope pairs a message with its recipient for cross-instance fan-out
type Envelope struct {
    UserID  int64   `json:"user_id"`
    Message Message `json:"message"`
}

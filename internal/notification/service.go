package notification

import (
    "context"
    "fmt"
    "log"
    "time"
)

// Service fans a user-facing event out to the configured channels:
// local websocket hub, redis for other instances, and email as the
// offline fallback.
//
// With a broker configured, Notify publishes and every instance's
// subscriber delivers to its locally connected users. Without one,
// delivery is local only and a missed websocket falls back to email.
type Service struct {
    hub       *Hub
    broker    *RedisBroker
    emailer   EmailSender
    directory Directory
}

func NewService(hub *Hub, broker *RedisBroker, emailer EmailSender, directory Directory) *Service {
    return &Service{
        hub:       hub,
        broker:    broker,
        emailer:   emailer,
        directory: directory,
    }
}

func (s *Service) Notify(ctx context.Context, userID int64, eventType string, payload map[string]interface{}) error {
    message := Message{
        Type:      eventType,
        Data:      payload,
        Timestamp: time.Now().UTC(),
    }

    if s.broker != nil {
        return s.broker.Publish(ctx, Envelope{UserID: userID, Message: message})
    }

    if s.hub.SendToUser(userID, message) {
        return nil
    }

    if s.emailer != nil && s.directory != nil {
        return s.sendEmailFallback(ctx, userID, message)
    }

    return nil
}

func (s *Service) sendEmailFallback(ctx context.Context, userID int64, message Message) error {
    email, err := s.directory.EmailForUser(ctx, userID)
    if err != nil {
        if err == ErrNoEmail {
            return nil
        }
        return err
    }

    subject, body, ok := renderEmail(message)
    if !ok {
        return nil
    }

    if err := s.emailer.SendEmail(ctx, email, subject, body, ""); err != nil {
        log.Printf("Failed to send notification email to user %d: %v", userID, err)
        return err
    }

    return nil
}

// renderEmail maps event types to email copy. Events without copy are
// websocket-only.
func renderEmail(message Message) (subject, body string, ok bool) {
    switch message.Type {
    case "match.created":
        name, _ := message.Data["display_name"].(string)
        if name == "" {
            name = "Someone"
        }
        subject = "You have a new match!"
        body = fmt.Sprintf("%s liked you back. Open the app to start the conversation.", name)
        return subject, body, true
    default:
        return "", "", false
    }
}

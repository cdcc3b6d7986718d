// internal/notification/redis.go
// Cross-instance fan-out over redis pub/sub. Every instance subscribes
// to the shared channel and delivers to whichever users are connected
// to its local hub.

package notification

import (
    "context"
    "encoding/json"
    "fmt"
    "log"

    "github.com/go-redis/redis/v8"
)

const notificationChannel = "notifications:events"

type RedisBroker struct {
    client *redis.Client
    hub    *Hub
}

func NewRedisBroker(client *redis.Client, hub *Hub) *RedisBroker {
    return &RedisBroker{client: client, hub: hub}
}

func (b *RedisBroker) Publish(ctx context.Context, envelope Envelope) error {
    data, err := json.Marshal(envelope)
    if err != nil {
        return fmt.Errorf("failed to marshal envelope: %w", err)
    }

    if err := b.client.Publish(ctx, notificationChannel, data).Err(); err != nil {
        return fmt.Errorf("failed to publish notification: %w", err)
    }

    return nil
}

// Subscribe consumes the shared channel until ctx is cancelled. Run in
// its own goroutine.
func (b *RedisBroker) Subscribe(ctx context.Context) {
    pubsub := b.client.Subscribe(ctx, notificationChannel)
    defer pubsub.Close()

    ch := pubsub.Channel()
    for {
        select {
        case msg, ok := <-ch:
            if !ok {
                return
            }

            var envelope Envelope
            if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
                log.Printf("Error unmarshalling notification envelope: %v", err)
                continue
            }

            b.hub.SendToUser(envelope.UserID, envelope.Message)

        case <-ctx.Done():
            return
        }
    }
}

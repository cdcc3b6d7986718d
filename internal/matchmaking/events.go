// internal/matchmaking/events.go
// Post-commit events. The state machine records what happened; delivery
// is the dispatcher's problem, so transport failures can never roll back
// a durable transition.

package matchmaking

// EventType identifies a post-commit side effect
type EventType string

const (
    EventMatchCreated     EventType = "match.created"
    EventPassAcknowledged EventType = "pass.acknowledged"
)

// Event is one pending side effect produced by a state transition
type Event struct {
    Type            EventType `json:"type"`
    ActorProfileID  int64     `json:"actor_profile_id"`
    TargetProfileID int64     `json:"target_profile_id"`
}

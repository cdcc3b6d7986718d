package matchmaking

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/amouradev/amoura-backend/internal/profile"
)

var (
    ErrInvalidCount = errors.New("count must be positive")
    ErrNotMatched   = errors.New("profiles are not matched")
)

// ConversationService opens (or returns) the conversation backing a
// match. Implemented by internal/conversation.
type ConversationService interface {
    CreateOrGetConversation(ctx context.Context, userIDA, userIDB int64) (string, error)
}

// Notifier delivers a user-facing event. Implemented by
// internal/notification. Delivery is best effort.
type Notifier interface {
    Notify(ctx context.Context, userID int64, eventType string, payload map[string]interface{}) error
}

// LikeResult is a LikeOutcome plus the conversation reference resolved
// for a mutual match.
type LikeResult struct {
    LikeOutcome
    ConversationRef string
}

type Service interface {
    GetProfileForUser(ctx context.Context, userID int64) (*profile.Profile, error)
    GetCandidates(ctx context.Context, viewerProfileID int64, count int, relationshipType string) ([]Candidate, error)
    AcquireCandidateBatch(ctx context.Context, viewerProfileID int64, count int) ([]Candidate, error)
    LikeProfile(ctx context.Context, viewerProfileID, targetProfileID int64) (*LikeResult, error)
    PassProfile(ctx context.Context, viewerProfileID, targetProfileID int64) (*PassOutcome, error)
    ListMatches(ctx context.Context, viewerProfileID int64) ([]*profile.Profile, error)
    ListLikesReceived(ctx context.Context, viewerProfileID int64, limit int) ([]*profile.Profile, error)
    Unmatch(ctx context.Context, viewerProfileID, targetProfileID int64) error
}

type service struct {
    profiles      profile.Store
    engine        *DiscoveryEngine
    states        *StateMachine
    ledger        Ledger
    conversations ConversationService
    notifier      Notifier
}

func NewService(profiles profile.Store, engine *DiscoveryEngine, states *StateMachine, ledger Ledger, conversations ConversationService, notifier Notifier) Service {
    return &service{
        profiles:      profiles,
        engine:        engine,
        states:        states,
        ledger:        ledger,
        conversations: conversations,
        notifier:      notifier,
    }
}

func (s *service) GetProfileForUser(ctx context.Context, userID int64) (*profile.Profile, error) {
    return s.profiles.GetByUserID(ctx, userID)
}

func (s *service) GetCandidates(ctx context.Context, viewerProfileID int64, count int, relationshipType string) ([]Candidate, error) {
    if count <= 0 {
        return nil, ErrInvalidCount
    }

    start := time.Now()
    candidates, err := s.engine.FindCandidates(ctx, viewerProfileID, count, relationshipType)
    if err != nil {
        return nil, err
    }
    RecordDiscoveryDuration("discover", time.Since(start))

    return candidates, nil
}

func (s *service) AcquireCandidateBatch(ctx context.Context, viewerProfileID int64, count int) ([]Candidate, error) {
    if count <= 0 {
        return nil, ErrInvalidCount
    }

    start := time.Now()
    batch, err := s.engine.AcquireCandidateBatch(ctx, viewerProfileID, count)
    if err != nil {
        return nil, err
    }
    RecordDiscoveryDuration("batch", time.Since(start))

    perTier := map[CandidateSource]int{}
    for _, c := range batch {
        perTier[c.Source]++
    }
    for source, slots := range perTier {
        RecordBoosterFill(source, slots)
    }

    return batch, nil
}

// LikeProfile runs the like transition, then resolves the match's
// conversation and dispatches notifications. Side-effect failures are
// logged and never undo the committed transition.
func (s *service) LikeProfile(ctx context.Context, viewerProfileID, targetProfileID int64) (*LikeResult, error) {
    viewer, err := s.profiles.GetByID(ctx, viewerProfileID)
    if err != nil {
        return nil, err
    }
    target, err := s.profiles.GetByID(ctx, targetProfileID)
    if err != nil {
        if errors.Is(err, profile.ErrProfileNotFound) {
            return nil, fmt.Errorf("target: %w", profile.ErrProfileNotFound)
        }
        return nil, err
    }

    outcome, err := s.states.Like(ctx, viewerProfileID, targetProfileID)
    if err != nil {
        return nil, err
    }

    switch {
    case outcome.Matched && !outcome.AlreadyProcessed:
        RecordLike("matched")
    case outcome.AlreadyProcessed:
        RecordLike("duplicate")
    default:
        RecordLike("sent")
    }

    result := &LikeResult{LikeOutcome: *outcome}

    if outcome.Matched && !outcome.AlreadyProcessed {
        // Get-or-create is idempotent, so both sides of a race resolve
        // the same conversation
        ref, convErr := s.conversations.CreateOrGetConversation(ctx, viewer.UserID, target.UserID)
        if convErr != nil {
            log.Printf("failed to open conversation for match %d/%d: %v", viewerProfileID, targetProfileID, convErr)
        } else {
            result.ConversationRef = ref
        }
    }

    if len(outcome.Events) > 0 {
        go s.dispatchEvents(outcome.Events, viewer, target, result.ConversationRef)
    }

    return result, nil
}

func (s *service) PassProfile(ctx context.Context, viewerProfileID, targetProfileID int64) (*PassOutcome, error) {
    viewer, err := s.profiles.GetByID(ctx, viewerProfileID)
    if err != nil {
        return nil, err
    }
    target, err := s.profiles.GetByID(ctx, targetProfileID)
    if err != nil {
        if errors.Is(err, profile.ErrProfileNotFound) {
            return nil, fmt.Errorf("target: %w", profile.ErrProfileNotFound)
        }
        return nil, err
    }

    outcome, err := s.states.Pass(ctx, viewerProfileID, targetProfileID)
    if err != nil {
        return nil, err
    }
    if outcome.Success {
        RecordPass()
    }

    if len(outcome.Events) > 0 {
        go s.dispatchEvents(outcome.Events, viewer, target, "")
    }

    return outcome, nil
}

func (s *service) ListMatches(ctx context.Context, viewerProfileID int64) ([]*profile.Profile, error) {
    edges, err := s.ledger.FindEdgesWhere(ctx, EdgePredicate{
        FromProfileID: &viewerProfileID,
        Actions:       []Action{ActionMatch},
    })
    if err != nil {
        return nil, err
    }

    return s.resolveProfiles(ctx, edges, func(e ActionEdge) int64 { return e.ToProfileID })
}

func (s *service) ListLikesReceived(ctx context.Context, viewerProfileID int64, limit int) ([]*profile.Profile, error) {
    edges, err := s.ledger.FindEdgesWhere(ctx, EdgePredicate{
        ToProfileID: &viewerProfileID,
        Actions:     []Action{ActionLike},
    })
    if err != nil {
        return nil, err
    }

    if limit > 0 && len(edges) > limit {
        edges = edges[:limit]
    }

    return s.resolveProfiles(ctx, edges, func(e ActionEdge) int64 { return e.FromProfileID })
}

// Unmatch removes the MATCH pair in both directions. The pair reverts to
// no relationship, so either side can resurface in discovery.
func (s *service) Unmatch(ctx context.Context, viewerProfileID, targetProfileID int64) error {
    edge, err := s.ledger.FindEdge(ctx, viewerProfileID, targetProfileID)
    if err != nil {
        return err
    }
    if edge == nil || edge.Action != ActionMatch {
        return ErrNotMatched
    }

    _, err = s.ledger.DeleteEdges(ctx, EdgePredicate{
        FromProfileID:   &viewerProfileID,
        ToProfileID:     &targetProfileID,
        Actions:         []Action{ActionMatch},
        EitherDirection: true,
    })
    return err
}

func (s *service) resolveProfiles(ctx context.Context, edges []ActionEdge, pick func(ActionEdge) int64) ([]*profile.Profile, error) {
    profiles := make([]*profile.Profile, 0, len(edges))
    for _, edge := range edges {
        p, err := s.profiles.GetByID(ctx, pick(edge))
        if err != nil {
            if errors.Is(err, profile.ErrProfileNotFound) {
                continue
            }
            return nil, err
        }
        profiles = append(profiles, p)
    }
    return profiles, nil
}

// dispatchEvents delivers post-commit notifications. Runs outside the
// request context on purpose.
func (s *service) dispatchEvents(events []Event, viewer, target *profile.Profile, conversationRef string) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    for _, event := range events {
        switch event.Type {
        case EventMatchCreated:
            s.dispatchMatchCreated(ctx, viewer, target, conversationRef)
        case EventPassAcknowledged:
            payload := map[string]interface{}{
                "passed_profile_id": target.ID,
            }
            if err := s.notifier.Notify(ctx, viewer.UserID, string(EventPassAcknowledged), payload); err != nil {
                log.Printf("failed to acknowledge pass to user %d: %v", viewer.UserID, err)
            }
        }
    }
}

// dispatchMatchCreated notifies both ends of a fresh match. Each user
// gets the other side's profile in the payload.
func (s *service) dispatchMatchCreated(ctx context.Context, viewer, target *profile.Profile, conversationRef string) {
    RecordMatch()

    payload := map[string]interface{}{
        "matched_profile_id": viewer.ID,
        "display_name":       viewer.DisplayName,
        "conversation_ref":   conversationRef,
    }
    if err := s.notifier.Notify(ctx, target.UserID, string(EventMatchCreated), payload); err != nil {
        log.Printf("failed to notify user %d of match: %v", target.UserID, err)
    }

    payload = map[string]interface{}{
        "matched_profile_id": target.ID,
        "display_name":       target.DisplayName,
        "conversation_ref":   conversationRef,
    }
    if err := s.notifier.Notify(ctx, viewer.UserID, string(EventMatchCreated), payload); err != nil {
        log.Printf("failed to notify user %d of match: %v", viewer.UserID, err)
    }
}

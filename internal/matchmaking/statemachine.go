// internal/matchmaking/statemachine.go
// Directed-pair transitions: NONE → SEEN → LIKE, with the bilateral MATCH
// state reached when both directions hold LIKE.

package matchmaking

import (
    "context"
    "errors"
)

var (
    ErrSelfAction = errors.New("cannot act on your own profile")
)

// LikeOutcome is the structured result of a like transition
type LikeOutcome struct {
    Matched          bool
    AlreadyProcessed bool
    Message          string
    Events           []Event
}

// PassOutcome is the structured result of a pass
type PassOutcome struct {
    Success bool
    Message string
    Events  []Event
}

// StateMachine owns all writes to the relationship ledger
type StateMachine struct {
    ledger Ledger
}

func NewStateMachine(ledger Ledger) *StateMachine {
    return &StateMachine{ledger: ledger}
}

// MarkSeen records that from has been shown to. Idempotent: it writes
// nothing when any edge already exists for the pair, so a LIKE or MATCH
// is never downgraded.
func (sm *StateMachine) MarkSeen(ctx context.Context, from, to int64) error {
    if from == to {
        return ErrSelfAction
    }
    _, err := sm.ledger.InsertSeenIfAbsent(ctx, from, to)
    return err
}

// Like upgrades the from→to pair to LIKE and detects a mutual match.
//
// The LIKE write commits before the reciprocal check runs. Two users
// liking each other concurrently therefore cannot both miss the other's
// LIKE: whichever commit lands second reads after both are durable. Both
// may then attempt the MATCH-pair insertion, and the unique constraint on
// (from, to, action) lets exactly one win; the loser re-reads the now
// authoritative state instead of erroring.
func (sm *StateMachine) Like(ctx context.Context, from, to int64) (*LikeOutcome, error) {
    if from == to {
        return nil, ErrSelfAction
    }

    outcome := &LikeOutcome{}

    err := sm.ledger.WithTx(ctx, func(tx Ledger) error {
        edge, err := tx.FindEdge(ctx, from, to)
        if err != nil {
            return err
        }

        if edge != nil && edge.Action == ActionMatch {
            outcome.Matched = true
            outcome.AlreadyProcessed = true
            outcome.Message = "already matched"
            return nil
        }
        if edge != nil && edge.Action == ActionLike {
            outcome.AlreadyProcessed = true
            outcome.Message = "already liked"
            return nil
        }

        // A LIKE row must not survive alongside the edge we are about to
        // write; clear leftovers from interrupted earlier transitions.
        likeOnly := EdgePredicate{
            FromProfileID: &from,
            ToProfileID:   &to,
            Actions:       []Action{ActionLike},
        }
        if _, err := tx.DeleteEdges(ctx, likeOnly); err != nil {
            return err
        }

        if edge != nil {
            // SEEN → LIKE upgrade replaces the weaker edge
            seenOnly := EdgePredicate{
                FromProfileID: &from,
                ToProfileID:   &to,
                Actions:       []Action{ActionSeen},
            }
            if _, err := tx.DeleteEdges(ctx, seenOnly); err != nil {
                return err
            }
        }

        return tx.InsertEdges(ctx, []ActionEdge{
            {FromProfileID: from, ToProfileID: to, Action: ActionLike},
        })
    })
    if err != nil {
        if IsUniqueViolation(err) {
            // A concurrent like in the same direction got there first
            outcome.AlreadyProcessed = true
            outcome.Message = "already liked"
            return outcome, nil
        }
        return nil, err
    }
    if outcome.AlreadyProcessed {
        return outcome, nil
    }

    reciprocal, err := sm.ledger.FindEdge(ctx, to, from)
    if err != nil {
        return nil, err
    }
    if reciprocal == nil || reciprocal.Action != ActionLike {
        outcome.Message = "like sent"
        return outcome, nil
    }

    won := true
    matchErr := sm.ledger.WithTx(ctx, func(tx Ledger) error {
        if err := tx.InsertEdges(ctx, []ActionEdge{
            {FromProfileID: from, ToProfileID: to, Action: ActionMatch},
            {FromProfileID: to, ToProfileID: from, Action: ActionMatch},
        }); err != nil {
            return err
        }

        // The transient LIKEs are superseded by the MATCH pair
        transientLikes := EdgePredicate{
            FromProfileID:   &from,
            ToProfileID:     &to,
            Actions:         []Action{ActionLike, ActionSeen},
            EitherDirection: true,
        }
        _, err := tx.DeleteEdges(ctx, transientLikes)
        return err
    })
    if matchErr != nil {
        if !IsUniqueViolation(matchErr) {
            return nil, matchErr
        }

        // Lost the race: the reciprocal like inserted the MATCH pair.
        // Re-read to confirm before reporting the match.
        current, err := sm.ledger.FindEdge(ctx, from, to)
        if err != nil {
            return nil, err
        }
        if current == nil || current.Action != ActionMatch {
            return nil, matchErr
        }
        won = false
    }

    outcome.Matched = true
    outcome.Message = "matched"
    if won {
        // The winner alone carries the side effects, so the pair is
        // notified once
        outcome.Events = append(outcome.Events, Event{
            Type:            EventMatchCreated,
            ActorProfileID:  from,
            TargetProfileID: to,
        })
    }
    return outcome, nil
}

// Pass records a pass as a SEEN edge. Once any edge exists for the pair
// the pass is a no-op reported as already processed.
func (sm *StateMachine) Pass(ctx context.Context, from, to int64) (*PassOutcome, error) {
    if from == to {
        return nil, ErrSelfAction
    }

    inserted, err := sm.ledger.InsertSeenIfAbsent(ctx, from, to)
    if err != nil {
        return nil, err
    }

    if !inserted {
        return &PassOutcome{Success: false, Message: "already processed"}, nil
    }

    return &PassOutcome{
        Success: true,
        Events: []Event{{
            Type:            EventPassAcknowledged,
            ActorProfileID:  from,
            TargetProfileID: to,
        }},
    }, nil
}

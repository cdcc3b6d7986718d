package matchmaking

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMarkSeen_Idempotent(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    require.NoError(t, sm.MarkSeen(ctx, 1, 2))
    require.NoError(t, sm.MarkSeen(ctx, 1, 2))

    seen := EdgePredicate{FromProfileID: intP(1), ToProfileID: intP(2)}
    assert.Equal(t, 1, ledger.countEdges(seen))
}

func TestMarkSeen_NeverDowngradesLike(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    _, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    require.NoError(t, sm.MarkSeen(ctx, 1, 2))

    edge, err := ledger.FindEdge(ctx, 1, 2)
    require.NoError(t, err)
    require.NotNil(t, edge)
    assert.Equal(t, ActionLike, edge.Action)
}

func TestLike_Self(t *testing.T) {
    sm := NewStateMachine(newMemLedger())

    _, err := sm.Like(context.Background(), 7, 7)

    assert.ErrorIs(t, err, ErrSelfAction)
}

func TestLike_FirstLike(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    outcome, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    assert.False(t, outcome.Matched)
    assert.False(t, outcome.AlreadyProcessed)
    assert.Equal(t, "like sent", outcome.Message)
    assert.Empty(t, outcome.Events)

    edge, err := ledger.FindEdge(ctx, 1, 2)
    require.NoError(t, err)
    require.NotNil(t, edge)
    assert.Equal(t, ActionLike, edge.Action)
}

func TestLike_UpgradesSeen(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    require.NoError(t, sm.MarkSeen(ctx, 1, 2))

    _, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    // The SEEN edge is replaced, not kept alongside
    pair := EdgePredicate{FromProfileID: intP(1), ToProfileID: intP(2)}
    assert.Equal(t, 1, ledger.countEdges(pair))

    edge, _ := ledger.FindEdge(ctx, 1, 2)
    assert.Equal(t, ActionLike, edge.Action)
}

func TestLike_RepeatReportsAlreadyLiked(t *testing.T) {
    sm := NewStateMachine(newMemLedger())
    ctx := context.Background()

    _, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    outcome, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    assert.False(t, outcome.Matched)
    assert.True(t, outcome.AlreadyProcessed)
    assert.Equal(t, "already liked", outcome.Message)
}

func TestLike_MutualCreatesMatch(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    first, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)
    assert.False(t, first.Matched)

    second, err := sm.Like(ctx, 2, 1)
    require.NoError(t, err)

    assert.True(t, second.Matched)
    assert.Equal(t, "matched", second.Message)
    require.Len(t, second.Events, 1)
    assert.Equal(t, EventMatchCreated, second.Events[0].Type)
    assert.Equal(t, int64(2), second.Events[0].ActorProfileID)
    assert.Equal(t, int64(1), second.Events[0].TargetProfileID)

    // Exactly one MATCH edge per direction and nothing else for the pair
    pair := EdgePredicate{FromProfileID: intP(1), ToProfileID: intP(2), EitherDirection: true}
    assert.Equal(t, 2, ledger.countEdges(pair))

    matches := EdgePredicate{FromProfileID: intP(1), ToProfileID: intP(2), Actions: []Action{ActionMatch}, EitherDirection: true}
    assert.Equal(t, 2, ledger.countEdges(matches))
}

func TestLike_AfterMatchReportsAlreadyMatched(t *testing.T) {
    sm := NewStateMachine(newMemLedger())
    ctx := context.Background()

    _, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)
    _, err = sm.Like(ctx, 2, 1)
    require.NoError(t, err)

    outcome, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    assert.True(t, outcome.Matched)
    assert.True(t, outcome.AlreadyProcessed)
    assert.Equal(t, "already matched", outcome.Message)
    assert.Empty(t, outcome.Events)
}

// racingLedger makes the first MATCH insertion fail after the other
// direction's insertion has landed, as happens when both sides like
// each other at the same time and this side loses.
type racingLedger struct {
    *memLedger
    fired bool
}

func (r *racingLedger) InsertEdges(ctx context.Context, edges []ActionEdge) error {
    isMatchPair := false
    for _, e := range edges {
        if e.Action == ActionMatch {
            isMatchPair = true
        }
    }

    if isMatchPair && !r.fired {
        r.fired = true
        // The winner inserts the pair and clears the transient likes
        if err := r.memLedger.InsertEdges(ctx, edges); err != nil {
            return err
        }
        from, to := edges[0].FromProfileID, edges[0].ToProfileID
        r.memLedger.DeleteEdges(ctx, EdgePredicate{
            FromProfileID:   &from,
            ToProfileID:     &to,
            Actions:         []Action{ActionLike, ActionSeen},
            EitherDirection: true,
        })
        return duplicateKeyError()
    }
    return r.memLedger.InsertEdges(ctx, edges)
}

func (r *racingLedger) WithTx(ctx context.Context, fn func(Ledger) error) error {
    return fn(r)
}

func TestLike_LostMatchRaceStillReportsMatch(t *testing.T) {
    inner := newMemLedger()
    ledger := &racingLedger{memLedger: inner}
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    _, err := sm.Like(ctx, 1, 2)
    require.NoError(t, err)

    outcome, err := sm.Like(ctx, 2, 1)
    require.NoError(t, err)

    assert.True(t, outcome.Matched)
    // The other direction won the race and owns the side effects
    assert.Empty(t, outcome.Events)

    matches := EdgePredicate{FromProfileID: intP(1), ToProfileID: intP(2), Actions: []Action{ActionMatch}, EitherDirection: true}
    assert.Equal(t, 2, inner.countEdges(matches))
}

func TestPass_RecordsSeen(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    outcome, err := sm.Pass(ctx, 1, 2)
    require.NoError(t, err)

    assert.True(t, outcome.Success)
    require.Len(t, outcome.Events, 1)
    assert.Equal(t, EventPassAcknowledged, outcome.Events[0].Type)

    edge, _ := ledger.FindEdge(ctx, 1, 2)
    require.NotNil(t, edge)
    assert.Equal(t, ActionSeen, edge.Action)
}

func TestPass_RepeatReportsAlreadyProcessed(t *testing.T) {
    sm := NewStateMachine(newMemLedger())
    ctx := context.Background()

    _, err := sm.Pass(ctx, 1, 2)
    require.NoError(t, err)

    outcome, err := sm.Pass(ctx, 1, 2)
    require.NoError(t, err)

    assert.False(t, outcome.Success)
    assert.Equal(t, "already processed", outcome.Message)
    assert.Empty(t, outcome.Events)
}

func TestPass_DoesNotAffectReverseDirection(t *testing.T) {
    ledger := newMemLedger()
    sm := NewStateMachine(ledger)
    ctx := context.Background()

    _, err := sm.Like(ctx, 2, 1)
    require.NoError(t, err)

    _, err = sm.Pass(ctx, 1, 2)
    require.NoError(t, err)

    edge, _ := ledger.FindEdge(ctx, 2, 1)
    require.NotNil(t, edge)
    assert.Equal(t, ActionLike, edge.Action)
}

func intP(n int64) *int64 { return &n }

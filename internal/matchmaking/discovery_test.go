package matchmaking

import (
    "context"
    "fmt"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/amouradev/amoura-backend/internal/profile"
)

type testWorld struct {
    ledger *memLedger
    store  *memStore
    states *StateMachine
    engine *DiscoveryEngine
}

func newTestWorld() *testWorld {
    ledger := newMemLedger()
    store := newMemStore(ledger)
    states := NewStateMachine(ledger)

    return &testWorld{
        ledger: ledger,
        store:  store,
        states: states,
        engine: NewDiscoveryEngine(store, states, 100, 10, 50),
    }
}

func (w *testWorld) addProfile(id int64, gender, orientation string, age int) *profile.Profile {
    return w.store.add(&profile.Profile{
        ID:          id,
        DisplayName: fmt.Sprintf("profile-%d", id),
        Gender:      gender,
        Orientation: orientation,
        Age:         age,
    })
}

func candidateProfileIDs(candidates []Candidate) []int64 {
    ids := make([]int64, 0, len(candidates))
    for _, c := range candidates {
        ids = append(ids, c.Profile.ID)
    }
    return ids
}

func TestFindCandidates_OrientationReciprocity(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    w.addProfile(1, "male", "straight", 30)
    w.addProfile(2, "female", "straight", 28) // eligible
    w.addProfile(3, "female", "gay", 27)      // eligible, gender is what counts
    w.addProfile(4, "male", "straight", 29)   // wrong gender

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{2, 3}, candidateProfileIDs(candidates))
}

func TestFindCandidates_UnsupportedOrientationMatchesNothing(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    w.addProfile(1, "male", "pansexual", 30)
    w.addProfile(2, "female", "straight", 28)
    w.addProfile(3, "male", "gay", 29)

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.Empty(t, candidates)
}

func TestFindCandidates_UnknownViewer(t *testing.T) {
    w := newTestWorld()

    _, err := w.engine.FindCandidates(context.Background(), 42, 10, "")

    assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestFindCandidates_AgeRange(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.MinAge = intPtr(25)
    viewer.MaxAge = intPtr(35)

    w.addProfile(2, "female", "straight", 24) // too young
    w.addProfile(3, "female", "straight", 25) // boundary, eligible
    w.addProfile(4, "female", "straight", 35) // boundary, eligible
    w.addProfile(5, "female", "straight", 36) // too old

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{3, 4}, candidateProfileIDs(candidates))
}

func TestFindCandidates_ExcludesActedOnProfiles(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    w.addProfile(1, "male", "straight", 30)
    w.addProfile(2, "female", "straight", 28)
    w.addProfile(3, "female", "straight", 29)
    w.addProfile(4, "female", "straight", 27)
    w.addProfile(5, "female", "straight", 26)

    require.NoError(t, w.states.MarkSeen(ctx, 1, 2))
    _, err := w.states.Like(ctx, 1, 3)
    require.NoError(t, err)
    _, err = w.states.Like(ctx, 1, 4)
    require.NoError(t, err)
    _, err = w.states.Like(ctx, 4, 1) // now matched with 4
    require.NoError(t, err)

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{5}, candidateProfileIDs(candidates))
}

func TestFindCandidates_FewEligibleAmongMany(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.MinAge = intPtr(25)
    viewer.MaxAge = intPtr(35)

    // Exactly three eligible
    w.addProfile(2, "female", "straight", 26)
    w.addProfile(3, "female", "straight", 30)
    w.addProfile(4, "female", "straight", 34)

    // Twenty ineligible
    for i := int64(5); i < 15; i++ {
        w.addProfile(i, "male", "straight", 30) // wrong gender
    }
    for i := int64(15); i < 20; i++ {
        w.addProfile(i, "female", "straight", 40) // too old
    }
    for i := int64(20); i < 25; i++ {
        w.addProfile(i, "female", "straight", 20) // too young
    }

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{2, 3, 4}, candidateProfileIDs(candidates))

    // Every returned candidate got a seen edge
    for _, id := range []int64{2, 3, 4} {
        edge, err := w.ledger.FindEdge(ctx, 1, id)
        require.NoError(t, err)
        require.NotNil(t, edge, "profile %d should be marked seen", id)
        assert.Equal(t, ActionSeen, edge.Action)
    }
}

func TestFindCandidates_MarksResultsSeenSoTheyDoNotRepeat(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    w.addProfile(1, "male", "straight", 30)
    w.addProfile(2, "female", "straight", 28)

    first, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)
    require.Len(t, first, 1)

    second, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)
    assert.Empty(t, second)
}

func TestFindCandidates_RelationshipTypeOverride(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.RelationshipType = strPtr("casual")

    serious := w.addProfile(2, "female", "straight", 28)
    serious.RelationshipType = strPtr("serious")
    casual := w.addProfile(3, "female", "straight", 29)
    casual.RelationshipType = strPtr("casual")

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "serious")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{2}, candidateProfileIDs(candidates))
}

func TestFindCandidates_AnyRelationshipTypeMeansUnfiltered(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.RelationshipType = strPtr("any")

    serious := w.addProfile(2, "female", "straight", 28)
    serious.RelationshipType = strPtr("serious")
    w.addProfile(3, "female", "straight", 29) // no preference stored

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{2, 3}, candidateProfileIDs(candidates))
}

func TestFindCandidates_RarityTagged(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.City = strPtr("Paris")

    twin := w.addProfile(2, "female", "straight", 28)
    twin.City = strPtr("Paris")

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)
    require.Len(t, candidates, 1)

    // Same city (2) + same orientation (2)
    assert.Equal(t, RarityRare, candidates[0].Rarity)
}

func TestAcquireCandidateBatch_Cascade(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.RelationshipType = strPtr("serious")

    // Two strict-tier candidates share the relationship preference
    for i := int64(2); i <= 3; i++ {
        p := w.addProfile(i, "female", "straight", 28)
        p.RelationshipType = strPtr("serious")
    }

    // Five broad-tier candidates differ on relationship type only
    for i := int64(4); i <= 8; i++ {
        p := w.addProfile(i, "female", "straight", 28)
        p.RelationshipType = strPtr("casual")
    }

    // Three already seen, reachable only by the panic tier
    for i := int64(9); i <= 11; i++ {
        w.addProfile(i, "female", "straight", 28)
        require.NoError(t, w.states.MarkSeen(ctx, 1, i))
    }

    batch, err := w.engine.AcquireCandidateBatch(ctx, 1, 10)
    require.NoError(t, err)
    require.Len(t, batch, 10)

    bySource := map[CandidateSource][]int64{}
    for _, c := range batch {
        bySource[c.Source] = append(bySource[c.Source], c.Profile.ID)
    }

    assert.ElementsMatch(t, []int64{2, 3}, bySource[SourceStrict])
    assert.ElementsMatch(t, []int64{4, 5, 6, 7, 8}, bySource[SourceBroad])
    assert.ElementsMatch(t, []int64{9, 10, 11}, bySource[SourcePanic])

    // No duplicates across tiers and exactly one seen edge each
    seenIDs := map[int64]bool{}
    for _, c := range batch {
        assert.False(t, seenIDs[c.Profile.ID], "profile %d returned twice", c.Profile.ID)
        seenIDs[c.Profile.ID] = true

        pair := EdgePredicate{FromProfileID: intP(1), ToProfileID: intP(c.Profile.ID)}
        assert.Equal(t, 1, w.ledger.countEdges(pair))
    }
}

func TestAcquireCandidateBatch_StopsAtRequestedCount(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.RelationshipType = strPtr("serious")

    for i := int64(2); i <= 20; i++ {
        p := w.addProfile(i, "female", "straight", 28)
        p.RelationshipType = strPtr("serious")
    }

    batch, err := w.engine.AcquireCandidateBatch(ctx, 1, 5)
    require.NoError(t, err)

    assert.Len(t, batch, 5)
    for _, c := range batch {
        assert.Equal(t, SourceStrict, c.Source)
    }
}

func TestAcquireCandidateBatch_ExhaustedPoolReturnsShort(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    w.addProfile(1, "male", "straight", 30)
    w.addProfile(2, "female", "straight", 28)

    batch, err := w.engine.AcquireCandidateBatch(ctx, 1, 10)
    require.NoError(t, err)

    assert.Len(t, batch, 1)
}

func TestFindCandidates_GeoBoundAppliesWhenViewerLocated(t *testing.T) {
    w := newTestWorld()
    ctx := context.Background()

    viewer := w.addProfile(1, "male", "straight", 30)
    viewer.City = strPtr("Paris")
    viewer.Latitude = floatPtr(48.8566)
    viewer.Longitude = floatPtr(2.3522)
    viewer.MaxDistanceKM = floatPtr(50)

    near := w.addProfile(2, "female", "straight", 28) // Versailles, ~17km
    near.Latitude = floatPtr(48.8049)
    near.Longitude = floatPtr(2.1204)

    far := w.addProfile(3, "female", "straight", 29) // Lyon, ~390km
    far.Latitude = floatPtr(45.7640)
    far.Longitude = floatPtr(4.8357)

    w.addProfile(4, "female", "straight", 27) // no coordinates

    candidates, err := w.engine.FindCandidates(ctx, 1, 10, "")
    require.NoError(t, err)

    assert.ElementsMatch(t, []int64{2}, candidateProfileIDs(candidates))
}

func floatPtr(f float64) *float64 { return &f }

// internal/matchmaking/discovery.go
// Candidate discovery: compatibility predicate construction, rarity
// tagging, and the strict → broad → panic acquisition cascade.

package matchmaking

import (
    "context"
    "log"

    "github.com/amouradev/amoura-backend/internal/profile"
)

// boosterPackSize is the fixed pool ceiling the cascade fills toward.
// A booster pack has 10 slots regardless of what the caller asked for.
const boosterPackSize = 10

// defaultDiscoveryLimit caps how many candidates one discovery call may
// return.
const defaultDiscoveryLimit = 50

// DiscoveryEngine builds filtered, bounded candidate sets
type DiscoveryEngine struct {
    profiles             profile.Store
    states               *StateMachine
    defaultMaxDistanceKM float64
    packSize             int
    discoveryLimit       int
}

// NewDiscoveryEngine creates a discovery engine. Non-positive sizing
// parameters fall back to the defaults.
func NewDiscoveryEngine(profiles profile.Store, states *StateMachine, defaultMaxDistanceKM float64, packSize, discoveryLimit int) *DiscoveryEngine {
    if defaultMaxDistanceKM <= 0 {
        defaultMaxDistanceKM = 100
    }
    if packSize <= 0 {
        packSize = boosterPackSize
    }
    if discoveryLimit <= 0 {
        discoveryLimit = defaultDiscoveryLimit
    }
    return &DiscoveryEngine{
        profiles:             profiles,
        states:               states,
        defaultMaxDistanceKM: defaultMaxDistanceKM,
        packSize:             packSize,
        discoveryLimit:       discoveryLimit,
    }
}

type discoverOptions struct {
    relationshipTypeOverride string
    includeRelationshipType  bool
    excludeIDs               []int64
    includeSeen              bool
}

// FindCandidates returns up to maxResults compatible candidates for the
// viewer, rarity-tagged and recorded as seen. An empty result is not an
// error. relationshipTypeOverride narrows this call only; pass "" or
// "any" to use the viewer's stored preference.
func (e *DiscoveryEngine) FindCandidates(ctx context.Context, viewerProfileID int64, maxResults int, relationshipTypeOverride string) ([]Candidate, error) {
    viewer, err := e.profiles.GetByID(ctx, viewerProfileID)
    if err != nil {
        return nil, err
    }

    if maxResults > e.discoveryLimit {
        maxResults = e.discoveryLimit
    }

    candidates, err := e.discover(ctx, viewer, maxResults, discoverOptions{
        relationshipTypeOverride: relationshipTypeOverride,
        includeRelationshipType:  true,
    })
    if err != nil {
        return nil, err
    }

    e.markSeen(ctx, viewer.ID, candidates)
    return candidates, nil
}

// FindBroadCandidates relaxes the relationship-type filter and takes an
// explicit exclusion set. With excludeSeen=false previously-seen
// candidates become eligible again; the cascade uses that as its last
// resort. Callers are responsible for recording seen edges.
func (e *DiscoveryEngine) FindBroadCandidates(ctx context.Context, viewerProfileID int64, excludeIDs []int64, maxResults int, excludeSeen bool) ([]Candidate, error) {
    viewer, err := e.profiles.GetByID(ctx, viewerProfileID)
    if err != nil {
        return nil, err
    }

    return e.discover(ctx, viewer, maxResults, discoverOptions{
        excludeIDs:  excludeIDs,
        includeSeen: !excludeSeen,
    })
}

// AcquireCandidateBatch fills a booster pack: the strict preference
// filter first, then the broad filter up to the pack ceiling, then the
// panic tier that re-admits seen profiles so the pack is filled whenever
// any candidate exists at all. Provenance is kept per candidate.
func (e *DiscoveryEngine) AcquireCandidateBatch(ctx context.Context, viewerProfileID int64, count int) ([]Candidate, error) {
    viewer, err := e.profiles.GetByID(ctx, viewerProfileID)
    if err != nil {
        return nil, err
    }

    batch, err := e.discover(ctx, viewer, count, discoverOptions{
        includeRelationshipType: true,
    })
    if err != nil {
        return nil, err
    }
    for i := range batch {
        batch[i].Source = SourceStrict
    }

    if len(batch) < count {
        if target := e.packSize - len(batch); target > 0 {
            broad, err := e.discover(ctx, viewer, target, discoverOptions{
                excludeIDs: candidateIDs(batch),
            })
            if err != nil {
                return nil, err
            }
            for i := range broad {
                broad[i].Source = SourceBroad
            }
            batch = append(batch, broad...)
        }
    }

    if len(batch) < count {
        panicTier, err := e.discover(ctx, viewer, count-len(batch), discoverOptions{
            excludeIDs:  candidateIDs(batch),
            includeSeen: true,
        })
        if err != nil {
            return nil, err
        }
        for i := range panicTier {
            panicTier[i].Source = SourcePanic
        }
        batch = append(batch, panicTier...)
    }

    e.markSeen(ctx, viewer.ID, batch)
    return batch, nil
}

// discover translates the viewer's preferences into a candidate query,
// executes it, and tags results with their rarity tier.
func (e *DiscoveryEngine) discover(ctx context.Context, viewer *profile.Profile, limit int, opts discoverOptions) ([]Candidate, error) {
    if limit <= 0 {
        return []Candidate{}, nil
    }

    filters := []profile.Filter{
        profile.ExcludingProfiles(viewer.ID),
        profile.ExcludingProfiles(opts.excludeIDs...),
        profile.WithAgeRange(viewer.MinAge, viewer.MaxAge),
    }

    if gender, ok := RequiredCandidateGender(viewer.Orientation, viewer.Gender); ok {
        filters = append(filters, profile.WithGender(gender))
    } else {
        // Unsupported orientation: the compatible set is empty by policy
        filters = append(filters, profile.MatchingNothing())
    }

    if opts.includeRelationshipType {
        relType := viewer.PreferredRelationshipType()
        if override := opts.relationshipTypeOverride; override != "" && override != profile.RelationshipTypeAny {
            relType = override
        }
        if relType != profile.RelationshipTypeAny {
            filters = append(filters, profile.WithRelationshipType(relType))
        }
    }

    if viewer.HasCoordinate() && viewer.City != nil && *viewer.City != "" {
        maxKM := e.defaultMaxDistanceKM
        if viewer.MaxDistanceKM != nil && *viewer.MaxDistanceKM > 0 {
            maxKM = *viewer.MaxDistanceKM
        }
        filters = append(filters, profile.WithinDistance(*viewer.Latitude, *viewer.Longitude, maxKM))
    }

    // Matched and liked profiles never come back; seen ones only in
    // panic mode
    excluded := []string{string(ActionMatch), string(ActionLike)}
    if !opts.includeSeen {
        excluded = append(excluded, string(ActionSeen))
    }
    filters = append(filters, profile.ExcludingActioned(viewer.ID, excluded...))

    found, err := e.profiles.QueryCandidates(ctx, profile.NewCandidateQuery(filters...), limit)
    if err != nil {
        return nil, err
    }

    candidates := make([]Candidate, 0, len(found))
    for _, c := range found {
        points, rarity := Score(viewer, c)
        RecordRarity(rarity)
        RecordCompatibilityPoints(points)
        candidates = append(candidates, Candidate{Profile: c, Rarity: rarity})
    }

    return candidates, nil
}

// markSeen records seen edges for every candidate in the batch. The
// mark-seen path is idempotent, so candidates surfaced by more than one
// tier still get a single edge. Failures are logged; a candidate list we
// already built is worth returning even when an edge write fails.
func (e *DiscoveryEngine) markSeen(ctx context.Context, viewerID int64, candidates []Candidate) {
    for _, c := range candidates {
        if err := e.states.MarkSeen(ctx, viewerID, c.Profile.ID); err != nil {
            log.Printf("failed to mark profile %d seen by %d: %v", c.Profile.ID, viewerID, err)
        }
    }
}

func candidateIDs(candidates []Candidate) []int64 {
    ids := make([]int64, 0, len(candidates))
    for _, c := range candidates {
        ids = append(ids, c.Profile.ID)
    }
    return ids
}

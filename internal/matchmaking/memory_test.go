package matchmaking

import (
    "context"
    "errors"
    "math"
    "sort"
    "sync"
    "time"

    "github.com/lib/pq"

    "github.com/amouradev/amoura-backend/internal/profile"
)

// memLedger is an in-memory Ledger with the same uniqueness and
// strongest-edge semantics as the PostgreSQL implementation.
type memLedger struct {
    mu     sync.Mutex
    edges  []ActionEdge
    nextID int64
}

func newMemLedger() *memLedger {
    return &memLedger{nextID: 1}
}

func duplicateKeyError() error {
    return &pq.Error{Code: pq.ErrorCode("23505"), Message: "duplicate key value violates unique constraint"}
}

func (l *memLedger) InsertEdges(ctx context.Context, edges []ActionEdge) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    return l.insertLocked(edges)
}

func (l *memLedger) insertLocked(edges []ActionEdge) error {
    for _, e := range edges {
        for _, existing := range l.edges {
            if existing.FromProfileID == e.FromProfileID &&
                existing.ToProfileID == e.ToProfileID &&
                existing.Action == e.Action {
                return duplicateKeyError()
            }
        }
    }
    for _, e := range edges {
        e.ID = l.nextID
        l.nextID++
        e.CreatedAt = time.Now()
        l.edges = append(l.edges, e)
    }
    return nil
}

func (l *memLedger) InsertSeenIfAbsent(ctx context.Context, from, to int64) (bool, error) {
    l.mu.Lock()
    defer l.mu.Unlock()

    for _, e := range l.edges {
        if e.FromProfileID == from && e.ToProfileID == to {
            return false, nil
        }
    }
    if err := l.insertLocked([]ActionEdge{{FromProfileID: from, ToProfileID: to, Action: ActionSeen}}); err != nil {
        return false, err
    }
    return true, nil
}

func (l *memLedger) FindEdge(ctx context.Context, from, to int64) (*ActionEdge, error) {
    l.mu.Lock()
    defer l.mu.Unlock()

    var strongest *ActionEdge
    for i := range l.edges {
        e := l.edges[i]
        if e.FromProfileID != from || e.ToProfileID != to {
            continue
        }
        if strongest == nil || e.Action.Rank() > strongest.Action.Rank() {
            copied := e
            strongest = &copied
        }
    }
    return strongest, nil
}

func (l *memLedger) FindEdgesWhere(ctx context.Context, pred EdgePredicate) ([]ActionEdge, error) {
    l.mu.Lock()
    defer l.mu.Unlock()

    var out []ActionEdge
    for _, e := range l.edges {
        if matchesPredicate(e, pred) {
            out = append(out, e)
        }
    }
    return out, nil
}

func (l *memLedger) DeleteEdges(ctx context.Context, pred EdgePredicate) (int64, error) {
    if pred.empty() {
        return 0, errors.New("refusing to delete with empty predicate")
    }

    l.mu.Lock()
    defer l.mu.Unlock()

    var kept []ActionEdge
    var deleted int64
    for _, e := range l.edges {
        if matchesPredicate(e, pred) {
            deleted++
            continue
        }
        kept = append(kept, e)
    }
    l.edges = kept
    return deleted, nil
}

func (l *memLedger) WithTx(ctx context.Context, fn func(Ledger) error) error {
    return fn(l)
}

func matchesPredicate(e ActionEdge, pred EdgePredicate) bool {
    if pred.EitherDirection && pred.FromProfileID != nil && pred.ToProfileID != nil {
        a, b := *pred.FromProfileID, *pred.ToProfileID
        forward := e.FromProfileID == a && e.ToProfileID == b
        backward := e.FromProfileID == b && e.ToProfileID == a
        if !forward && !backward {
            return false
        }
    } else {
        if pred.FromProfileID != nil && e.FromProfileID != *pred.FromProfileID {
            return false
        }
        if pred.ToProfileID != nil && e.ToProfileID != *pred.ToProfileID {
            return false
        }
    }

    if len(pred.Actions) > 0 {
        found := false
        for _, a := range pred.Actions {
            if e.Action == a {
                found = true
            }
        }
        if !found {
            return false
        }
    }
    return true
}

// countEdges returns how many stored edges match the predicate
func (l *memLedger) countEdges(pred EdgePredicate) int {
    edges, _ := l.FindEdgesWhere(context.Background(), pred)
    return len(edges)
}

// memStore is an in-memory profile.Store that applies candidate queries
// the way the SQL translation does.
type memStore struct {
    mu       sync.Mutex
    profiles map[int64]*profile.Profile
    ledger   *memLedger
}

func newMemStore(ledger *memLedger) *memStore {
    return &memStore{
        profiles: make(map[int64]*profile.Profile),
        ledger:   ledger,
    }
}

func (s *memStore) add(p *profile.Profile) *profile.Profile {
    s.mu.Lock()
    defer s.mu.Unlock()
    if p.UserID == 0 {
        p.UserID = p.ID + 1000
    }
    s.profiles[p.ID] = p
    return p
}

func (s *memStore) GetByID(ctx context.Context, profileID int64) (*profile.Profile, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    p, ok := s.profiles[profileID]
    if !ok {
        return nil, profile.ErrProfileNotFound
    }
    return p, nil
}

func (s *memStore) GetByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    for _, p := range s.profiles {
        if p.UserID == userID {
            return p, nil
        }
    }
    return nil, profile.ErrProfileNotFound
}

func (s *memStore) UpdatePreferences(ctx context.Context, profileID int64, upd profile.PreferencesUpdate) error {
    s.mu.Lock()
    defer s.mu.Unlock()

    p, ok := s.profiles[profileID]
    if !ok {
        return profile.ErrProfileNotFound
    }
    if upd.MinAge != nil {
        p.MinAge = upd.MinAge
    }
    if upd.MaxAge != nil {
        p.MaxAge = upd.MaxAge
    }
    if upd.MaxDistanceKM != nil {
        p.MaxDistanceKM = upd.MaxDistanceKM
    }
    if upd.RelationshipType != nil {
        p.RelationshipType = upd.RelationshipType
    }
    return nil
}

func (s *memStore) QueryCandidates(ctx context.Context, q profile.CandidateQuery, limit int) ([]*profile.Profile, error) {
    if q.MatchNone {
        return []*profile.Profile{}, nil
    }

    s.mu.Lock()
    var all []*profile.Profile
    for _, p := range s.profiles {
        all = append(all, p)
    }
    s.mu.Unlock()

    sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

    excluded := make(map[int64]bool, len(q.ExcludeProfileIDs))
    for _, id := range q.ExcludeProfileIDs {
        excluded[id] = true
    }

    var out []*profile.Profile
    for _, p := range all {
        if excluded[p.ID] {
            continue
        }
        if q.Gender != "" && p.Gender != q.Gender {
            continue
        }
        if q.Ages != nil {
            if q.Ages.Min != nil && p.Age < *q.Ages.Min {
                continue
            }
            if q.Ages.Max != nil && p.Age > *q.Ages.Max {
                continue
            }
        }
        if q.RelationshipType != "" {
            if p.RelationshipType == nil || *p.RelationshipType != q.RelationshipType {
                continue
            }
        }
        if q.Geo != nil {
            if !p.HasCoordinate() {
                continue
            }
            if haversineKM(q.Geo.Latitude, q.Geo.Longitude, *p.Latitude, *p.Longitude) > q.Geo.MaxKM {
                continue
            }
        }
        if q.ExcludeActedBy != 0 && len(q.ExcludeActions) > 0 {
            skip := false
            for _, e := range s.ledger.edges {
                if e.FromProfileID != q.ExcludeActedBy || e.ToProfileID != p.ID {
                    continue
                }
                for _, a := range q.ExcludeActions {
                    if string(e.Action) == a {
                        skip = true
                    }
                }
            }
            if skip {
                continue
            }
        }

        out = append(out, p)
        if len(out) == limit {
            break
        }
    }

    if out == nil {
        out = []*profile.Profile{}
    }
    return out, nil
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
    const earthRadiusKM = 6371
    rad := func(deg float64) float64 { return deg * math.Pi / 180 }

    dLat := rad(lat2 - lat1)
    dLon := rad(lon2 - lon1)
    a := math.Pow(math.Sin(dLat/2), 2) +
        math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Pow(math.Sin(dLon/2), 2)
    return earthRadiusKM * 2 * math.Asin(math.Sqrt(a))
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

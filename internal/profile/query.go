// internal/profile/query.go
// Candidate query specification. Filters compose into an immutable value
// that the repository translates into SQL exactly once, so conditional
// branches never share a half-built query.

package profile

// GeoBound restricts candidates to a radius around an origin, in km.
// Results are ordered by ascending distance from the origin.
type GeoBound struct {
    Latitude  float64
    Longitude float64
    MaxKM     float64
}

// AgeRange bounds candidate age. Either side may be nil.
type AgeRange struct {
    Min *int
    Max *int
}

// CandidateQuery is the predicate over the candidate population. The zero
// value matches every profile.
type CandidateQuery struct {
    // MatchNone short-circuits the query to an empty result. Used for
    // orientations with no defined reciprocity.
    MatchNone bool

    Gender           string // required candidate gender, "" = unconstrained
    Ages             *AgeRange
    RelationshipType string // "" = unconstrained
    Geo              *GeoBound

    // ExcludeProfileIDs removes specific profiles (the viewer itself,
    // candidates already surfaced earlier in a cascade).
    ExcludeProfileIDs []int64

    // ExcludeActedBy removes candidates toward whom the given profile
    // already holds an edge with one of the listed actions.
    ExcludeActedBy      int64
    ExcludeActions      []string
}

// Filter is one immutable restriction over the candidate population
type Filter func(CandidateQuery) CandidateQuery

// NewCandidateQuery composes filters into a single query value
func NewCandidateQuery(filters ...Filter) CandidateQuery {
    var q CandidateQuery
    for _, f := range filters {
        q = f(q)
    }
    return q
}

// WithGender requires an exact candidate gender
func WithGender(gender string) Filter {
    return func(q CandidateQuery) CandidateQuery {
        q.Gender = gender
        return q
    }
}

// MatchingNothing yields an empty candidate set regardless of other filters
func MatchingNothing() Filter {
    return func(q CandidateQuery) CandidateQuery {
        q.MatchNone = true
        return q
    }
}

// WithAgeRange bounds candidate age; nil bounds are open
func WithAgeRange(min, max *int) Filter {
    return func(q CandidateQuery) CandidateQuery {
        if min == nil && max == nil {
            return q
        }
        q.Ages = &AgeRange{Min: min, Max: max}
        return q
    }
}

// WithRelationshipType requires an exact relationship-type preference
func WithRelationshipType(relType string) Filter {
    return func(q CandidateQuery) CandidateQuery {
        q.RelationshipType = relType
        return q
    }
}

// WithinDistance bounds candidates to maxKM of the origin and orders
// results nearest-first
func WithinDistance(lat, lon, maxKM float64) Filter {
    return func(q CandidateQuery) CandidateQuery {
        q.Geo = &GeoBound{Latitude: lat, Longitude: lon, MaxKM: maxKM}
        return q
    }
}

// ExcludingProfiles removes the given profile ids from the population
func ExcludingProfiles(ids ...int64) Filter {
    return func(q CandidateQuery) CandidateQuery {
        if len(ids) == 0 {
            return q
        }
        merged := make([]int64, 0, len(q.ExcludeProfileIDs)+len(ids))
        merged = append(merged, q.ExcludeProfileIDs...)
        merged = append(merged, ids...)
        q.ExcludeProfileIDs = merged
        return q
    }
}

// ExcludingActioned removes candidates the given profile already acted on
// with any of the listed actions
func ExcludingActioned(profileID int64, actions ...string) Filter {
    return func(q CandidateQuery) CandidateQuery {
        if len(actions) == 0 {
            return q
        }
        q.ExcludeActedBy = profileID
        merged := make([]string, 0, len(q.ExcludeActions)+len(actions))
        merged = append(merged, q.ExcludeActions...)
        merged = append(merged, actions...)
        q.ExcludeActions = merged
        return q
    }
}

// internal/matchmaking/scorer.go
// Rarity scoring. Additive weights from the viewer's perspective only;
// a missing attribute on either side contributes nothing.

package matchmaking

import (
    "github.com/amouradev/amoura-backend/internal/profile"
)

// Score weights
const (
    pointsSameCity             = 2
    pointsSameOrientation      = 2
    pointsSameRelationshipType = 1
    pointsSameZodiac           = 1
    pointsSameReligion         = 1
    pointsSamePolitics         = 1
    pointsSameSmoking          = 1
    pointsSameDrinking         = 1
    maxLanguagePoints          = 2
    maxInterestPoints          = 3
)

// Tier thresholds
const (
    legendaryThreshold = 8
    epicThreshold      = 6
    rareThreshold      = 4
    uncommonThreshold  = 2
)

// Score computes the compatibility points and rarity tier of a candidate
// as seen by the viewer. Not symmetric and intentionally so: the tier is
// presentation flavor for the viewer, not a stored compatibility fact.
func Score(viewer, candidate *profile.Profile) (int, Rarity) {
    points := 0

    if bothSet(viewer.City, candidate.City) {
        points += pointsSameCity
    }
    if viewer.Orientation != "" && viewer.Orientation == candidate.Orientation {
        points += pointsSameOrientation
    }
    if bothSet(viewer.RelationshipType, candidate.RelationshipType) {
        points += pointsSameRelationshipType
    }
    if bothSet(viewer.Zodiac, candidate.Zodiac) {
        points += pointsSameZodiac
    }
    if bothSet(viewer.Religion, candidate.Religion) {
        points += pointsSameReligion
    }
    if bothSet(viewer.Politics, candidate.Politics) {
        points += pointsSamePolitics
    }
    if bothSet(viewer.Smoking, candidate.Smoking) {
        points += pointsSameSmoking
    }
    if bothSet(viewer.Drinking, candidate.Drinking) {
        points += pointsSameDrinking
    }

    points += capped(countShared(viewer.Languages, candidate.Languages), maxLanguagePoints)
    points += capped(countShared(viewer.Interests, candidate.Interests), maxInterestPoints)

    return points, tierFor(points)
}

func tierFor(points int) Rarity {
    switch {
    case points >= legendaryThreshold:
        return RarityLegendary
    case points >= epicThreshold:
        return RarityEpic
    case points >= rareThreshold:
        return RarityRare
    case points >= uncommonThreshold:
        return RarityUncommon
    default:
        return RarityCommon
    }
}

// bothSet reports whether two optional attributes are present and equal
func bothSet(a, b *string) bool {
    return a != nil && b != nil && *a != "" && *a == *b
}

func countShared(a, b []string) int {
    if len(a) == 0 || len(b) == 0 {
        return 0
    }

    set := make(map[string]bool, len(a))
    for _, v := range a {
        set[v] = true
    }

    shared := 0
    for _, v := range b {
        if set[v] {
            shared++
            delete(set, v)
        }
    }
    return shared
}

func capped(n, max int) int {
    if n > max {
        return max
    }
    return n
}

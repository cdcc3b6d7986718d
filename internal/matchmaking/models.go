// internal/matchmaking/models.go

package matchmaking

import (
    "time"

    "github.com/amouradev/amoura-backend/internal/profile"
)

// Action is a directed relationship action between two profiles
type Action string

const (
    ActionSeen  Action = "seen"
    ActionLike  Action = "like"
    ActionMatch Action = "match"
)

// Rank orders actions by strength. Edges never move to a lower rank.
func (a Action) Rank() int {
    switch a {
    case ActionMatch:
        return 3
    case ActionLike:
        return 2
    case ActionSeen:
        return 1
    default:
        return 0
    }
}

// ActionEdge is a directed, timestamped fact "from did action toward to".
// At most one current edge persists per directed pair; superseded edges
// are deleted when the pair moves to a stronger action.
type ActionEdge struct {
    ID            int64     `json:"id" db:"id"`
    FromProfileID int64     `json:"from_profile_id" db:"from_profile_id"`
    ToProfileID   int64     `json:"to_profile_id" db:"to_profile_id"`
    Action        Action    `json:"action" db:"action"`
    CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Rarity is the compatibility tier attached to a candidate at response
// time. Computed from the viewer's perspective, never persisted.
type Rarity string

const (
    RarityCommon    Rarity = "common"
    RarityUncommon  Rarity = "uncommon"
    RarityRare      Rarity = "rare"
    RarityEpic      Rarity = "epic"
    RarityLegendary Rarity = "legendary"
)

// Rank orders rarity tiers from common upward
func (r Rarity) Rank() int {
    switch r {
    case RarityLegendary:
        return 4
    case RarityEpic:
        return 3
    case RarityRare:
        return 2
    case RarityUncommon:
        return 1
    default:
        return 0
    }
}

// CandidateSource records which acquisition tier produced a candidate
type CandidateSource string

const (
    SourceStrict CandidateSource = "strict"
    SourceBroad  CandidateSource = "broad"
    SourcePanic  CandidateSource = "panic"
)

// Candidate is one ranked discovery result
type Candidate struct {
    Profile *profile.Profile `json:"profile"`
    Rarity  Rarity           `json:"rarity"`
    Source  CandidateSource  `json:"source,omitempty"`
}

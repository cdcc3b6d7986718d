package matchmaking

import (
    "github.com/amouradev/amoura-backend/internal/profile"
)

type BatchRequest struct {
    Count int `json:"count" validate:"required,gt=0,max=50"`
}

type LikeRequest struct {
    TargetProfileID int64 `json:"target_profile_id" validate:"required,gt=0"`
}

type PassRequest struct {
    TargetProfileID int64 `json:"target_profile_id" validate:"required,gt=0"`
}

type UnmatchRequest struct {
    TargetProfileID int64 `json:"target_profile_id" validate:"required,gt=0"`
}

type CandidateResponse struct {
    Profile *profile.Profile `json:"profile"`
    Rarity  string           `json:"rarity"`
    Source  string           `json:"source,omitempty"`
}

type LikeResponse struct {
    Matched          bool   `json:"matched"`
    AlreadyProcessed bool   `json:"already_processed,omitempty"`
    Message          string `json:"message,omitempty"`
    ConversationRef  string `json:"conversation_ref,omitempty"`
}

type PassResponse struct {
    Success bool   `json:"success"`
    Message string `json:"message,omitempty"`
}

func NewCandidateResponse(c Candidate) CandidateResponse {
    return CandidateResponse{
        Profile: c.Profile,
        Rarity:  string(c.Rarity),
        Source:  string(c.Source),
    }
}

func NewCandidateResponses(candidates []Candidate) []CandidateResponse {
    out := make([]CandidateResponse, 0, len(candidates))
    for _, c := range candidates {
        out = append(out, NewCandidateResponse(c))
    }
    return out
}

func NewLikeResponse(r *LikeResult) LikeResponse {
    return LikeResponse{
        Matched:          r.Matched,
        AlreadyProcessed: r.AlreadyProcessed,
        Message:          r.Message,
        ConversationRef:  r.ConversationRef,
    }
}

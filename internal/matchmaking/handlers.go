package matchmaking

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"

    "github.com/amouradev/amoura-backend/internal/auth"
    "github.com/amouradev/amoura-backend/internal/common/utils"
    "github.com/amouradev/amoura-backend/internal/profile"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

// GetCandidates handles GET /candidates?count=&relationship_type=
func (h *Handler) GetCandidates(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    count := 20
    if raw := r.URL.Query().Get("count"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil {
            utils.RespondWithError(w, http.StatusBadRequest, "Invalid count")
            return
        }
        count = parsed
    }
    relationshipType := r.URL.Query().Get("relationship_type")

    candidates, err := h.service.GetCandidates(r.Context(), viewer.ID, count, relationshipType)
    if err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
        "candidates": NewCandidateResponses(candidates),
        "count":      len(candidates),
    })
}

// AcquireBatch handles POST /batch
func (h *Handler) AcquireBatch(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    var req BatchRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    batch, err := h.service.AcquireCandidateBatch(r.Context(), viewer.ID, req.Count)
    if err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
        "candidates": NewCandidateResponses(batch),
        "count":      len(batch),
    })
}

// Like handles POST /like
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    var req LikeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    result, err := h.service.LikeProfile(r.Context(), viewer.ID, req.TargetProfileID)
    if err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, NewLikeResponse(result))
}

// Pass handles POST /pass
func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    var req PassRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    outcome, err := h.service.PassProfile(r.Context(), viewer.ID, req.TargetProfileID)
    if err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, PassResponse{
        Success: outcome.Success,
        Message: outcome.Message,
    })
}

// ListMatches handles GET /matches
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    matches, err := h.service.ListMatches(r.Context(), viewer.ID)
    if err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
        "matches": matches,
        "count":   len(matches),
    })
}

// ListLikesReceived handles GET /likes/received?limit=
func (h *Handler) ListLikesReceived(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    limit := 0
    if raw := r.URL.Query().Get("limit"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil || parsed < 0 {
            utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
            return
        }
        limit = parsed
    }

    likers, err := h.service.ListLikesReceived(r.Context(), viewer.ID, limit)
    if err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
        "likes": likers,
        "count": len(likers),
    })
}

// Unmatch handles POST /unmatch
func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
    viewer, ok := h.viewerProfile(w, r)
    if !ok {
        return
    }

    var req UnmatchRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    if err := h.service.Unmatch(r.Context(), viewer.ID, req.TargetProfileID); err != nil {
        h.respondServiceError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
        "success": true,
    })
}

func (h *Handler) viewerProfile(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
    userID, ok := auth.UserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return nil, false
    }

    viewer, err := h.service.GetProfileForUser(r.Context(), userID)
    if err != nil {
        if errors.Is(err, profile.ErrProfileNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
            return nil, false
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load profile")
        return nil, false
    }

    return viewer, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
    switch {
    case errors.Is(err, profile.ErrProfileNotFound):
        utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
    case errors.Is(err, ErrInvalidCount):
        utils.RespondWithError(w, http.StatusBadRequest, "Count must be positive")
    case errors.Is(err, ErrSelfAction):
        utils.RespondWithError(w, http.StatusBadRequest, "Cannot act on your own profile")
    case errors.Is(err, ErrNotMatched):
        utils.RespondWithError(w, http.StatusBadRequest, "Profiles are not matched")
    default:
        utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
    }
}

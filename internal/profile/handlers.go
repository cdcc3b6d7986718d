package profile

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"

    "github.com/amouradev/amoura-backend/internal/auth"
    "github.com/amouradev/amoura-backend/internal/common/utils"
)

type Handler struct {
    store Store
}

func NewHandler(store Store) *Handler {
    return &Handler{store: store}
}

// GetMyProfile handles GET /api/v1/profile
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.UserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    p, err := h.store.GetByUserID(r.Context(), userID)
    if err != nil {
        if errors.Is(err, ErrProfileNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load profile")
        return
    }

    utils.RespondWithData(w, http.StatusOK, p)
}

// GetProfile handles GET /api/v1/profile/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
    id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid profile id")
        return
    }

    p, err := h.store.GetByID(r.Context(), id)
    if err != nil {
        if errors.Is(err, ErrProfileNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load profile")
        return
    }

    utils.RespondWithData(w, http.StatusOK, p)
}

// UpdatePreferences handles PUT /api/v1/profile/preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.UserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    var req UpdatePreferencesRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }
    if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
        utils.RespondWithError(w, http.StatusBadRequest, "min_age cannot exceed max_age")
        return
    }

    p, err := h.store.GetByUserID(r.Context(), userID)
    if err != nil {
        if errors.Is(err, ErrProfileNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load profile")
        return
    }

    err = h.store.UpdatePreferences(r.Context(), p.ID, PreferencesUpdate{
        MinAge:           req.MinAge,
        MaxAge:           req.MaxAge,
        MaxDistanceKM:    req.MaxDistanceKM,
        RelationshipType: req.RelationshipType,
    })
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update preferences")
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
        "success": true,
    })
}

package conversation

import (
    "errors"
    "net/http"

    "github.com/gorilla/mux"

    "github.com/amouradev/amoura-backend/internal/auth"
    "github.com/amouradev/amoura-backend/internal/common/utils"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

// GetConversation handles GET /{ref}. Only a participant may read the
// conversation record.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.UserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
        return
    }

    ref := mux.Vars(r)["ref"]
    if ref == "" {
        utils.RespondWithError(w, http.StatusBadRequest, "Missing conversation ref")
        return
    }

    conv, err := h.service.GetConversation(r.Context(), ref)
    if err != nil {
        if errors.Is(err, ErrConversationNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Conversation not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load conversation")
        return
    }

    if conv.User1ID != userID && conv.User2ID != userID {
        utils.RespondWithError(w, http.StatusNotFound, "Conversation not found")
        return
    }

    utils.RespondWithData(w, http.StatusOK, conv)
}

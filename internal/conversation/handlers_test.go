package conversation

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/gorilla/mux"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type fakeService struct {
    conversations map[string]*Conversation
}

func (f *fakeService) CreateOrGetConversation(ctx context.Context, userIDA, userIDB int64) (string, error) {
    panic("not used")
}

func (f *fakeService) GetConversation(ctx context.Context, ref string) (*Conversation, error) {
    conv, ok := f.conversations[ref]
    if !ok {
        return nil, ErrConversationNotFound
    }
    return conv, nil
}

func newConversationRouter(svc Service, userID int64) *mux.Router {
    router := mux.NewRouter()
    asUser := func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ctx := context.WithValue(r.Context(), "userID", userID)
            next.ServeHTTP(w, r.WithContext(ctx))
        })
    }
    RegisterRoutes(router, NewHandler(svc), asUser)
    return router
}

func TestGetConversation_ParticipantCanRead(t *testing.T) {
    svc := &fakeService{conversations: map[string]*Conversation{
        "conv-ref-1": {ID: 1, Ref: "conv-ref-1", User1ID: 5, User2ID: 9, CreatedAt: time.Now()},
    }}
    router := newConversationRouter(svc, 5)

    req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv-ref-1", nil)
    rec := httptest.NewRecorder()
    router.ServeHTTP(rec, req)

    require.Equal(t, http.StatusOK, rec.Code)

    var body struct {
        Data Conversation `json:"data"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, "conv-ref-1", body.Data.Ref)
    assert.Equal(t, int64(5), body.Data.User1ID)
    assert.Equal(t, int64(9), body.Data.User2ID)
}

func TestGetConversation_NonParticipantSeesNotFound(t *testing.T) {
    svc := &fakeService{conversations: map[string]*Conversation{
        "conv-ref-1": {ID: 1, Ref: "conv-ref-1", User1ID: 5, User2ID: 9},
    }}
    router := newConversationRouter(svc, 42)

    req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv-ref-1", nil)
    rec := httptest.NewRecorder()
    router.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConversation_UnknownRef(t *testing.T) {
    svc := &fakeService{conversations: map[string]*Conversation{}}
    router := newConversationRouter(svc, 5)

    req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/no-such-ref", nil)
    rec := httptest.NewRecorder()
    router.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusNotFound, rec.Code)
}

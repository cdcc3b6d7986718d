package conversation

import (
    "context"
)

// Service exposes conversation lifecycle operations to other modules.
type Service interface {
    CreateOrGetConversation(ctx context.Context, userIDA, userIDB int64) (string, error)
    GetConversation(ctx context.Context, ref string) (*Conversation, error)
}

type service struct {
    repo Repository
}

func NewService(repo Repository) Service {
    return &service{repo: repo}
}

// CreateOrGetConversation returns the stable reference for the pair's
// conversation, creating it on first contact.
func (s *service) CreateOrGetConversation(ctx context.Context, userIDA, userIDB int64) (string, error) {
    conv, err := s.repo.GetOrCreate(ctx, userIDA, userIDB)
    if err != nil {
        return "", err
    }
    return conv.Ref, nil
}

func (s *service) GetConversation(ctx context.Context, ref string) (*Conversation, error) {
    return s.repo.GetByRef(ctx, ref)
}

package conversation

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/google/uuid"
    "github.com/jmoiron/sqlx"
)

var ErrConversationNotFound = errors.New("conversation not found")

type Repository interface {
    GetOrCreate(ctx context.Context, userIDA, userIDB int64) (*Conversation, error)
    GetByRef(ctx context.Context, ref string) (*Conversation, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

// GetOrCreate returns the conversation for the user pair, creating it on
// first use. The unique constraint on (user1_id, user2_id) plus ON
// CONFLICT makes concurrent calls converge on the same row.
func (r *postgresRepository) GetOrCreate(ctx context.Context, userIDA, userIDB int64) (*Conversation, error) {
    if userIDA == userIDB {
        return nil, fmt.Errorf("cannot open a conversation with yourself")
    }
    if userIDA > userIDB {
        userIDA, userIDB = userIDB, userIDA
    }

    query := `
        INSERT INTO conversations (ref, user1_id, user2_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (user1_id, user2_id) DO NOTHING
    `
    if _, err := r.db.ExecContext(ctx, query, uuid.New().String(), userIDA, userIDB); err != nil {
        return nil, fmt.Errorf("failed to create conversation: %w", err)
    }

    var conv Conversation
    err := r.db.GetContext(ctx, &conv, `
        SELECT id, ref, user1_id, user2_id, created_at
        FROM conversations
        WHERE user1_id = $1 AND user2_id = $2
    `, userIDA, userIDB)
    if err != nil {
        return nil, fmt.Errorf("failed to get conversation: %w", err)
    }

    return &conv, nil
}

func (r *postgresRepository) GetByRef(ctx context.Context, ref string) (*Conversation, error) {
    var conv Conversation
    err := r.db.GetContext(ctx, &conv, `
        SELECT id, ref, user1_id, user2_id, created_at
        FROM conversations
        WHERE ref = $1
    `, ref)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrConversationNotFound
        }
        return nil, fmt.Errorf("failed to get conversation: %w", err)
    }

    return &conv, nil
}

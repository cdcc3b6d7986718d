package notification

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/jmoiron/sqlx"
)

var ErrNoEmail = errors.New("no email on record")

// Directory resolves a user id to an email address for the offline
// channel. Accounts live in an external identity service; the local
// users table mirrors the fields deliveries need.
type Directory interface {
    EmailForUser(ctx context.Context, userID int64) (string, error)
}

type postgresDirectory struct {
    db *sqlx.DB
}

func NewPostgresDirectory(db *sqlx.DB) Directory {
    return &postgresDirectory{db: db}
}

func (d *postgresDirectory) EmailForUser(ctx context.Context, userID int64) (string, error) {
    var email sql.NullString
    err := d.db.GetContext(ctx, &email, `SELECT email FROM users WHERE id = $1`, userID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return "", ErrNoEmail
        }
        return "", fmt.Errorf("failed to look up email: %w", err)
    }
    if !email.Valid || email.String == "" {
        return "", ErrNoEmail
    }

    return email.String, nil
}

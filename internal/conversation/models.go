package conversation

import (
    "time"
)

// Conversation is the messaging thread backing a match. User IDs are
// stored ordered (User1ID < User2ID) so a pair maps to exactly one row.
type Conversation struct {
    ID        int64     `db:"id" json:"id"`
    Ref       string    `db:"ref" json:"ref"`
    User1ID   int64     `db:"user1_id" json:"user1_id"`
    User2ID   int64     `db:"user2_id" json:"user2_id"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}

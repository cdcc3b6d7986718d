// internal/matchmaking/ledger.go
// Relationship ledger: the append-mostly store of directed action edges.
// No other component writes profile_actions.

package matchmaking

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"
)

// pqUniqueViolation is the PostgreSQL error code for duplicate keys
const pqUniqueViolation = "23505"

// EdgePredicate selects edges for reads and deletes. Nil fields are
// unconstrained.
type EdgePredicate struct {
    FromProfileID *int64
    ToProfileID   *int64
    Actions       []Action

    // EitherDirection widens From/To to both orderings of the pair.
    // Requires both FromProfileID and ToProfileID.
    EitherDirection bool
}

func (p EdgePredicate) empty() bool {
    return p.FromProfileID == nil && p.ToProfileID == nil && len(p.Actions) == 0
}

// Ledger owns the profile_actions table
type Ledger interface {
    // InsertEdges appends edges. A unique violation surfaces as-is so the
    // caller can treat it as a lost race.
    InsertEdges(ctx context.Context, edges []ActionEdge) error

    // InsertSeenIfAbsent creates a SEEN edge only when the directed pair
    // has no edge at all. Reports whether a row was written.
    InsertSeenIfAbsent(ctx context.Context, from, to int64) (bool, error)

    // FindEdge returns the strongest current edge for the directed pair,
    // or nil when the pair has no edge.
    FindEdge(ctx context.Context, from, to int64) (*ActionEdge, error)

    FindEdgesWhere(ctx context.Context, pred EdgePredicate) ([]ActionEdge, error)

    // DeleteEdges removes matching edges and reports how many went away.
    // An empty predicate is refused.
    DeleteEdges(ctx context.Context, pred EdgePredicate) (int64, error)

    // WithTx runs fn against a transactional view of the ledger
    WithTx(ctx context.Context, fn func(Ledger) error) error
}

type postgresLedger struct {
    db  *sqlx.DB
    ext sqlx.ExtContext
}

// NewPostgresLedger creates a PostgreSQL-backed relationship ledger
func NewPostgresLedger(db *sqlx.DB) Ledger {
    return &postgresLedger{db: db, ext: db}
}

func (l *postgresLedger) InsertEdges(ctx context.Context, edges []ActionEdge) error {
    if len(edges) == 0 {
        return nil
    }

    var (
        rows []string
        args []interface{}
    )
    for _, e := range edges {
        args = append(args, e.FromProfileID, e.ToProfileID, e.Action)
        n := len(args)
        rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", n-2, n-1, n))
    }

    query := `
        INSERT INTO profile_actions (from_profile_id, to_profile_id, action)
        VALUES ` + strings.Join(rows, ", ")

    if _, err := l.ext.ExecContext(ctx, query, args...); err != nil {
        return fmt.Errorf("failed to insert edges: %w", err)
    }
    return nil
}

func (l *postgresLedger) InsertSeenIfAbsent(ctx context.Context, from, to int64) (bool, error) {
    query := `
        INSERT INTO profile_actions (from_profile_id, to_profile_id, action)
        SELECT $1, $2, $3
        WHERE NOT EXISTS (
            SELECT 1 FROM profile_actions
            WHERE from_profile_id = $1 AND to_profile_id = $2
        )
        ON CONFLICT (from_profile_id, to_profile_id, action) DO NOTHING
    `

    res, err := l.ext.ExecContext(ctx, query, from, to, ActionSeen)
    if err != nil {
        return false, fmt.Errorf("failed to mark seen: %w", err)
    }

    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected > 0, nil
}

func (l *postgresLedger) FindEdge(ctx context.Context, from, to int64) (*ActionEdge, error) {
    var edge ActionEdge
    query := `
        SELECT id, from_profile_id, to_profile_id, action, created_at
        FROM profile_actions
        WHERE from_profile_id = $1 AND to_profile_id = $2
        ORDER BY CASE action
            WHEN 'match' THEN 3
            WHEN 'like' THEN 2
            ELSE 1
        END DESC
        LIMIT 1
    `

    err := sqlx.GetContext(ctx, l.ext, &edge, query, from, to)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, nil
        }
        return nil, fmt.Errorf("failed to find edge: %w", err)
    }

    return &edge, nil
}

func (l *postgresLedger) FindEdgesWhere(ctx context.Context, pred EdgePredicate) ([]ActionEdge, error) {
    conds, args := buildEdgePredicate(pred)

    query := `
        SELECT id, from_profile_id, to_profile_id, action, created_at
        FROM profile_actions
    `
    if len(conds) > 0 {
        query += " WHERE " + strings.Join(conds, " AND ")
    }
    query += " ORDER BY created_at DESC"

    var edges []ActionEdge
    if err := sqlx.SelectContext(ctx, l.ext, &edges, query, args...); err != nil {
        return nil, fmt.Errorf("failed to find edges: %w", err)
    }
    return edges, nil
}

func (l *postgresLedger) DeleteEdges(ctx context.Context, pred EdgePredicate) (int64, error) {
    if pred.empty() {
        return 0, errors.New("refusing to delete with empty predicate")
    }

    conds, args := buildEdgePredicate(pred)
    query := "DELETE FROM profile_actions WHERE " + strings.Join(conds, " AND ")

    res, err := l.ext.ExecContext(ctx, query, args...)
    if err != nil {
        return 0, fmt.Errorf("failed to delete edges: %w", err)
    }

    return res.RowsAffected()
}

func (l *postgresLedger) WithTx(ctx context.Context, fn func(Ledger) error) error {
    // Already inside a transaction: reuse it
    if _, ok := l.ext.(*sqlx.Tx); ok {
        return fn(l)
    }

    tx, err := l.db.BeginTxx(ctx, nil)
    if err != nil {
        return fmt.Errorf("failed to begin transaction: %w", err)
    }

    txLedger := &postgresLedger{db: l.db, ext: tx}
    if err := fn(txLedger); err != nil {
        if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
            return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
        }
        return err
    }

    return tx.Commit()
}

func buildEdgePredicate(pred EdgePredicate) ([]string, []interface{}) {
    var (
        conds []string
        args  []interface{}
    )
    arg := func(v interface{}) string {
        args = append(args, v)
        return fmt.Sprintf("$%d", len(args))
    }

    if pred.EitherDirection && pred.FromProfileID != nil && pred.ToProfileID != nil {
        a := arg(*pred.FromProfileID)
        b := arg(*pred.ToProfileID)
        conds = append(conds, fmt.Sprintf(
            "((from_profile_id = %s AND to_profile_id = %s) OR (from_profile_id = %s AND to_profile_id = %s))",
            a, b, b, a,
        ))
    } else {
        if pred.FromProfileID != nil {
            conds = append(conds, "from_profile_id = "+arg(*pred.FromProfileID))
        }
        if pred.ToProfileID != nil {
            conds = append(conds, "to_profile_id = "+arg(*pred.ToProfileID))
        }
    }

    if len(pred.Actions) > 0 {
        actions := make([]string, len(pred.Actions))
        for i, a := range pred.Actions {
            actions[i] = string(a)
        }
        conds = append(conds, "action = ANY("+arg(pq.Array(actions))+")")
    }

    return conds, args
}

// IsUniqueViolation reports whether err is a duplicate-key error. During
// mutual-match insertion it means the other direction won the race.
func IsUniqueViolation(err error) bool {
    var pqErr *pq.Error
    if errors.As(err, &pqErr) {
        return string(pqErr.Code) == pqUniqueViolation
    }
    return false
}

// internal/profile/repository.go

package profile

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")

// Store exposes profile reads plus the discovery-preference fields a
// user may change here. All other profile writes belong to the
// profile-editing service.
type Store interface {
    GetByID(ctx context.Context, profileID int64) (*Profile, error)
    GetByUserID(ctx context.Context, userID int64) (*Profile, error)
    QueryCandidates(ctx context.Context, q CandidateQuery, limit int) ([]*Profile, error)
    UpdatePreferences(ctx context.Context, profileID int64, upd PreferencesUpdate) error
}

// PreferencesUpdate carries the preference fields a user may change.
// Nil fields are left untouched.
type PreferencesUpdate struct {
    MinAge           *int
    MaxAge           *int
    MaxDistanceKM    *float64
    RelationshipType *string
}

type postgresStore struct {
    db *sqlx.DB
}

// NewPostgresStore creates a PostgreSQL-backed profile store
func NewPostgresStore(db *sqlx.DB) Store {
    return &postgresStore{db: db}
}

const profileColumns = `
    p.id, p.user_id, p.display_name, p.bio, p.birth_date,
    EXTRACT(YEAR FROM AGE(p.birth_date))::int AS age,
    p.gender, p.orientation, p.city, p.country, p.latitude, p.longitude,
    p.min_age, p.max_age, p.max_distance_km, p.relationship_type,
    p.smoking, p.drinking, p.religion, p.politics, p.zodiac,
    p.languages, p.interests, p.created_at, p.updated_at`

// haversineSQL computes great-circle distance in km between a candidate row
// and the query origin. Placeholders: origin lat, origin lat, origin lon.
const haversineSQL = `(6371 * 2 * asin(sqrt(
    power(sin(radians(p.latitude - %s) / 2), 2) +
    cos(radians(%s)) * cos(radians(p.latitude)) *
    power(sin(radians(p.longitude - %s) / 2), 2))))`

func (r *postgresStore) GetByID(ctx context.Context, profileID int64) (*Profile, error) {
    var p Profile
    query := `SELECT` + profileColumns + ` FROM profiles p WHERE p.id = $1`

    err := r.db.GetContext(ctx, &p, query, profileID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrProfileNotFound
        }
        return nil, fmt.Errorf("failed to get profile: %w", err)
    }

    return &p, nil
}

func (r *postgresStore) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
    var p Profile
    query := `SELECT` + profileColumns + ` FROM profiles p WHERE p.user_id = $1`

    err := r.db.GetContext(ctx, &p, query, userID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrProfileNotFound
        }
        return nil, fmt.Errorf("failed to get profile by user: %w", err)
    }

    return &p, nil
}

func (r *postgresStore) UpdatePreferences(ctx context.Context, profileID int64, upd PreferencesUpdate) error {
    var (
        sets []string
        args []interface{}
    )
    set := func(column string, v interface{}) {
        args = append(args, v)
        sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
    }

    if upd.MinAge != nil {
        set("min_age", *upd.MinAge)
    }
    if upd.MaxAge != nil {
        set("max_age", *upd.MaxAge)
    }
    if upd.MaxDistanceKM != nil {
        set("max_distance_km", *upd.MaxDistanceKM)
    }
    if upd.RelationshipType != nil {
        set("relationship_type", *upd.RelationshipType)
    }
    if len(sets) == 0 {
        return nil
    }
    sets = append(sets, "updated_at = NOW()")

    args = append(args, profileID)
    query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d",
        strings.Join(sets, ", "), len(args))

    result, err := r.db.ExecContext(ctx, query, args...)
    if err != nil {
        return fmt.Errorf("failed to update preferences: %w", err)
    }
    if rows, err := result.RowsAffected(); err == nil && rows == 0 {
        return ErrProfileNotFound
    }

    return nil
}

// QueryCandidates translates the query value into a single SQL statement
// and executes it. A MatchNone query never reaches the database.
func (r *postgresStore) QueryCandidates(ctx context.Context, q CandidateQuery, limit int) ([]*Profile, error) {
    if q.MatchNone {
        return []*Profile{}, nil
    }

    var (
        conds []string
        args  []interface{}
    )
    arg := func(v interface{}) string {
        args = append(args, v)
        return fmt.Sprintf("$%d", len(args))
    }

    selectList := profileColumns + `, NULL::float8 AS distance_km`
    orderBy := "p.created_at DESC"

    if q.Geo != nil {
        latP := arg(q.Geo.Latitude)
        lonP := arg(q.Geo.Longitude)
        distance := fmt.Sprintf(haversineSQL, latP, latP, lonP)

        selectList = profileColumns + `, ` + distance + ` AS distance_km`
        conds = append(conds, "p.latitude IS NOT NULL", "p.longitude IS NOT NULL")
        conds = append(conds, fmt.Sprintf("%s <= %s", distance, arg(q.Geo.MaxKM)))
        orderBy = distance + " ASC"
    }

    if q.Gender != "" {
        conds = append(conds, "p.gender = "+arg(q.Gender))
    }

    if q.Ages != nil {
        if q.Ages.Min != nil {
            conds = append(conds, "EXTRACT(YEAR FROM AGE(p.birth_date)) >= "+arg(*q.Ages.Min))
        }
        if q.Ages.Max != nil {
            conds = append(conds, "EXTRACT(YEAR FROM AGE(p.birth_date)) <= "+arg(*q.Ages.Max))
        }
    }

    if q.RelationshipType != "" {
        conds = append(conds, "p.relationship_type = "+arg(q.RelationshipType))
    }

    if len(q.ExcludeProfileIDs) > 0 {
        conds = append(conds, "p.id <> ALL("+arg(pq.Array(q.ExcludeProfileIDs))+")")
    }

    if q.ExcludeActedBy != 0 && len(q.ExcludeActions) > 0 {
        conds = append(conds, fmt.Sprintf(
            `NOT EXISTS (
                SELECT 1 FROM profile_actions a
                WHERE a.from_profile_id = %s
                  AND a.to_profile_id = p.id
                  AND a.action = ANY(%s)
            )`,
            arg(q.ExcludeActedBy), arg(pq.Array(q.ExcludeActions)),
        ))
    }

    query := "SELECT" + selectList + " FROM profiles p"
    if len(conds) > 0 {
        query += " WHERE " + strings.Join(conds, " AND ")
    }
    query += " ORDER BY " + orderBy
    query += " LIMIT " + arg(limit)

    var candidates []*Profile
    if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
        return nil, fmt.Errorf("failed to query candidates: %w", err)
    }

    if candidates == nil {
        candidates = []*Profile{}
    }
    return candidates, nil
}

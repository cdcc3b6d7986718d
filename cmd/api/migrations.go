// cmd/api/migrations.go

package main

import (
    "fmt"
    "log"

    "github.com/jmoiron/sqlx"
)

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
    log.Println("   - Creating/updating tables...")

    migrations := []string{
        // Users table. Accounts are owned by the identity service; this
        // mirror holds the fields local modules need.
        `CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

        // Profiles table
        `CREATE TABLE IF NOT EXISTS profiles (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
            display_name VARCHAR(100) NOT NULL,
            bio TEXT,
            birth_date DATE NOT NULL,
            gender VARCHAR(20) NOT NULL,
            orientation VARCHAR(20) NOT NULL,
            city VARCHAR(100),
            country VARCHAR(100),
            latitude DOUBLE PRECISION,
            longitude DOUBLE PRECISION,
            min_age INTEGER,
            max_age INTEGER,
            max_distance_km DOUBLE PRECISION,
            relationship_type VARCHAR(30),
            smoking VARCHAR(30),
            drinking VARCHAR(30),
            religion VARCHAR(50),
            politics VARCHAR(50),
            zodiac VARCHAR(30),
            languages TEXT[] DEFAULT '{}',
            interests TEXT[] DEFAULT '{}',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

        `CREATE INDEX IF NOT EXISTS idx_profiles_gender ON profiles(gender)`,
        `CREATE INDEX IF NOT EXISTS idx_profiles_relationship_type ON profiles(relationship_type)`,

        // Relationship ledger. One row per directed edge; the unique
        // constraint backs race detection on concurrent likes.
        `CREATE TABLE IF NOT EXISTS profile_actions (
            id BIGSERIAL PRIMARY KEY,
            from_profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            to_profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            action VARCHAR(20) NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(from_profile_id, to_profile_id, action),
            CHECK (from_profile_id <> to_profile_id)
        )`,

        `CREATE INDEX IF NOT EXISTS idx_profile_actions_from ON profile_actions(from_profile_id, action)`,
        `CREATE INDEX IF NOT EXISTS idx_profile_actions_to ON profile_actions(to_profile_id, action)`,

        // Conversations table. User ids are stored ordered so a pair
        // maps to one row.
        `CREATE TABLE IF NOT EXISTS conversations (
            id BIGSERIAL PRIMARY KEY,
            ref VARCHAR(36) NOT NULL UNIQUE,
            user1_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user2_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(user1_id, user2_id),
            CHECK (user1_id < user2_id)
        )`,
    }

    for i, migration := range migrations {
        if _, err := db.Exec(migration); err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }

    return nil
}

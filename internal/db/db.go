package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS activities (
            id SERIAL PRIMARY KEY,
            creator_id INT NOT NULL,
            kind TEXT NOT NULL CHECK (kind IN ('meetup', 'event', 'blend')),
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            intent_tag TEXT,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            start_at TIMESTAMPTZ,
            end_at TIMESTAMPTZ,
            meeting_at TIMESTAMPTZ,
            expires_at TIMESTAMPTZ NOT NULL,
            is_public BOOLEAN NOT NULL DEFAULT TRUE,
            female_only BOOLEAN NOT NULL DEFAULT FALSE,
            max_participants INT,
            time_type TEXT NOT NULL DEFAULT '',
            media_url TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_activities_feed ON activities (is_public, expires_at);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_creator ON activities (creator_id);`,
		`CREATE TABLE IF NOT EXISTS chats (
            id SERIAL PRIMARY KEY,
            kind TEXT NOT NULL CHECK (kind IN ('direct', 'meetup', 'event', 'blend', 'trip', 'system')),
            activity_id INT REFERENCES activities(id) ON DELETE SET NULL,
            trip_key TEXT,
            direct_user1 INT,
            direct_user2 INT,
            is_system_chat BOOLEAN NOT NULL DEFAULT FALSE,
            owner_user_id INT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (direct_user1 IS NULL OR direct_user2 IS NULL OR direct_user1 < direct_user2)
        );`,
		// Uniqueness constraints are the arbiter for every resolve-or-create
		// path; concurrent callers converge on one row.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_chats_activity ON chats (activity_id) WHERE activity_id IS NOT NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_chats_trip ON chats (trip_key) WHERE trip_key IS NOT NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_chats_direct ON chats (direct_user1, direct_user2) WHERE direct_user1 IS NOT NULL;`,
		`CREATE TABLE IF NOT EXISTS chat_participants (
            chat_id INT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            user_id INT NOT NULL,
            joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            rsvp_status TEXT,
            hidden BOOLEAN NOT NULL DEFAULT FALSE,
            PRIMARY KEY (chat_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            chat_id INT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            sender_type TEXT NOT NULL DEFAULT 'user' CHECK (sender_type IN ('user', 'system', 'bot')),
            sender_id INT NOT NULL,
            body TEXT NOT NULL,
            media_url TEXT,
            kind TEXT NOT NULL DEFAULT 'text' CHECK (kind IN ('text', 'system')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages (chat_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS unread_cursors (
            user_id INT NOT NULL,
            chat_id INT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            last_read_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (user_id, chat_id)
        );`,
		`CREATE TABLE IF NOT EXISTS social_edges (
            user_a INT NOT NULL,
            user_b INT NOT NULL,
            kind TEXT NOT NULL CHECK (kind IN ('friend', 'blocked', 'request_pending')),
            PRIMARY KEY (user_a, user_b, kind)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Info().Msg("database migrations applied")
	return nil
}

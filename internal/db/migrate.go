package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, conn *sql.DB, d Dialect) error {
	stmts := sqliteSchema
	if d.Name == Postgres.Name {
		stmts = postgresSchema
	}
	for i, s := range stmts {
		if _, err := conn.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("db: migrate statement %d: %w", i, err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		date_joined TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS profiles(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS sessions(
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE
	);`,
	`CREATE TABLE IF NOT EXISTS posts(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS posts_created_idx ON posts(created_at);`,
	`CREATE INDEX IF NOT EXISTS posts_profile_idx ON posts(profile_id);`,
	`CREATE TABLE IF NOT EXISTS comments(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER REFERENCES profiles(id) ON DELETE CASCADE,
		post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		comment_text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS comments_post_idx ON comments(post_id);`,
	`CREATE TABLE IF NOT EXISTS likes(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		is_liked BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(profile_id, post_id)
	);`,
	`CREATE TABLE IF NOT EXISTS comment_likes(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		comment_id INTEGER NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		is_liked BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(profile_id, comment_id)
	);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users(
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL,
		first_name VARCHAR(30) NOT NULL DEFAULT '',
		last_name VARCHAR(30) NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		date_joined TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS profiles(
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS sessions(
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories(
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(100) NOT NULL UNIQUE
	);`,
	`CREATE TABLE IF NOT EXISTS posts(
		id BIGSERIAL PRIMARY KEY,
		profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		title VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS posts_created_idx ON posts(created_at);`,
	`CREATE INDEX IF NOT EXISTS posts_profile_idx ON posts(profile_id);`,
	`CREATE TABLE IF NOT EXISTS comments(
		id BIGSERIAL PRIMARY KEY,
		profile_id BIGINT REFERENCES profiles(id) ON DELETE CASCADE,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		comment_text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS comments_post_idx ON comments(post_id);`,
	`CREATE TABLE IF NOT EXISTS likes(
		id BIGSERIAL PRIMARY KEY,
		profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		is_liked BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(profile_id, post_id)
	);`,
	`CREATE TABLE IF NOT EXISTS comment_likes(
		id BIGSERIAL PRIMARY KEY,
		profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		comment_id BIGINT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		is_liked BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(profile_id, comment_id)
	);`,
}

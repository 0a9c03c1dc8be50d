package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/flor3z/welcome-bot/internal/domain"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Repository handles all database operations
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository opens the database and runs migrations. For SQLite dsn is a
// file path; for Postgres it is a connection string.
func NewRepository(driver, dsn string) (*Repository, error) {
	switch driver {
	case DriverSQLite:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db, driver: driver}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS member_notification_messages (
			guild_id VARCHAR(20) NOT NULL,
			event VARCHAR(10) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			footer TEXT NOT NULL DEFAULT '',
			thumbnail_is_file BOOLEAN NOT NULL DEFAULT FALSE,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			image_is_file BOOLEAN NOT NULL DEFAULT FALSE,
			image_url TEXT NOT NULL DEFAULT '',
			author_icon_is_file BOOLEAN NOT NULL DEFAULT FALSE,
			author_icon_url TEXT NOT NULL DEFAULT '',
			footer_icon_is_file BOOLEAN NOT NULL DEFAULT FALSE,
			footer_icon_url TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (guild_id, event)
		)`,
		`CREATE TABLE IF NOT EXISTS member_notification_channels (
			guild_id VARCHAR(20) NOT NULL,
			event VARCHAR(10) NOT NULL,
			channel_id VARCHAR(20) NOT NULL,
			PRIMARY KEY (guild_id, event)
		)`,
		`CREATE TABLE IF NOT EXISTS welcome_roles (
			guild_id VARCHAR(20) NOT NULL,
			role_id VARCHAR(20) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (guild_id, role_id)
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// rebind rewrites ? placeholders into $n for Postgres
func (r *Repository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// Notification message operations

// FindNotification returns the notification format for a guild and event, or
// nil if none is configured
func (r *Repository) FindNotification(ctx context.Context, guildID string, event domain.EventType) (*domain.NotificationConfig, error) {
	var row notificationRow
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+notificationColumns+` FROM member_notification_messages WHERE guild_id = ? AND event = ?`),
		guildID, event.String(),
	).Scan(row.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.config(), nil
}

// UpsertNotification creates or fully replaces a notification format
func (r *Repository) UpsertNotification(ctx context.Context, n *domain.NotificationConfig) error {
	row := newNotificationRow(n)
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO member_notification_messages (`+notificationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (guild_id, event) DO UPDATE SET
			content = excluded.content,
			title = excluded.title,
			description = excluded.description,
			author = excluded.author,
			footer = excluded.footer,
			thumbnail_is_file = excluded.thumbnail_is_file,
			thumbnail_url = excluded.thumbnail_url,
			image_is_file = excluded.image_is_file,
			image_url = excluded.image_url,
			author_icon_is_file = excluded.author_icon_is_file,
			author_icon_url = excluded.author_icon_url,
			footer_icon_is_file = excluded.footer_icon_is_file,
			footer_icon_url = excluded.footer_icon_url,
			updated_at = CURRENT_TIMESTAMP`),
		row.args()...,
	)
	return err
}

// DeleteNotification removes a notification format
func (r *Repository) DeleteNotification(ctx context.Context, guildID string, event domain.EventType) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`DELETE FROM member_notification_messages WHERE guild_id = ? AND event = ?`),
		guildID, event.String(),
	)
	return err
}

// GetNotificationFiles returns every local file referenced by a guild's formats
func (r *Repository) GetNotificationFiles(ctx context.Context, guildID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+notificationColumns+` FROM member_notification_messages WHERE guild_id = ?`),
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var row notificationRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		files = append(files, row.config().Files()...)
	}

	return files, rows.Err()
}

// Notification channel operations

// UpsertChannel sets the channel notifications of an event are sent to
func (r *Repository) UpsertChannel(ctx context.Context, setting *domain.ChannelSetting) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO member_notification_channels (guild_id, event, channel_id) VALUES (?, ?, ?)
		 ON CONFLICT (guild_id, event) DO UPDATE SET channel_id = excluded.channel_id`),
		setting.GuildID, setting.Event.String(), setting.ChannelID,
	)
	return err
}

// DeleteChannel removes the notification channel of an event
func (r *Repository) DeleteChannel(ctx context.Context, guildID string, event domain.EventType) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`DELETE FROM member_notification_channels WHERE guild_id = ? AND event = ?`),
		guildID, event.String(),
	)
	return err
}

// GetChannel returns the notification channel of an event, or "" if none is set
func (r *Repository) GetChannel(ctx context.Context, guildID string, event domain.EventType) (string, error) {
	var channelID string
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT channel_id FROM member_notification_channels WHERE guild_id = ? AND event = ?`),
		guildID, event.String(),
	).Scan(&channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return channelID, err
}

// Join role operations

// AddJoinRole adds a role given to new members. It reports false if the role
// was already present.
func (r *Repository) AddJoinRole(ctx context.Context, guildID, roleID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO welcome_roles (guild_id, role_id) VALUES (?, ?)
		 ON CONFLICT (guild_id, role_id) DO NOTHING`),
		guildID, roleID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

// RemoveJoinRole removes a role given to new members. It reports false if the
// role was not present.
func (r *Repository) RemoveJoinRole(ctx context.Context, guildID, roleID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.rebind(
		`DELETE FROM welcome_roles WHERE guild_id = ? AND role_id = ?`),
		guildID, roleID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

// GetJoinRoles returns the roles given to new members of a guild
func (r *Repository) GetJoinRoles(ctx context.Context, guildID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT role_id FROM welcome_roles WHERE guild_id = ? ORDER BY created_at, role_id`),
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, err
		}
		roles = append(roles, roleID)
	}

	return roles, rows.Err()
}

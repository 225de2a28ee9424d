// Package archive persists reconciled messages to a local sqlite
// database for offline lookback. It is write-through and advisory:
// the in-memory stores never read from it during reconciliation.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// Store is a sqlite-backed message archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("archive path required")
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to archive database: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			message_id INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			sender_type TEXT NOT NULL,
			sender_name TEXT,
			content TEXT NOT NULL,
			images TEXT,
			created_at TEXT NOT NULL,
			PRIMARY KEY (session_id, message_id)
		)`,
		`CREATE INDEX IF NOT EXISTS messages_session_idx ON messages(session_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize archive schema: %w", err)
		}
	}
	return nil
}

// Record stores one reconciled message. Optimistic entries and
// temporary greetings carry no server id and are skipped; re-recording
// a message already present is a no-op.
func (s *Store) Record(ctx context.Context, msg chat.Message) error {
	if s == nil || s.db == nil {
		return errors.New("archive unavailable")
	}
	if msg.ID <= 0 || msg.Temporary || msg.IsLocal() {
		return nil
	}

	var images string
	if len(msg.Images) > 0 {
		encoded, err := json.Marshal(msg.Images)
		if err != nil {
			return fmt.Errorf("failed to encode image list: %w", err)
		}
		images = string(encoded)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages (message_id, session_id, sender_type, sender_name, content, images, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		msg.SessionID,
		string(msg.SenderType),
		msg.SenderName,
		msg.Content,
		images,
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to archive message: %w", err)
	}
	return nil
}

// Recent returns the newest limit archived messages for a session,
// oldest first.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("archive unavailable")
	}
	if sessionID == "" {
		return nil, errors.New("session id required")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, sender_type, sender_name, content, images, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at DESC, message_id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var (
			id         int64
			senderType string
			senderName sql.NullString
			content    string
			imagesRaw  sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&id, &senderType, &senderName, &content, &imagesRaw, &createdRaw); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}

		var images []string
		if imagesRaw.Valid && imagesRaw.String != "" {
			if err := json.Unmarshal([]byte(imagesRaw.String), &images); err != nil {
				return nil, fmt.Errorf("failed to decode image list: %w", err)
			}
		}

		messages = append(messages, chat.Message{
			ID:         id,
			SessionID:  sessionID,
			SenderType: chat.SenderType(senderType),
			SenderName: senderName.String,
			Content:    content,
			Images:     images,
			CreatedAt:  chat.ParseWireTime(createdRaw),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive query error: %w", err)
	}

	// Rows come newest first; reverse for display order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

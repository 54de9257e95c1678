package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"eldrix/admin/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository struct {
	db DB
}

func NewMessageRepository(db DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append writes the session's post-message state and the message in one
// transaction. The session update is guarded on status so a close that
// commits first leaves the log untouched. Status only moves forward in SQL:
// an admin reply lifts pending to open and nothing else is rewritten, so a
// stale in-memory copy can never lower a status another writer advanced.
func (r *MessageRepository) Append(ctx context.Context, session models.HelpSession, msg models.Message) (models.Message, error) {
	const updateSession = `
		UPDATE help_sessions
		SET status = CASE WHEN $2 AND status = 'pending' THEN 'open' ELSE status END,
		    last_message = $3,
		    updated_at = $4
		WHERE id = $1 AND status <> 'completed'
	`
	const insertMessage = `
		INSERT INTO messages (id, help_session_id, content, is_admin, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, updateSession, session.ID, msg.IsAdmin, session.LastMessage, session.UpdatedAt)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrSessionNotWritable
		}
		return tx.QueryRow(ctx, insertMessage,
			msg.ID,
			msg.HelpSessionID,
			msg.Content,
			msg.IsAdmin,
			msg.Read,
			msg.CreatedAt,
		).Scan(&msg.Seq)
	})
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	const query = `
		SELECT id, seq, help_session_id, content, is_admin, read, created_at
		FROM messages
		WHERE help_session_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.Seq,
			&m.HelpSessionID,
			&m.Content,
			&m.IsAdmin,
			&m.Read,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListBySessions loads the logs of many sessions in one query, keyed by
// session id. Sessions without messages are absent from the map.
func (r *MessageRepository) ListBySessions(ctx context.Context, sessionIDs []string) (map[string][]models.Message, error) {
	const query = `
		SELECT id, seq, help_session_id, content, is_admin, read, created_at
		FROM messages
		WHERE help_session_id = ANY($1)
		ORDER BY help_session_id, created_at ASC, seq ASC
	`

	out := make(map[string][]models.Message)
	if len(sessionIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.Seq,
			&m.HelpSessionID,
			&m.Content,
			&m.IsAdmin,
			&m.Read,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out[m.HelpSessionID] = append(out[m.HelpSessionID], m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) {
	const query = `UPDATE messages SET read = TRUE WHERE help_session_id = $1 AND NOT read`
	cmd, err := r.db.Exec(ctx, query, sessionID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE messages SET read = TRUE WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE help_session_id = $1 AND NOT read`
	var n int
	if err := r.db.QueryRow(ctx, query, sessionID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

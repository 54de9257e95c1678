package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"eldrix/admin/internal/models"
)

var (
	ErrHelpSessionNotFound = errors.New("help session not found")
	// ErrSessionNotWritable means a guarded write matched no row: the session
	// is missing or already completed. Callers re-read to tell which.
	ErrSessionNotWritable = errors.New("help session missing or completed")
)

const helpSessionColumns = `
	hs.id, hs.user_id, hs.title, hs.session_recap, hs.last_message, hs.type,
	hs.status, hs.priority, hs.completed, hs.created_at, hs.updated_at`

type SessionRow struct {
	Session      models.HelpSession
	UserName     string
	MessageCount int
	UnreadCount  int
}

type HelpSessionRepository struct {
	db DB
}

func NewHelpSessionRepository(db DB) *HelpSessionRepository {
	return &HelpSessionRepository{db: db}
}

// Create inserts the session. completed is generated from status and is
// never written directly.
func (r *HelpSessionRepository) Create(ctx context.Context, s models.HelpSession) error {
	const query = `
		INSERT INTO help_sessions (
			id, user_id, title, session_recap, last_message, type, status, priority, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Title,
		s.SessionRecap,
		s.LastMessage,
		s.Type,
		s.Status,
		s.Priority,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *HelpSessionRepository) GetByID(ctx context.Context, id string) (models.HelpSession, error) {
	query := `SELECT ` + helpSessionColumns + ` FROM help_sessions hs WHERE hs.id = $1`

	s, err := scanHelpSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.HelpSession{}, ErrHelpSessionNotFound
		}
		return models.HelpSession{}, err
	}
	return s, nil
}

// ListSummaries returns every session with its owner's name and message
// counters. Ordering is left to the listing package.
func (r *HelpSessionRepository) ListSummaries(ctx context.Context) ([]SessionRow, error) {
	query := `
		SELECT ` + helpSessionColumns + `,
		       COALESCE(u.name, ''),
		       COUNT(m.id),
		       COUNT(m.id) FILTER (WHERE NOT m.read)
		FROM help_sessions hs
		LEFT JOIN users u ON u.id = hs.user_id
		LEFT JOIN messages m ON m.help_session_id = hs.id
		GROUP BY hs.id, u.name
		ORDER BY hs.updated_at DESC, hs.id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var row SessionRow
		s := &row.Session
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Title,
			&s.SessionRecap,
			&s.LastMessage,
			&s.Type,
			&s.Status,
			&s.Priority,
			&s.Completed,
			&s.CreatedAt,
			&s.UpdatedAt,
			&row.UserName,
			&row.MessageCount,
			&row.UnreadCount,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *HelpSessionRepository) ListByUser(ctx context.Context, userID string) ([]models.HelpSession, error) {
	query := `
		SELECT ` + helpSessionColumns + `
		FROM help_sessions hs
		WHERE hs.user_id = $1
		ORDER BY hs.created_at DESC, hs.id ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.HelpSession
	for rows.Next() {
		s, err := scanHelpSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close persists a completed session. The status guard makes a concurrent
// second close match zero rows.
func (r *HelpSessionRepository) Close(ctx context.Context, s models.HelpSession) error {
	const query = `
		UPDATE help_sessions
		SET status = $2,
		    session_recap = $3,
		    title = $4,
		    updated_at = $5
		WHERE id = $1 AND status <> 'completed'
	`

	cmd, err := r.db.Exec(ctx, query, s.ID, s.Status, s.SessionRecap, s.Title, s.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotWritable
	}
	return nil
}

func (r *HelpSessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM help_sessions WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrHelpSessionNotFound
	}
	return nil
}

func (r *HelpSessionRepository) CountByStatus(ctx context.Context) (map[models.SessionStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM help_sessions GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.SessionStatus]int{
		models.SessionStatusPending:   0,
		models.SessionStatusOpen:      0,
		models.SessionStatusOngoing:   0,
		models.SessionStatusCompleted: 0,
	}
	for rows.Next() {
		var status models.SessionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanHelpSession(row pgx.Row) (models.HelpSession, error) {
	var s models.HelpSession
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.SessionRecap,
		&s.LastMessage,
		&s.Type,
		&s.Status,
		&s.Priority,
		&s.Completed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

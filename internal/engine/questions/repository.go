package questions

import (
	"context"
	"database/sql"

	"askly/internal/platform/repositories"
)

type Repository struct {
	db repositories.DBTX
}

func NewRepository(db repositories.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Create inserts q and fills in its sequence number.
func (r *Repository) Create(ctx context.Context, q *Question) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (id, user_id, organization_id, content, is_anonymous, created_at, last_message_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.UserID, q.OrganizationID, q.Content, q.IsAnonymous, q.Date, q.LastMessageTime)
	if err != nil {
		return err
	}

	q.Seq, err = res.LastInsertId()
	return err
}

// LatestByAuthor returns the most recent question by userID in orgID, or nil.
// Equal timestamps are ordered by insertion.
func (r *Repository) LatestByAuthor(ctx context.Context, userID, orgID string) (*Question, error) {
	q := &Question{}
	err := r.db.QueryRowContext(ctx, `
		SELECT seq, id, user_id, organization_id, content, is_anonymous, created_at, last_message_time
		FROM questions
		WHERE user_id = ? AND organization_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`, userID, orgID).Scan(&q.Seq, &q.ID, &q.UserID, &q.OrganizationID, &q.Content, &q.IsAnonymous, &q.Date, &q.LastMessageTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

// ListForOrganization returns the organization's questions newest first,
// paired with each author's username.
func (r *Repository) ListForOrganization(ctx context.Context, orgID string) ([]*Question, []string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.seq, q.id, q.user_id, q.organization_id, q.content, q.is_anonymous, q.created_at, q.last_message_time, u.username
		FROM questions q
		JOIN users u ON u.id = q.user_id
		WHERE q.organization_id = ?
		ORDER BY q.created_at DESC, q.seq DESC
	`, orgID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		list      []*Question
		usernames []string
	)
	for rows.Next() {
		q := &Question{}
		var username string
		if err := rows.Scan(&q.Seq, &q.ID, &q.UserID, &q.OrganizationID, &q.Content, &q.IsAnonymous, &q.Date, &q.LastMessageTime, &username); err != nil {
			return nil, nil, err
		}
		list = append(list, q)
		usernames = append(usernames, username)
	}
	return list, usernames, rows.Err()
}

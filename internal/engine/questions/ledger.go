// Package questions is the append-only question store and its anonymized read
// projection.
package questions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Ledger struct {
	repo *Repository
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{repo: NewRepository(db)}
}

// WithTx returns a ledger whose reads and writes run inside tx.
func (l *Ledger) WithTx(tx *sql.Tx) *Ledger {
	return &Ledger{repo: l.repo.WithTx(tx)}
}

// Append stores a new question stamped with now. Content is stored as given.
func (l *Ledger) Append(ctx context.Context, authorID, orgID, content string, isAnonymous bool, now time.Time) (*Question, error) {
	ms := now.UnixMilli()
	q := &Question{
		ID:              "qst_" + uuid.NewString(),
		UserID:          authorID,
		OrganizationID:  orgID,
		Content:         content,
		IsAnonymous:     isAnonymous,
		Date:            ms,
		LastMessageTime: ms,
	}

	if err := l.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("append question: %w", err)
	}
	return q, nil
}

func (l *Ledger) LatestByAuthor(ctx context.Context, authorID, orgID string) (*Question, error) {
	q, err := l.repo.LatestByAuthor(ctx, authorID, orgID)
	if err != nil {
		return nil, fmt.Errorf("latest question: %w", err)
	}
	return q, nil
}

// ListForOrganization returns anonymized views, newest first. No caller,
// including the organization owner, sees the author of an anonymous question.
func (l *Ledger) ListForOrganization(ctx context.Context, orgID string) ([]*View, error) {
	list, usernames, err := l.repo.ListForOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	views := make([]*View, 0, len(list))
	for i, q := range list {
		views = append(views, Project(q, usernames[i]))
	}
	return views, nil
}

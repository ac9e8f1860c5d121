package repositories

import (
	"context"
	"database/sql"

	"askly/internal/platform/models"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_creator, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.IsCreator, user.CreatedAt, user.UpdatedAt)
	return insertErr(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, is_creator, created_at, updated_at
		FROM users WHERE `+column+` = ?
	`, value).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsCreator, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.Organizations, err = r.OrganizationIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// OrganizationIDs returns the user's memberships in the order they were added.
func (r *UserRepository) OrganizationIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT organization_id FROM user_organizations WHERE user_id = ? ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// AddOrganization appends orgID to the user's list. added is false when it was already present.
func (r *UserRepository) AddOrganization(ctx context.Context, userID, orgID string, at int64) (added bool, err error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_organizations (user_id, organization_id, added_at) VALUES (?, ?, ?)
	`, userID, orgID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

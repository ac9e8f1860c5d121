package repositories

import (
	"context"
	"database/sql"

	"askly/internal/platform/models"
)

const organizationColumns = `o.id, o.name, o.owner_id, o.unique_url, o.allow_messages, o.cooldown_time, o.one_question_per_user, o.created_at, o.updated_at`

type OrganizationRepository struct {
	db DBTX
}

func NewOrganizationRepository(db DBTX) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) WithTx(tx *sql.Tx) *OrganizationRepository {
	return &OrganizationRepository{db: tx}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, owner_id, unique_url, allow_messages, cooldown_time, one_question_per_user, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.OwnerID, org.UniqueURL, org.AllowMessages, org.CooldownTime, org.OneQuestionPerUser, org.CreatedAt, org.UpdatedAt)
	return insertErr(err)
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations o WHERE o.id = ?`, id)
	return r.get(ctx, row)
}

// GetByURL matches the slug case-insensitively (the column is COLLATE NOCASE).
func (r *OrganizationRepository) GetByURL(ctx context.Context, uniqueURL string) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations o WHERE o.unique_url = ?`, uniqueURL)
	return r.get(ctx, row)
}

func (r *OrganizationRepository) get(ctx context.Context, row scanner) (*models.Organization, error) {
	org, err := scanOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	org.Members, err = r.MemberIDs(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ListForUser resolves the user's membership list, preserving insertion order.
func (r *OrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*models.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+organizationColumns+`
		FROM user_organizations uo
		JOIN organizations o ON o.id = uo.organization_id
		WHERE uo.user_id = ?
		ORDER BY uo.rowid
	`, userID)
	if err != nil {
		return nil, err
	}

	orgs := []*models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, org := range orgs {
		if org.Members, err = r.MemberIDs(ctx, org.ID); err != nil {
			return nil, err
		}
	}
	return orgs, nil
}

func (r *OrganizationRepository) MemberIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM organization_members WHERE organization_id = ? ORDER BY rowid
	`, orgID)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// AddMember appends userID to the member list. added is false when already a member.
func (r *OrganizationRepository) AddMember(ctx context.Context, orgID, userID string, at int64) (added bool, err error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO organization_members (organization_id, user_id, joined_at) VALUES (?, ?, ?)
	`, orgID, userID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateSettings persists the mutable policy fields.
func (r *OrganizationRepository) UpdateSettings(ctx context.Context, org *models.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET allow_messages = ?, cooldown_time = ?, one_question_per_user = ?, updated_at = ?
		WHERE id = ?
	`, org.AllowMessages, org.CooldownTime, org.OneQuestionPerUser, org.UpdatedAt, org.ID)
	return err
}

func scanOrganization(row scanner) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.OwnerID, &org.UniqueURL, &org.AllowMessages,
		&org.CooldownTime, &org.OneQuestionPerUser, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return org, nil
}

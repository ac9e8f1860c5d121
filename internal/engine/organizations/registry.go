// Package organizations owns organization records, their membership lists and
// the admission policy settings.
package organizations

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"askly/internal/pkg/clock"
	"askly/internal/pkg/errors"
	"askly/internal/pkg/validator"
	"askly/internal/platform/audit"
	"askly/internal/platform/auth"
	"askly/internal/platform/models"
	"askly/internal/platform/repositories"
)

type CreateInput struct {
	Name               string `json:"name"`
	CooldownTime       *int64 `json:"cooldownTime"`
	OneQuestionPerUser *bool  `json:"oneQuestionPerUser"`
}

// SettingsInput carries a partial update; nil fields are left unchanged.
type SettingsInput struct {
	CooldownTime       *int64 `json:"cooldownTime"`
	OneQuestionPerUser *bool  `json:"oneQuestionPerUser"`
}

type Registry struct {
	db        *sql.DB
	users     *repositories.UserRepository
	orgs      *repositories.OrganizationRepository
	audit     *audit.Logger
	clock     clock.Clock
	appDomain string
}

func NewRegistry(db *sql.DB, auditLogger *audit.Logger, c clock.Clock, appDomain string) *Registry {
	return &Registry{
		db:        db,
		users:     repositories.NewUserRepository(db),
		orgs:      repositories.NewOrganizationRepository(db),
		audit:     auditLogger,
		clock:     c,
		appDomain: appDomain,
	}
}

func (r *Registry) Create(ctx context.Context, p *auth.Principal, in CreateInput) (*models.Organization, error) {
	owner, err := r.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup owner: %w", err)
	}
	if owner == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !owner.IsCreator {
		return nil, errors.Forbidden("Only Creator can create organizations")
	}

	name := strings.TrimSpace(in.Name)
	if err := validator.OrganizationName(name); err != nil {
		return nil, errors.Invalid("name", err.Error())
	}

	one := in.OneQuestionPerUser != nil && *in.OneQuestionPerUser
	cooldown, err := resolvePolicy(models.DefaultCooldownTime, in.CooldownTime, one)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now().UnixMilli()
	org := &models.Organization{
		ID:                 "org_" + uuid.NewString(),
		Name:               name,
		OwnerID:            owner.ID,
		UniqueURL:          Slug(name, now),
		CooldownTime:       cooldown,
		OneQuestionPerUser: one,
		Members:            []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = repositories.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.orgs.WithTx(tx).Create(ctx, org); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		if _, err := r.users.WithTx(tx).AddOrganization(ctx, owner.ID, org.ID, now); err != nil {
			return fmt.Errorf("add organization to owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.audit.Log(ctx, org.ID, owner.ID, audit.ActionOrganizationCreated, "organization", org.ID, map[string]interface{}{
		"name":               org.Name,
		"uniqueUrl":          org.UniqueURL,
		"cooldownTime":       org.CooldownTime,
		"oneQuestionPerUser": org.OneQuestionPerUser,
	})
	log.Ctx(ctx).Info().Str("organization_id", org.ID).Str("unique_url", org.UniqueURL).Msg("organization created")

	return org, nil
}

// Join adds the principal to the organization's members and the organization
// to the principal's list. A repeated join reports ErrAlreadyMember.
func (r *Registry) Join(ctx context.Context, p *auth.Principal, uniqueURL string) (*models.Organization, error) {
	uniqueURL = strings.TrimSpace(uniqueURL)
	if uniqueURL == "" {
		return nil, errors.Invalid("uniqueUrl", "Organization URL is required")
	}

	var org *models.Organization
	err := repositories.InTx(ctx, r.db, func(tx *sql.Tx) error {
		orgs := r.orgs.WithTx(tx)

		user, err := r.users.WithTx(tx).GetByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}
		if user == nil {
			return errors.NotFound("user")
		}

		org, err = orgs.GetByURL(ctx, uniqueURL)
		if err != nil {
			return fmt.Errorf("lookup organization: %w", err)
		}
		if org == nil {
			return errors.NotFound("organization")
		}

		if org.HasMember(user.ID) {
			return errors.ErrAlreadyMember
		}

		now := r.clock.Now().UnixMilli()
		added, err := orgs.AddMember(ctx, org.ID, user.ID, now)
		if err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		if !added {
			return errors.ErrAlreadyMember
		}
		if _, err := r.users.WithTx(tx).AddOrganization(ctx, user.ID, org.ID, now); err != nil {
			return fmt.Errorf("add organization: %w", err)
		}

		org.Members = append(org.Members, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.audit.Log(ctx, org.ID, p.ID, audit.ActionMemberJoined, "user", p.ID, nil)

	return org, nil
}

func (r *Registry) GetBySlug(ctx context.Context, uniqueURL string) (*models.Organization, error) {
	org, err := r.orgs.GetByURL(ctx, strings.TrimSpace(uniqueURL))
	if err != nil {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}
	if org == nil {
		return nil, errors.NotFound("organization")
	}
	return org, nil
}

func (r *Registry) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	org, err := r.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}
	if org == nil {
		return nil, errors.NotFound("organization")
	}
	return org, nil
}

func (r *Registry) ListMine(ctx context.Context, p *auth.Principal) ([]*models.Organization, error) {
	orgs, err := r.orgs.ListForUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

func (r *Registry) ToggleMessaging(ctx context.Context, p *auth.Principal, orgID string) (*models.Organization, error) {
	org, err := r.mutate(ctx, p, orgID, "Only the organization owner can toggle message permissions", func(org *models.Organization) error {
		org.AllowMessages = !org.AllowMessages
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.audit.Log(ctx, org.ID, p.ID, audit.ActionMessagingToggled, "organization", org.ID, map[string]interface{}{
		"allowMessages": org.AllowMessages,
	})
	return org, nil
}

// UpdateSettings changes the admission policy. The cooldown and one-per-user
// policies are mutually exclusive.
func (r *Registry) UpdateSettings(ctx context.Context, p *auth.Principal, orgID string, in SettingsInput) (*models.Organization, error) {
	org, err := r.mutate(ctx, p, orgID, "Only the organization owner can change settings", func(org *models.Organization) error {
		if in.OneQuestionPerUser != nil {
			org.OneQuestionPerUser = *in.OneQuestionPerUser
		}
		cooldown, err := resolvePolicy(org.CooldownTime, in.CooldownTime, org.OneQuestionPerUser)
		if err != nil {
			return err
		}
		org.CooldownTime = cooldown
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.audit.Log(ctx, org.ID, p.ID, audit.ActionSettingsUpdated, "organization", org.ID, map[string]interface{}{
		"cooldownTime":       org.CooldownTime,
		"oneQuestionPerUser": org.OneQuestionPerUser,
	})
	return org, nil
}

// mutate loads the organization, checks ownership, applies fn and persists
// the policy fields in one transaction.
func (r *Registry) mutate(ctx context.Context, p *auth.Principal, orgID, forbidden string, fn func(*models.Organization) error) (*models.Organization, error) {
	var org *models.Organization
	err := repositories.InTx(ctx, r.db, func(tx *sql.Tx) error {
		orgs := r.orgs.WithTx(tx)

		var err error
		org, err = orgs.GetByID(ctx, orgID)
		if err != nil {
			return fmt.Errorf("lookup organization: %w", err)
		}
		if org == nil {
			return errors.NotFound("organization")
		}
		if !org.IsOwner(p.ID) {
			return errors.Forbidden(forbidden)
		}

		if err := fn(org); err != nil {
			return err
		}
		org.UpdatedAt = r.clock.Now().UnixMilli()

		if err := orgs.UpdateSettings(ctx, org); err != nil {
			return fmt.Errorf("update organization: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ShareQR renders a PNG QR code pointing at the organization's public page.
func (r *Registry) ShareQR(ctx context.Context, uniqueURL string, size int) ([]byte, error) {
	org, err := r.GetBySlug(ctx, uniqueURL)
	if err != nil {
		return nil, err
	}

	png, err := GenerateQRCode(ShareURL(r.appDomain, org.UniqueURL), size)
	if err != nil {
		if stderrors.Is(err, errInvalidSize) {
			return nil, errors.Invalid("size", err.Error())
		}
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	return png, nil
}

// AuditTrail lists recorded events for the owner of the organization.
func (r *Registry) AuditTrail(ctx context.Context, p *auth.Principal, uniqueURL string, limit int) ([]*audit.AuditLog, error) {
	org, err := r.GetBySlug(ctx, uniqueURL)
	if err != nil {
		return nil, err
	}
	if !org.IsOwner(p.ID) {
		return nil, errors.Forbidden("Only the organization owner can view the audit trail")
	}

	logs, err := r.audit.List(ctx, org.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// resolvePolicy returns the cooldown to store. An absent or zero cooldown keeps
// current (or the default when current is unset). A positive cooldown cannot be
// combined with the one-question-per-user policy.
func resolvePolicy(current int64, requested *int64, oneQuestionPerUser bool) (int64, error) {
	if current <= 0 {
		current = models.DefaultCooldownTime
	}
	if requested == nil {
		return current, nil
	}

	switch v := *requested; {
	case v < 0:
		return 0, errors.Invalid("cooldownTime", "must not be negative")
	case v == 0:
		return current, nil
	case oneQuestionPerUser:
		return 0, errors.Invalid("cooldownTime", "cannot be combined with oneQuestionPerUser")
	default:
		return v, nil
	}
}

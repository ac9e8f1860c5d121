package admission

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"askly/internal/engine/questions"
	"askly/internal/pkg/clock"
	"askly/internal/pkg/errors"
	"askly/internal/pkg/validator"
	"askly/internal/platform/audit"
	"askly/internal/platform/auth"
	"askly/internal/platform/repositories"
)

type SubmitInput struct {
	OrganizationID string `json:"organizationId"`
	Content        string `json:"content"`
	IsAnonymous    bool   `json:"isAnonymous"`
}

// Controller admits questions. The policy check and the append run in one
// immediate transaction, and submissions for the same (user, organization)
// pair are serialized in process, so two concurrent requests cannot both pass
// the check.
type Controller struct {
	db     *sql.DB
	orgs   *repositories.OrganizationRepository
	ledger *questions.Ledger
	audit  *audit.Logger
	clock  clock.Clock
	locks  stripedLock
}

func NewController(db *sql.DB, ledger *questions.Ledger, auditLogger *audit.Logger, c clock.Clock) *Controller {
	return &Controller{
		db:     db,
		orgs:   repositories.NewOrganizationRepository(db),
		ledger: ledger,
		audit:  auditLogger,
		clock:  c,
	}
}

func (c *Controller) Submit(ctx context.Context, p *auth.Principal, in SubmitInput) (*questions.View, error) {
	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		return nil, errors.Invalid("organizationId", "is required")
	}
	if err := validator.QuestionContent(in.Content); err != nil {
		return nil, errors.Invalid("content", err.Error())
	}

	unlock := c.locks.Lock(p.ID + "|" + orgID)
	defer unlock()

	var accepted *questions.Question
	err := repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		org, err := c.orgs.WithTx(tx).GetByID(ctx, orgID)
		if err != nil {
			return fmt.Errorf("lookup organization: %w", err)
		}
		if org == nil {
			return errors.NotFound("organization")
		}

		ledger := c.ledger.WithTx(tx)
		latest, err := ledger.LatestByAuthor(ctx, p.ID, org.ID)
		if err != nil {
			return err
		}

		now := c.clock.Now()
		if err := Evaluate(org, latest, now); err != nil {
			return err
		}

		accepted, err = ledger.Append(ctx, p.ID, org.ID, in.Content, in.IsAnonymous, now)
		return err
	})
	if err != nil {
		if _, _, ok := errors.Classify(err); ok {
			c.logRejection(ctx, p, orgID, err)
		}
		return nil, err
	}

	if accepted.IsAnonymous {
		c.audit.LogAnonymous(accepted.OrganizationID, audit.ActionQuestionAccepted, map[string]interface{}{"anonymous": true})
	} else {
		c.audit.Log(ctx, accepted.OrganizationID, p.ID, audit.ActionQuestionAccepted, "question", accepted.ID, map[string]interface{}{
			"anonymous": false,
		})
	}

	return questions.Project(accepted, p.Username), nil
}

func (c *Controller) logRejection(ctx context.Context, p *auth.Principal, orgID string, err error) {
	event := log.Ctx(ctx).Info().
		Str("user_id", p.ID).
		Str("organization_id", orgID).
		Str("reason", err.Error())

	var cooldown *errors.CooldownError
	if stderrors.As(err, &cooldown) {
		event = event.Int64("retry_after_seconds", cooldown.RemainingSeconds)
	}
	event.Msg("question rejected")
}

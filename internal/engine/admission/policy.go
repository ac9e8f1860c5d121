// Package admission decides whether a question may be accepted for a
// (user, organization) pair and records accepted questions.
package admission

import (
	"time"

	"askly/internal/engine/questions"
	"askly/internal/pkg/errors"
	"askly/internal/platform/models"
)

// Evaluate applies the organization's admission policy. latest is the most
// recent accepted question by the same user in org, or nil. It returns nil
// when the question may be accepted.
//
// The messaging gate is checked first. With OneQuestionPerUser any prior
// question is a permanent rejection and the cooldown is ignored. Otherwise a
// question inside the cooldown window is rejected with the whole seconds left.
func Evaluate(org *models.Organization, latest *questions.Question, now time.Time) error {
	if !org.AllowMessages {
		return errors.ErrMessagingDisabled
	}

	if org.OneQuestionPerUser {
		if latest != nil {
			return errors.ErrAlreadyAsked
		}
		return nil
	}

	if latest == nil {
		return nil
	}

	elapsed := now.UnixMilli() - latest.LastMessageTime
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed < org.CooldownTime {
		return &errors.CooldownError{RemainingSeconds: ceilSeconds(org.CooldownTime - elapsed)}
	}
	return nil
}

func ceilSeconds(ms int64) int64 {
	return (ms + 999) / 1000
}

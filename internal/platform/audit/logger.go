package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"askly/internal/pkg/clock"
	"askly/internal/pkg/parser"
)

const (
	ActionOrganizationCreated = "organization.created"
	ActionMemberJoined        = "organization.member_joined"
	ActionMessagingToggled    = "organization.messaging_toggled"
	ActionSettingsUpdated     = "organization.settings_updated"
	ActionQuestionAccepted    = "question.accepted"
)

type AuditLog struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organizationId"`
	UserID         string                 `json:"userId,omitempty"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resourceType"`
	ResourceID     string                 `json:"resourceId"`
	Metadata       map[string]interface{} `json:"metadata"`
	IPAddress      string                 `json:"ipAddress"`
	UserAgent      string                 `json:"userAgent"`
	CreatedAt      int64                  `json:"createdAt"`
}

const unknown = "unknown"

type requestInfoKey struct{}

type requestInfo struct {
	ip        string
	userAgent string
}

// WithRequest attaches the caller's address and client description to ctx.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{
		ip:        ip,
		userAgent: parser.ParseUserAgent(r.UserAgent()).String(),
	})
}

// Logger writes audit entries in the background. Wait blocks until every
// pending write has finished.
type Logger struct {
	db    *sql.DB
	clock clock.Clock
	wg    sync.WaitGroup
}

func NewLogger(db *sql.DB, c clock.Clock) *Logger {
	return &Logger{db: db, clock: c}
}

// Log records action against the organization along with the caller's
// address and client taken from ctx.
func (l *Logger) Log(ctx context.Context, orgID, userID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	ip, ua := unknown, unknown
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		ip, ua = info.ip, info.userAgent
	}
	l.write(&AuditLog{
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Metadata:       metadata,
		IPAddress:      ip,
		UserAgent:      ua,
	})
}

// LogAnonymous records action against the organization itself with no actor,
// address or client. Entries written this way cannot be correlated with any
// other entry in the trail.
func (l *Logger) LogAnonymous(orgID, action string, metadata map[string]interface{}) {
	l.write(&AuditLog{
		OrganizationID: orgID,
		Action:         action,
		ResourceType:   "organization",
		ResourceID:     orgID,
		Metadata:       metadata,
		IPAddress:      unknown,
		UserAgent:      unknown,
	})
}

func (l *Logger) write(entry *AuditLog) {
	entry.ID = "aud_" + uuid.New().String()
	entry.CreatedAt = l.clock.Now().UnixMilli()
	if entry.Metadata == nil {
		entry.Metadata = map[string]interface{}{}
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.insert(entry); err != nil {
			log.Error().Err(err).Str("action", entry.Action).Str("organization_id", entry.OrganizationID).Msg("failed to write audit log")
		}
	}()
}

func (l *Logger) insert(e *AuditLog) error {
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	_, err = l.db.Exec(`
		INSERT INTO audit_logs (id, organization_id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.OrganizationID, e.UserID, e.Action, e.ResourceType, e.ResourceID, string(metaJSON), e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

func (l *Logger) Wait() {
	l.wg.Wait()
}

// List returns the newest entries for an organization.
func (l *Logger) List(ctx context.Context, orgID string, limit int) ([]*AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, organization_id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs WHERE organization_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*AuditLog{}
	for rows.Next() {
		e := &AuditLog{}
		var metaStr string
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID, &metaStr, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaStr), &e.Metadata); err != nil {
			e.Metadata = map[string]interface{}{}
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

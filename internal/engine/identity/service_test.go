package identity

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"askly/internal/pkg/clock"
	"askly/internal/pkg/errors"
	"askly/internal/platform/auth"
	"askly/internal/platform/config"
	"askly/internal/platform/database/dbtest"
	"askly/internal/platform/models"
	"askly/internal/platform/repositories"
)

func newTestService(t *testing.T) (*Service, *repositories.OrganizationRepository) {
	t.Helper()
	db := dbtest.New(t)
	tokens := auth.NewTokenService(config.JWTConfig{Secret: "s", Issuer: "askly", AccessTokenTTL: time.Hour})
	svc := NewService(db, auth.NewPasswordHasher(4), tokens, clock.NewFake(time.UnixMilli(1_700_000_000_000)))
	return svc, repositories.NewOrganizationRepository(db)
}

func seedOrganization(t *testing.T, svc *Service, orgs *repositories.OrganizationRepository) *models.Organization {
	t.Helper()
	owner, err := svc.Register(context.Background(), RegisterInput{Username: "owner", Email: "owner@example.com", Password: "secret1", IsCreator: true})
	if err != nil {
		t.Fatalf("Failed to register owner: %v", err)
	}
	org := &models.Organization{ID: "org_1", Name: "Acme", OwnerID: owner.User.ID, UniqueURL: "acme-1700000000000", CooldownTime: models.DefaultCooldownTime}
	if err := orgs.Create(context.Background(), org); err != nil {
		t.Fatalf("Failed to create organization: %v", err)
	}
	return org
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid Registration", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: " Alice@Example.com ", Password: "secret1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sess.Token == "" {
			t.Error("Expected token")
		}
		if sess.User.Email != "alice@example.com" {
			t.Errorf("Expected normalized email, got %s", sess.User.Email)
		}
		if sess.User.PasswordHash == "secret1" {
			t.Error("password stored in clear")
		}
		if len(sess.User.Organizations) != 0 {
			t.Errorf("Expected no organizations, got %v", sess.User.Organizations)
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
		_, err := svc.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
		if !stderrors.Is(err, errors.ErrDuplicateUser) {
			t.Errorf("Expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
		if !stderrors.Is(err, errors.ErrDuplicateUser) {
			t.Errorf("Expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("Missing Fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "secret1"})
		var verr *errors.ValidationError
		if !stderrors.As(err, &verr) || verr.Field != "username" {
			t.Errorf("Expected username validation error, got %v", err)
		}
	})

	t.Run("Joins Organization By URL", func(t *testing.T) {
		svc, orgs := newTestService(t)
		org := seedOrganization(t, svc, orgs)

		sess, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1", OrganizationURL: "  ACME-1700000000000 "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sess.User.Organizations) != 1 || sess.User.Organizations[0] != org.ID {
			t.Errorf("Expected organizations [%s], got %v", org.ID, sess.User.Organizations)
		}

		stored, _ := orgs.GetByID(ctx, org.ID)
		if !stored.HasMember(sess.User.ID) {
			t.Errorf("Expected %s in members %v", sess.User.ID, stored.Members)
		}
	})

	t.Run("Unknown Organization URL Persists Nothing", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1", OrganizationURL: "nope"})
		if !stderrors.Is(err, errors.ErrInvalidOrganizationURL) {
			t.Fatalf("Expected ErrInvalidOrganizationURL, got %v", err)
		}
		if _, err := svc.Authenticate(ctx, "bob@example.com", "secret1"); !stderrors.Is(err, errors.ErrInvalidCredentials) {
			t.Errorf("Expected user not to exist, got %v", err)
		}
	})

	t.Run("Creator Ignores Organization URL", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess, err := svc.Register(ctx, RegisterInput{Username: "carol", Email: "carol@example.com", Password: "secret1", IsCreator: true, OrganizationURL: "nope"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sess.User.IsCreator {
			t.Error("Expected creator flag")
		}
	})
}

func TestLoginAndLookup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	reg, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1", IsCreator: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("Valid Credentials", func(t *testing.T) {
		sess, err := svc.Login(ctx, "ALICE@example.com", "secret1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sess.User.ID != reg.User.ID {
			t.Errorf("Expected %s, got %s", reg.User.ID, sess.User.ID)
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		if _, err := svc.Login(ctx, "alice@example.com", "wrong-pass"); !stderrors.Is(err, errors.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Unknown Email", func(t *testing.T) {
		if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !stderrors.Is(err, errors.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Lookup Principal", func(t *testing.T) {
		p, err := svc.LookupPrincipal(ctx, reg.User.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Username != "alice" || !p.IsCreator {
			t.Errorf("unexpected principal: %+v", p)
		}
		if _, err := svc.LookupPrincipal(ctx, "usr_missing"); !stderrors.Is(err, errors.ErrUnauthenticated) {
			t.Errorf("Expected ErrUnauthenticated, got %v", err)
		}
		if _, err := svc.GetByID(ctx, "usr_missing"); !stderrors.Is(err, errors.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

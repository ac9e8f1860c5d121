package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"askly/internal/platform/database/dbtest"
	"askly/internal/platform/models"
)

func TestOrganizationRepository_Mock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrganizationRepository(db)
	ctx := context.Background()
	columns := []string{"id", "name", "owner_id", "unique_url", "allow_messages", "cooldown_time", "one_question_per_user", "created_at", "updated_at"}

	t.Run("Organization Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations o WHERE o.id = ?").
			WithArgs("org_123").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("org_123", "Acme", "usr_1", "acme-1", true, 5000, false, 1000, 1000))
		mock.ExpectQuery("SELECT user_id FROM organization_members").
			WithArgs("org_123").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("usr_1").AddRow("usr_2"))

		org, err := repo.GetByID(ctx, "org_123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if org == nil || org.UniqueURL != "acme-1" || !org.AllowMessages || org.CooldownTime != 5000 {
			t.Fatalf("unexpected organization: %+v", org)
		}
		if len(org.Members) != 2 || org.Members[1] != "usr_2" {
			t.Errorf("Expected members [usr_1 usr_2], got %v", org.Members)
		}
	})

	t.Run("Organization Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations o WHERE o.id = ?").
			WithArgs("org_999").
			WillReturnError(sql.ErrNoRows)

		org, err := repo.GetByID(ctx, "org_999")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if org != nil {
			t.Errorf("Expected nil organization, got %+v", org)
		}
	})

	t.Run("Driver Failure", func(t *testing.T) {
		boom := errors.New("disk I/O error")
		mock.ExpectQuery("SELECT (.+) FROM organizations o WHERE o.unique_url = ?").
			WithArgs("acme-1").
			WillReturnError(boom)

		if _, err := repo.GetByURL(ctx, "acme-1"); !errors.Is(err, boom) {
			t.Errorf("Expected driver error, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRepositories_SQLite(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	orgs := NewOrganizationRepository(db)

	owner := &models.User{ID: "usr_owner", Username: "owner", Email: "owner@example.com", PasswordHash: "x", IsCreator: true, CreatedAt: 1, UpdatedAt: 1}
	member := &models.User{ID: "usr_member", Username: "member", Email: "member@example.com", PasswordHash: "x", CreatedAt: 1, UpdatedAt: 1}
	for _, u := range []*models.User{owner, member} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
	}

	t.Run("Duplicate Email", func(t *testing.T) {
		dup := &models.User{ID: "usr_dup", Username: "other", Email: "owner@example.com", PasswordHash: "x"}
		if err := users.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	first := &models.Organization{ID: "org_b", Name: "Beta", OwnerID: owner.ID, UniqueURL: "beta-2", CooldownTime: 60000, CreatedAt: 2, UpdatedAt: 2}
	second := &models.Organization{ID: "org_a", Name: "Acme", OwnerID: owner.ID, UniqueURL: "acme-1", CooldownTime: 5000, CreatedAt: 3, UpdatedAt: 3}

	err := InTx(ctx, db, func(tx *sql.Tx) error {
		for _, org := range []*models.Organization{first, second} {
			if err := orgs.WithTx(tx).Create(ctx, org); err != nil {
				return err
			}
			if _, err := orgs.WithTx(tx).AddMember(ctx, org.ID, owner.ID, org.CreatedAt); err != nil {
				return err
			}
			if _, err := users.WithTx(tx).AddOrganization(ctx, owner.ID, org.ID, org.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create organizations: %v", err)
	}

	t.Run("Membership Insertion Order", func(t *testing.T) {
		list, err := orgs.ListForUser(ctx, owner.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 2 || list[0].ID != "org_b" || list[1].ID != "org_a" {
			t.Fatalf("Expected [org_b org_a], got %+v", list)
		}

		u, err := users.GetByID(ctx, owner.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(u.Organizations) != 2 || u.Organizations[0] != "org_b" {
			t.Errorf("Expected organizations [org_b org_a], got %v", u.Organizations)
		}
	})

	t.Run("Add Member Twice", func(t *testing.T) {
		added, err := orgs.AddMember(ctx, second.ID, member.ID, 10)
		if err != nil || !added {
			t.Fatalf("Expected first add to succeed, got added=%v err=%v", added, err)
		}
		added, err = orgs.AddMember(ctx, second.ID, member.ID, 11)
		if err != nil || added {
			t.Fatalf("Expected second add to be ignored, got added=%v err=%v", added, err)
		}

		org, err := orgs.GetByID(ctx, second.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(org.Members) != 2 {
			t.Errorf("Expected 2 members, got %v", org.Members)
		}
	})

	t.Run("Slug Lookup Ignores Case", func(t *testing.T) {
		org, err := orgs.GetByURL(ctx, "ACME-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if org == nil || org.ID != "org_a" {
			t.Errorf("Expected org_a, got %+v", org)
		}
	})

	t.Run("Update Settings", func(t *testing.T) {
		second.AllowMessages = true
		second.OneQuestionPerUser = true
		second.UpdatedAt = 20
		if err := orgs.UpdateSettings(ctx, second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		org, _ := orgs.GetByID(ctx, second.ID)
		if !org.AllowMessages || !org.OneQuestionPerUser || org.UpdatedAt != 20 {
			t.Errorf("settings not persisted: %+v", org)
		}
	})
}

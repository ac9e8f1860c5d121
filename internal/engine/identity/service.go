// Package identity registers and authenticates users.
package identity

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
	"askly/internal/platform/auth"
	"askly/internal/platform/models"
	"askly/internal/platform/repositories"
)

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	IsCreator       bool   `json:"isCreator"`
	OrganizationURL string `json:"organizationUrl"`
}

// Session is returned by Register and Login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service struct {
	db     *sql.DB
	users  *repositories.UserRepository
	orgs   *repositories.OrganizationRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	clock  clock.Clock
}

func NewService(db *sql.DB, hasher *auth.PasswordHasher, tokens *auth.TokenService, c clock.Clock) *Service {
	return &Service{
		db:     db,
		users:  repositories.NewUserRepository(db),
		orgs:   repositories.NewOrganizationRepository(db),
		hasher: hasher,
		tokens: tokens,
		clock:  c,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if err := validator.Username(in.Username); err != nil {
		return nil, errors.Invalid("username", err.Error())
	}
	if err := validator.Email(in.Email); err != nil {
		return nil, errors.Invalid("email", err.Error())
	}
	if err := validator.Password(in.Password); err != nil {
		return nil, errors.Invalid("password", err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if existing == nil {
		existing, err = s.users.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("lookup user by username: %w", err)
		}
	}
	if existing != nil {
		return nil, errors.ErrDuplicateUser
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now().UnixMilli()
	user := &models.User{
		ID:            "usr_" + uuid.NewString(),
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  hash,
		IsCreator:     in.IsCreator,
		Organizations: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	slug := strings.TrimSpace(in.OrganizationURL)
	err = repositories.InTx(ctx, s.db, func(tx *sql.Tx) error {
		var org *models.Organization
		if !in.IsCreator && slug != "" {
			org, err = s.orgs.WithTx(tx).GetByURL(ctx, slug)
			if err != nil {
				return fmt.Errorf("lookup organization: %w", err)
			}
			if org == nil {
				return errors.ErrInvalidOrganizationURL
			}
		}

		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			if stderrors.Is(err, repositories.ErrDuplicate) {
				return errors.ErrDuplicateUser
			}
			return fmt.Errorf("create user: %w", err)
		}

		if org != nil {
			if _, err := s.orgs.WithTx(tx).AddMember(ctx, org.ID, user.ID, now); err != nil {
				return fmt.Errorf("add member: %w", err)
			}
			if _, err := s.users.WithTx(tx).AddOrganization(ctx, user.ID, org.ID, now); err != nil {
				return fmt.Errorf("add organization: %w", err)
			}
			user.Organizations = append(user.Organizations, org.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID).Bool("creator", user.IsCreator).Msg("user registered")

	return s.session(user)
}

// Authenticate verifies the email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if user == nil || !s.hasher.Check(password, user.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.Invalid("", "email and password are required")
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, errors.NotFound("user")
	}
	return user, nil
}

// LookupPrincipal loads the current state of the user named by a validated token.
func (s *Service) LookupPrincipal(ctx context.Context, userID string) (*auth.Principal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}
	return &auth.Principal{ID: user.ID, Username: user.Username, IsCreator: user.IsCreator}, nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.GenerateAccessToken(user.ID, user.IsCreator)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

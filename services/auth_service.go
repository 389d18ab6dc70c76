package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
	"github.com/akinalp/shopapi/pkg/crypto"
	"github.com/akinalp/shopapi/pkg/logger"
	"github.com/akinalp/shopapi/repository"
)

// AuthService is the account API the handlers depend on.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
}

var (
	errEmailTaken    = fmt.Errorf("%w: email already in use", pkg.ErrConflict)
	errUsernameTaken = fmt.Errorf("%w: username already taken", pkg.ErrConflict)
)

type authService struct {
	userRepo repository.UserRepository
	hasher   *crypto.PasswordHasher
	tokens   TokenService
	log      *zap.Logger
}

// NewAuthService is the constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher *crypto.PasswordHasher,
	tokens TokenService,
) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      logger.Get().Named("auth"),
	}
}

// Register creates an account and returns it with a fresh token.
//
// The email/username lookups below are only a fast path for the common
// duplicate case. Two concurrent registrations can both pass them; the UNIQUE
// constraints then let exactly one insert through and the other comes back
// from the repository as ErrConflict.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrValidation, err.Error())
	}

	if err := s.checkAvailable(ctx, "", req.Email, req.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           newUserID(),
		Name:         req.Name,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Login checks the credentials. Unknown account and wrong password produce the
// same ErrInvalidCredentials so callers cannot tell which accounts exist.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrValidation, err.Error())
	}

	var (
		user *models.User
		err  error
	)
	if req.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, req.Email)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, req.Username)
	}
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, pkg.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.log.Error("stored password hash is unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, pkg.ErrInvalidCredentials
	}
	if !ok {
		return nil, pkg.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies any subset of name, email, username and password.
// A new password is hashed again with the current work factor.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrValidation, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var email, username string
	if req.Email != nil && *req.Email != user.Email {
		email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		username = *req.Username
	}
	if err := s.checkAvailable(ctx, user.ID, email, username); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("profile updated", zap.String("user_id", user.ID), zap.Bool("password_changed", req.Password != nil))
	return user, nil
}

// checkAvailable reports a conflict when email or username already belongs to
// an account other than selfID. Empty values are skipped.
func (s *authService) checkAvailable(ctx context.Context, selfID, email, username string) error {
	if email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return errEmailTaken
		}
		if err != nil && !errors.Is(err, pkg.ErrNotFound) {
			return err
		}
	}
	if username != "" {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err == nil && existing.ID != selfID {
			return errUsernameTaken
		}
		if err != nil && !errors.Is(err, pkg.ErrNotFound) {
			return err
		}
	}
	return nil
}

// newUserID returns a random UUID in 32-hex form.
func newUserID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

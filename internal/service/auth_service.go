package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogsupport/internal/config"
	"blogsupport/internal/models"
	"blogsupport/internal/repository"
	"blogsupport/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByName(ctx context.Context, name string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type AuthService struct {
	users  UserStore
	cfg    config.SecurityConfig
	params security.Argon2Params
	log    zerolog.Logger
}

func NewAuthService(users UserStore, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		cfg:    cfg,
		params: security.ParamsWithCost(cfg.PasswordTime, cfg.PasswordMemory),
		log:    log,
	}
}

type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) SignIn(ctx context.Context, name, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return AuthResult{}, ValidationError(MsgCredentialsMissing, nil)
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, UnauthorizedError(MsgInvalidCredentials, ErrInvalidCredentials)
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.Password)
	if err != nil {
		s.log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("stored password hash unreadable")
	}
	if err != nil || !ok {
		return AuthResult{}, UnauthorizedError(MsgInvalidCredentials, ErrInvalidCredentials)
	}

	return s.issue(user)
}

func (s *AuthService) SignUp(ctx context.Context, name, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return AuthResult{}, ValidationError(MsgCredentialsMissing, nil)
	}

	hash, err := security.HashPasswordWithParams(password, s.params)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.Create(ctx, models.NewUser(name, hash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return AuthResult{}, ValidationError(MsgNameTaken, err)
		}
		return AuthResult{}, err
	}

	s.log.Info().Str("user", user.ID.Hex()).Msg("account created")
	return s.issue(user)
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := security.GenerateSessionToken(s.cfg.JWTSecret, user.ID.Hex(), user.Name, s.cfg.TokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	user.Password = ""
	return AuthResult{Token: token, User: user}, nil
}

// Resolve maps a session token to its account. Any failure means the token
// does not authenticate anyone.
func (s *AuthService) Resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := security.ParseSessionToken(token, s.cfg.JWTSecret)
	if err != nil {
		return models.User{}, err
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: malformed subject", security.ErrInvalidToken)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("resolve account: %w", err)
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

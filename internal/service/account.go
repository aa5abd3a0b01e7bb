package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/hash"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/validation"
)

type AccountService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events EventPublisher
}

type LoginResult struct {
	User   *models.User
	Tokens *tokens.Pair
}

// RoleFor derives the role a new account gets from its name.
func RoleFor(name string) models.Role {
	if strings.EqualFold(strings.TrimSpace(name), string(models.RoleAdmin)) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (s *AccountService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "account.signup")

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}

	exists, err := s.Repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	if err := validation.ValidateSignup(validation.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: pwHash,
		Role:     RoleFor(req.Name),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	publish(ctx, s.Events, events.UserTopic, user.ID, map[string]any{
		"type":    events.UserRegistered,
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}
	if err := validation.ValidateLogin(validation.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return nil, err
	}

	user, err := s.Repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	if !hash.CheckPassword(user.Password, req.Password) {
		return nil, ErrInvalidPassword
	}

	pair, err := s.Tokens.IssuePair(tokens.Identity{Name: user.Name, ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	publish(ctx, s.Events, events.UserTopic, user.ID, map[string]any{
		"type":    events.UserLoggedIn,
		"user_id": user.ID,
	})
	return &LoginResult{User: user, Tokens: pair}, nil
}

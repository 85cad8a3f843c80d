package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campus-records/internal/model"
)

type credentialStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

type tokenIssuer interface {
	Issue(subject string, roles []string) (string, error)
}

// AuthService verifies credentials and hands out bearer tokens. The
// three login failures keep distinct errors; collapsing them into one
// uniform message is a hardening step this API deliberately skips.
type AuthService struct {
	users  credentialStore
	tokens tokenIssuer
}

func NewAuthService(users credentialStore, tokens tokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (model.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResponse{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.LoginResponse{}, model.ErrAccountDisabled
	}

	roles := user.RoleNames()
	token, err := s.tokens.Issue(user.Username, roles)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return model.LoginResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Fullname: user.Fullname,
		Roles:    roles,
	}, nil
}

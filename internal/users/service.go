package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"signing-backend/internal/shared/telemetry"
	"signing-backend/internal/shared/util"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the identity returned by the OAuth provider so
// requester names survive on signature requests and the /me profile.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	email, err := util.NormalizeEmail(user.Email)
	if err != nil {
		return User{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	user.Email = email
	user.FullName = strings.TrimSpace(user.FullName)

	saved, err := s.Repo.Upsert(ctx, user)
	if err != nil {
		return User{}, err
	}
	telemetry.Info("user.upserted", map[string]any{"user_id": saved.ID})
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxNameLength = 200

// Service contains business logic for projects and membership.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create makes a new project with the caller as its admin.
func (s *Service) Create(ctx context.Context, userID, name string) (Project, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(userID) == "" {
		return Project{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if name == "" {
		return Project{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return Project{}, fmt.Errorf("%w: name is too long", ErrInvalidInput)
	}

	now := s.now()
	project := Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: userID,
		CreatedAt: now,
	}
	owner := Member{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      MemberRoleAdmin,
		AddedAt:   now,
	}
	if err := s.Repo.Create(ctx, project, owner); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Get returns a project the caller belongs to.
func (s *Service) Get(ctx context.Context, userID, projectID string) (Project, error) {
	if err := s.RequireMember(ctx, projectID, userID); err != nil {
		return Project{}, err
	}
	return s.Repo.GetByID(ctx, projectID)
}

// Lookup returns a project without a membership check. Callers must have
// authorized the request some other way, e.g. with a signing token.
func (s *Service) Lookup(ctx context.Context, projectID string) (Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return Project{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, projectID)
}

// ListForUser returns every project the user is a member of.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListForUser(ctx, userID)
}

// AddMember grants userID access to the project. Only admins may add members.
func (s *Service) AddMember(ctx context.Context, actorID, projectID, userID string, role MemberRole) (Member, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Member{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if role == "" {
		role = MemberRoleMember
	}
	if !role.Valid() {
		return Member{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	actor, err := s.member(ctx, projectID, actorID)
	if err != nil {
		return Member{}, err
	}
	if actor.Role != MemberRoleAdmin {
		return Member{}, ErrForbidden
	}

	member := Member{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		AddedAt:   s.now(),
	}
	if err := s.Repo.AddMember(ctx, member); err != nil {
		return Member{}, err
	}
	return member, nil
}

// ListMembers returns the members of a project the caller belongs to.
func (s *Service) ListMembers(ctx context.Context, userID, projectID string) ([]Member, error) {
	if err := s.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListMembers(ctx, projectID)
}

// RequireMember returns ErrNotFound for unknown projects and ErrForbidden
// when the user is not a member.
func (s *Service) RequireMember(ctx context.Context, projectID, userID string) error {
	_, err := s.member(ctx, projectID, userID)
	return err
}

func (s *Service) member(ctx context.Context, projectID, userID string) (Member, error) {
	if strings.TrimSpace(projectID) == "" {
		return Member{}, ErrNotFound
	}
	if strings.TrimSpace(userID) == "" {
		return Member{}, ErrForbidden
	}
	if _, err := s.Repo.GetByID(ctx, projectID); err != nil {
		return Member{}, err
	}
	member, err := s.Repo.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Member{}, ErrForbidden
		}
		return Member{}, err
	}
	return member, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

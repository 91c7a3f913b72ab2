package projects

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	projects map[string]Project
	members  map[string]map[string]Member // projectID -> userID -> member
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects: make(map[string]Project),
		members:  make(map[string]map[string]Member),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, project Project, owner Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ID] = project
	r.members[project.ID] = map[string]Member{owner.UserID: owner}
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, projectID string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.projects[projectID]
	if !ok {
		return Project{}, ErrNotFound
	}
	return project, nil
}

// ListForUser returns the user's projects, newest first.
func (r *MemoryRepo) ListForUser(ctx context.Context, userID string) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Project, 0)
	for projectID, members := range r.members {
		if _, ok := members[userID]; ok {
			out = append(out, r.projects[projectID])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) AddMember(ctx context.Context, member Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[member.ProjectID]
	if !ok {
		return ErrNotFound
	}
	if existing, ok := members[member.UserID]; ok {
		member.AddedAt = existing.AddedAt
	}
	members[member.UserID] = member
	return nil
}

func (r *MemoryRepo) GetMember(ctx context.Context, projectID, userID string) (Member, error) {
	if err := ctx.Err(); err != nil {
		return Member{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[projectID][userID]
	if !ok {
		return Member{}, ErrNotFound
	}
	return member, nil
}

func (r *MemoryRepo) ListMembers(ctx context.Context, projectID string) ([]Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.members[projectID]))
	for _, member := range r.members[projectID] {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

package projects

import "context"

// Repo persists projects and their members.
type Repo interface {
	// Create stores the project together with its first member.
	Create(ctx context.Context, project Project, owner Member) error
	GetByID(ctx context.Context, projectID string) (Project, error)
	ListForUser(ctx context.Context, userID string) ([]Project, error)
	// AddMember inserts or updates the member's role.
	AddMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, projectID, userID string) (Member, error)
	ListMembers(ctx context.Context, projectID string) ([]Member, error)
}

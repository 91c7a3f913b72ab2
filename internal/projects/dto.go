package projects

import "time"

type createProjectRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// ProjectResponse is the outward-facing representation of a project.
type ProjectResponse struct {
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemberResponse is the outward-facing representation of a member.
type MemberResponse struct {
	UserID  string    `json:"userId"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"addedAt"`
}

func toResponse(project Project) ProjectResponse {
	return ProjectResponse{
		ProjectID: project.ID,
		Name:      project.Name,
		CreatedBy: project.CreatedBy,
		CreatedAt: project.CreatedAt,
	}
}

func toMemberResponse(member Member) MemberResponse {
	return MemberResponse{
		UserID:  member.UserID,
		Role:    string(member.Role),
		AddedAt: member.AddedAt,
	}
}

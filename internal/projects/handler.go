package projects

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches project routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/projects", h.create)
	rg.GET("/projects", h.list)
	rg.GET("/projects/:projectId", h.get)
	rg.GET("/projects/:projectId/members", h.listMembers)
	rg.POST("/projects/:projectId/members", h.addMember)
}

func (h *Handler) create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	project, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Name)
	if err != nil {
		WriteError(c, err, "failed to create project")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(project))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.ListForUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		WriteError(c, err, "failed to list projects")
		return
	}
	resp := make([]ProjectResponse, 0, len(items))
	for _, project := range items {
		resp = append(resp, toResponse(project))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": resp})
}

func (h *Handler) get(c *gin.Context) {
	project, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("projectId"))
	if err != nil {
		WriteError(c, err, "failed to fetch project")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(project))
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.Svc.ListMembers(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("projectId"))
	if err != nil {
		WriteError(c, err, "failed to list members")
		return
	}
	resp := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, toMemberResponse(member))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": resp})
}

func (h *Handler) addMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	member, err := h.Svc.AddMember(
		c.Request.Context(),
		middleware.UserIDFromContext(c),
		c.Param("projectId"),
		req.UserID,
		MemberRole(req.Role),
	)
	if err != nil {
		WriteError(c, err, "failed to add member")
		return
	}
	respond.JSON(c, http.StatusCreated, toMemberResponse(member))
}

// WriteError maps project errors onto the standard error envelope. Other
// packages use it for the membership checks they delegate here.
func WriteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "project not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not a member of this project", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

package api

import (
	"net/http"

	"user-service/internal/middleware"
	"user-service/internal/org"
	"user-service/internal/session"
	"user-service/internal/team"
	"user-service/internal/user"

	"github.com/gin-gonic/gin"
)

// Handler serves the authenticated user API. Every route assumes the
// auth middleware already attached a signed-in user to the context.
type Handler struct {
	userService  *user.Service
	orgService   org.Service
	teamService  team.Service
	sessionStore session.Store
}

func NewHandler(
	userService *user.Service,
	orgService org.Service,
	teamService team.Service,
	sessionStore session.Store,
) *Handler {
	return &Handler{
		userService:  userService,
		orgService:   orgService,
		teamService:  teamService,
		sessionStore: sessionStore,
	}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/user", h.getSignedInUser)
	api.PUT("/user", h.updateUser)
	api.PUT("/user/password", h.changePassword)
	api.POST("/user/using/:orgID", h.setUsingOrg)
	api.GET("/user/teams", h.getUserTeams)
	api.GET("/user/orgs", h.getUserOrgs)

	api.GET("/users", h.searchUsers)
	api.POST("/users", h.createUser)
	api.DELETE("/users/:id", h.deleteUser)
	api.PATCH("/users/:id/disable", h.disableUser)
	api.POST("/users/batch-disable", h.batchDisableUsers)
	api.PUT("/users/:id/permissions", h.updatePermissions)
}

func signedInUser(c *gin.Context) (*user.SignedInUser, bool) {
	sgn, ok := middleware.SignedInUserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return sgn, ok
}

func requireServerAdmin(c *gin.Context) (*user.SignedInUser, bool) {
	sgn, ok := signedInUser(c)
	if !ok {
		return nil, false
	}
	if !sgn.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return nil, false
	}
	return sgn, true
}

func (h *Handler) getSignedInUser(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  sgn.UserID,
		"org_id":   sgn.OrgID,
		"org_name": sgn.OrgName,
		"org_role": sgn.OrgRole,
		"login":    sgn.Login,
		"email":    sgn.Email,
		"name":     sgn.Name,
		"is_admin": sgn.IsAdmin,
		"teams":    sgn.Teams,
	})
}

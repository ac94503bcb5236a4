package api

import (
	"errors"
	"net/http"
	"strconv"

	"user-service/internal/org"
	"user-service/internal/user"

	"github.com/gin-gonic/gin"
)

func (h *Handler) searchUsers(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}
	if !sgn.HasRole(org.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.userService.Search(c.Request.Context(), &user.SearchUsersQuery{
		Query: c.Query("query"),
		OrgID: sgn.OrgID,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	users := make([]gin.H, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, gin.H{
			"id":           u.ID,
			"uid":          u.UID,
			"login":        u.Login,
			"email":        u.Email,
			"name":         u.Name,
			"is_admin":     u.IsAdmin,
			"is_disabled":  u.IsDisabled,
			"last_seen_at": u.LastSeenAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_count": result.TotalCount,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"users":       users,
	})
}

type createUserRequest struct {
	Login    string `json:"login" binding:"required"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
	OrgID    int64  `json:"org_id"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *Handler) createUser(c *gin.Context) {
	if _, ok := requireServerAdmin(c); !ok {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	usr, err := h.userService.Create(c.Request.Context(), &user.CreateUserCommand{
		Login:          req.Login,
		Email:          req.Email,
		Name:           req.Name,
		Password:       req.Password,
		OrgID:          req.OrgID,
		IsAdmin:        req.IsAdmin,
		DefaultOrgRole: req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    usr.ID,
		"uid":   usr.UID,
		"login": usr.Login,
	})
}

func (h *Handler) deleteUser(c *gin.Context) {
	if _, ok := requireServerAdmin(c); !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	err = h.userService.Delete(c.Request.Context(), &user.DeleteUserCommand{UserID: userID})
	if errors.Is(err, user.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	c.Status(http.StatusNoContent)
}

type disableUserRequest struct {
	IsDisabled bool `json:"is_disabled"`
}

func (h *Handler) disableUser(c *gin.Context) {
	if _, ok := requireServerAdmin(c); !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req disableUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err = h.userService.Disable(c.Request.Context(), &user.DisableUserCommand{
		UserID:     userID,
		IsDisabled: req.IsDisabled,
	})
	if errors.Is(err, user.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disable user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type batchDisableRequest struct {
	UserIDs    []int64 `json:"user_ids" binding:"required"`
	IsDisabled bool    `json:"is_disabled"`
}

func (h *Handler) batchDisableUsers(c *gin.Context) {
	if _, ok := requireServerAdmin(c); !ok {
		return
	}

	var req batchDisableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.userService.BatchDisableUsers(c.Request.Context(), &user.BatchDisableUsersCommand{
		UserIDs:    req.UserIDs,
		IsDisabled: req.IsDisabled,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disable users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type updatePermissionsRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *Handler) updatePermissions(c *gin.Context) {
	if _, ok := requireServerAdmin(c); !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req updatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err = h.userService.UpdatePermissions(c.Request.Context(), userID, req.IsAdmin)
	if errors.Is(err, user.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

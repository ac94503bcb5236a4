package api

import (
	"errors"
	"net/http"
	"strconv"

	"user-service/internal/org"
	"user-service/internal/session"
	"user-service/internal/team"
	"user-service/internal/user"

	"github.com/gin-gonic/gin"
)

type updateUserRequest struct {
	Login string `json:"login"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) updateUser(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.userService.Update(c.Request.Context(), &user.UpdateUserCommand{
		UserID: sgn.UserID,
		Login:  req.Login,
		Email:  req.Email,
		Name:   req.Name,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *Handler) changePassword(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.userService.Authenticate(c.Request.Context(), sgn.Login, req.OldPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), &user.ChangeUserPasswordCommand{
		UserID:      sgn.UserID,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// setUsingOrg switches the active org for both the user record and the
// current session, so the next request resolves in the new org context.
func (h *Handler) setUsingOrg(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}

	orgID, err := strconv.ParseInt(c.Param("orgID"), 10, 64)
	if err != nil || orgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid org id"})
		return
	}

	err = h.userService.SetUsingOrg(c.Request.Context(), &user.SetUsingOrgCommand{
		UserID: sgn.UserID,
		OrgID:  orgID,
	})
	if errors.Is(err, user.ErrUserNotMemberOfOrg) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to switch org"})
		return
	}

	if cookie, cerr := c.Request.Cookie(session.CookieName); cerr == nil && cookie.Value != "" {
		sess, serr := h.sessionStore.Get(c.Request.Context(), cookie.Value)
		if serr == nil && sess != nil {
			sess.OrgID = orgID
			if uerr := h.sessionStore.Update(c.Request.Context(), *sess); uerr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to switch org"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "active org changed"})
}

func (h *Handler) getUserTeams(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}

	teams, err := h.teamService.GetTeamsByUser(c.Request.Context(), &team.GetTeamsByUserQuery{
		OrgID:       sgn.OrgID,
		UserID:      sgn.UserID,
		Permissions: sgn.Permissions,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load teams"})
		return
	}

	out := make([]gin.H, 0, len(teams))
	for _, t := range teams {
		out = append(out, gin.H{
			"id":    t.ID,
			"name":  t.Name,
			"email": t.Email,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"team_ids": sgn.Teams,
		"teams":    out,
	})
}

func (h *Handler) getUserOrgs(c *gin.Context) {
	sgn, ok := signedInUser(c)
	if !ok {
		return
	}

	orgs, err := h.orgService.GetUserOrgList(c.Request.Context(), &org.GetUserOrgListQuery{
		UserID: sgn.UserID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orgs"})
		return
	}

	out := make([]gin.H, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, gin.H{
			"org_id": o.OrgID,
			"name":   o.Name,
			"role":   o.Role,
		})
	}

	c.JSON(http.StatusOK, out)
}

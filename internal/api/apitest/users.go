package apitest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

func (a *Authority) listUsers(c *gin.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.User, 0, len(a.users))
	for _, u := range a.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	c.JSON(http.StatusOK, out)
}

func (a *Authority) createUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, u := range a.users {
		if u.Name == req.Name {
			detail(c, http.StatusBadRequest, "Username already taken")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	// The first account ever registered becomes the active administrator
	// with every right. Everyone after that waits for activation.
	first := len(a.users) == 0
	u := model.User{
		ID:        a.id(),
		Name:      req.Name,
		Email:     req.Email,
		IsAdmin:   first,
		IsActive:  first,
		CanView:   first,
		CanEdit:   first,
		CanDelete: first,
		CreatedAt: a.now(),
	}
	a.users[u.ID] = &userRecord{User: u, passwordHash: hash}
	c.JSON(http.StatusOK, u)
}

func (a *Authority) login(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var found *userRecord
	for _, u := range a.users {
		if u.Name == req.Name {
			found = u
			break
		}
	}
	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(req.Password)) != nil {
		detail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !found.IsActive {
		detail(c, http.StatusForbidden, "Account not activated by admin")
		return
	}
	c.JSON(http.StatusOK, found.User)
}

func (a *Authority) updateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[id]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}

	if v, ok := patch["name"]; ok {
		u.Name, _ = v.(string)
	}
	if v, ok := patch["email"]; ok {
		u.Email, _ = v.(string)
	}
	if v, ok := patch["is_admin"]; ok {
		u.IsAdmin, _ = v.(bool)
	}
	if v, ok := patch["is_active"]; ok {
		u.IsActive, _ = v.(bool)
	}
	if v, ok := patch["can_view"]; ok {
		u.CanView, _ = v.(bool)
	}
	if v, ok := patch["can_edit"]; ok {
		u.CanEdit, _ = v.(bool)
	}
	if v, ok := patch["can_delete"]; ok {
		u.CanDelete, _ = v.(bool)
	}
	c.JSON(http.StatusOK, u.User)
}

func (a *Authority) changePassword(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[id]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}
	u.passwordHash = hash
	u.MustChangePassword = false
	c.JSON(http.StatusOK, u.User)
}

func (a *Authority) resetPassword(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[id]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}
	u.passwordHash = hash
	u.MustChangePassword = true
	c.JSON(http.StatusOK, u.User)
}

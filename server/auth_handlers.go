package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changeRoleRequest struct {
	Role entities.Role `json:"role" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	var result *interfaces.AuthResult
	err := h.run(c, func(s *application.Services) error {
		var err error
		result, err = s.Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to register")
		return
	}
	respondOK(c, http.StatusCreated, "User registered successfully", result)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	var result *interfaces.AuthResult
	err := h.run(c, func(s *application.Services) error {
		var err error
		result, err = s.Auth.Login(c.Request.Context(), req.Email, req.Password)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}
	respondOK(c, http.StatusOK, "Login successful", result)
}

func (h *Handler) Logout(c *gin.Context) {
	claims := currentClaims(c)
	err := h.run(c, func(s *application.Services) error {
		return s.Auth.Logout(c.Request.Context(), claims)
	})
	if err != nil {
		respondError(c, err, "Failed to logout")
		return
	}
	respondOK(c, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) Me(c *gin.Context) {
	var user *entities.User
	err := h.run(c, func(s *application.Services) error {
		var err error
		user, err = s.Auth.GetUser(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}
	respondOK(c, http.StatusOK, "Profile retrieved", user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	limit := queryInt(c, "limit", defaultListLimit)
	offset := queryInt(c, "offset", 0)

	var (
		users []*entities.User
		total int64
	)
	err := h.run(c, func(s *application.Services) error {
		var err error
		if users, err = s.UoW.UserRepository().List(c.Request.Context(), limit, offset); err != nil {
			return err
		}
		total, err = s.UoW.UserRepository().Count(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	respondOK(c, http.StatusOK, "Users retrieved", gin.H{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) ChangeUserRole(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}
	var req changeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	var user *entities.User
	err := h.run(c, func(s *application.Services) error {
		var err error
		user, err = s.Auth.ChangeRole(c.Request.Context(), userID, req.Role)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to change role")
		return
	}
	respondOK(c, http.StatusOK, "Role updated", user)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfoliocms/internal/service"
)

// InitAdmin 确保配置中的管理员存在
func (a *API) InitAdmin(c *gin.Context) {
	ctx := c.Request.Context()
	admin, created, err := a.deps.Auth.EnsureAdminExists(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "init admin failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to initialize admin user")
		return
	}
	if created {
		a.deps.Metrics.IncrementAdminsCreated()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin user initialized successfully",
		"admin":   userPayload(admin.ID, admin.Email, admin.Name),
	})
}

// SeedAdmin 是 InitAdmin 的旧入口，返回信息区分已存在与新建
func (a *API) SeedAdmin(c *gin.Context) {
	ctx := c.Request.Context()
	admin, created, err := a.deps.Auth.EnsureAdminExists(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "seed admin failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to seed admin user")
		return
	}

	message := "Admin user already exists"
	if created {
		a.deps.Metrics.IncrementAdminsCreated()
		message = "Admin user created successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"admin":   userPayload(admin.ID, admin.Email, admin.Name),
	})
}

type resetRequest struct {
	Token string `json:"token"`
}

// ResetAdmin 校验重置令牌后清空用户表并重建管理员
func (a *API) ResetAdmin(c *gin.Context) {
	var req resetRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	ctx := c.Request.Context()
	user, err := a.deps.Auth.ResetAdmin(ctx, req.Token)
	if err != nil {
		if errors.Is(err, service.ErrResetUnauthorized) {
			a.log.WarnContext(ctx, "admin reset rejected", "ip", c.ClientIP(), "request_id", c.GetString(requestIDKey))
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		a.log.ErrorContext(ctx, "admin reset failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to reset admin account")
		return
	}
	a.deps.Metrics.IncrementAdminsCreated()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Admin account reset successfully",
		"user":    userPayload(user.ID, user.Email, user.Name),
	})
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CreateUser 由已登录管理员创建额外账号
func (a *API) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	ctx := c.Request.Context()
	user, err := a.deps.Auth.CreateUser(ctx, req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondError(c, http.StatusBadRequest, "Email, password, and name are required")
		return
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusBadRequest, "User with this email already exists")
		return
	case err != nil:
		a.log.ErrorContext(ctx, "create user failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    userPayload(user.ID, user.Email, user.Name),
	})
}

// Stats 返回后台首页的计数
func (a *API) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := a.deps.Dashboard.Stats(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "dashboard stats failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

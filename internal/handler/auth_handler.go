package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/mssola/useragent"
	"github.com/portfoliocms/internal/service"
)

const sessionMaxAge = 30 * 24 * 60 * 60

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login 校验邮箱与密码，成功后写入会话并返回用户信息与 Bearer 令牌
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()

	// 登录前确保管理员存在，失败只记录日志
	if _, created, err := a.deps.Auth.EnsureAdminExists(ctx); err != nil {
		a.log.WarnContext(ctx, "ensure admin before login failed", "error", err)
	} else if created {
		a.deps.Metrics.IncrementAdminsCreated()
	}

	ua := useragent.New(c.Request.UserAgent())
	browser, _ := ua.Browser()

	user, err := a.deps.Auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		a.deps.Metrics.ObserveLogin(false)
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.log.InfoContext(ctx, "login rejected",
				"request_id", c.GetString(requestIDKey),
				"browser", browser,
				"os", ua.OS(),
				"ip", c.ClientIP(),
			)
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		a.log.ErrorContext(ctx, "login failed", "request_id", c.GetString(requestIDKey), "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionEmail, user.Email)
	session.Set(sessionName, user.Name)
	session.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   a.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	if err := session.Save(); err != nil {
		a.log.ErrorContext(ctx, "save session failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	payload := gin.H{"user": userPayload(user.ID, user.Email, user.Name)}
	if a.deps.Tokens != nil {
		raw, err := a.deps.Tokens.Generate(user.ID, user.Email, user.Name)
		if err != nil {
			a.log.ErrorContext(ctx, "issue token failed", "error", err)
			respondError(c, http.StatusInternalServerError, "Failed to log in")
			return
		}
		payload["token"] = raw
	}

	a.deps.Metrics.ObserveLogin(true)
	a.log.InfoContext(ctx, "login succeeded",
		"request_id", c.GetString(requestIDKey),
		"user_id", user.ID,
		"browser", browser,
		"os", ua.OS(),
		"mobile", ua.Mobile(),
	)
	c.JSON(http.StatusOK, payload)
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true, Secure: a.deps.SecureCookies})
	if err := session.Save(); err != nil {
		a.log.WarnContext(c.Request.Context(), "clear session failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session 返回当前登录用户
func (a *API) Session(c *gin.Context) {
	user, ok := c.Get(currentUserKey)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u := user.(currentUser)
	c.JSON(http.StatusOK, gin.H{"user": userPayload(u.ID, u.Email, u.Name)})
}

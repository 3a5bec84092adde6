package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"

	sessionUserID = "user_id"
	sessionEmail  = "email"
	sessionName   = "name"

	currentUserKey = "current_user"
)

// RequestLogger 为每个请求分配 X-Request-ID 并在结束时输出一条访问日志
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()

		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("rid", rid),
			slog.String("ip", c.ClientIP()),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ua", c.Request.UserAgent()),
		)
	}
}

// currentUser 是通过认证的请求携带的身份
type currentUser struct {
	ID    string
	Email string
	Name  string
}

// AuthRequired 接受会话 Cookie 或 Authorization: Bearer 令牌，并确认对应用户仍存在。
// 未认证时浏览器请求重定向到登录页，API 请求返回 401。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := a.identify(c); ok {
			active, err := a.verify(c, user)
			if err != nil {
				a.log.ErrorContext(c.Request.Context(), "verify session user failed", "rid", c.GetString(requestIDKey), "error", err)
				respondError(c, http.StatusInternalServerError, "Failed to verify session")
				c.Abort()
				return
			}
			if active {
				c.Set(currentUserKey, user)
				c.Next()
				return
			}
		}

		if wantsHTML(c) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

func (a *API) identify(c *gin.Context) (currentUser, bool) {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionUserID).(string); ok && id != "" {
		email, _ := session.Get(sessionEmail).(string)
		name, _ := session.Get(sessionName).(string)
		return currentUser{ID: id, Email: email, Name: name}, true
	}

	if a.deps.Tokens == nil {
		return currentUser{}, false
	}
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return currentUser{}, false
	}
	claims, err := a.deps.Tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return currentUser{}, false
	}
	return currentUser{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, true
}

// verify 拒绝已删除用户的会话与令牌，并清掉失效的会话 Cookie
func (a *API) verify(c *gin.Context, user currentUser) (bool, error) {
	if a.deps.Auth == nil {
		return true, nil
	}
	found, err := a.deps.Auth.CurrentUser(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		return false, err
	}
	if found != nil {
		return true, nil
	}

	session := sessions.Default(c)
	if session.Get(sessionUserID) != nil {
		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true, Secure: a.deps.SecureCookies})
		_ = session.Save()
	}
	return false, nil
}

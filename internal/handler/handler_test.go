package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/portfoliocms/internal/config"
	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/store"
	"github.com/portfoliocms/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct-horse"
	testResetToken    = "reset-me"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.Options{
		Path:   fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano()),
		Silent: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func mustStore[T any](t *testing.T, gdb *gorm.DB) store.Store[T] {
	t.Helper()
	st, err := store.NewSQLStore[T](gdb)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return st
}

func newTestAPI(t *testing.T) *API {
	t.Helper()
	gdb := setupHandlerTestDB(t)
	opts := service.Options{}

	projects := service.NewProjectService(mustStore[db.Project](t, gdb), opts)
	experiences := service.NewExperienceService(mustStore[db.Experience](t, gdb), opts)
	education := service.NewEducationService(mustStore[db.Education](t, gdb), opts)
	skills := service.NewSkillService(mustStore[db.Skill](t, gdb), opts)
	certifications := service.NewCertificationService(mustStore[db.Certification](t, gdb), opts)
	awards := service.NewAwardService(mustStore[db.Award](t, gdb), opts)
	contacts := service.NewContactService(mustStore[db.Contact](t, gdb), opts)

	return NewAPI(Deps{
		About:          service.NewAboutService(mustStore[db.About](t, gdb), opts),
		Projects:       projects,
		Experiences:    experiences,
		Education:      education,
		Skills:         skills,
		Certifications: certifications,
		Awards:         awards,
		Contacts:       contacts,
		Auth: service.NewAuthService(service.NewStoreUserRepository(mustStore[db.User](t, gdb)), service.AuthConfig{
			Admin:      config.AdminConfig{Email: testAdminEmail, Password: testAdminPassword, Name: "Admin"},
			ResetToken: testResetToken,
			BcryptCost: bcrypt.MinCost,
		}),
		Dashboard: service.NewDashboardService(service.DashboardSources{
			Projects:       projects,
			Experiences:    experiences,
			Skills:         skills,
			Education:      education,
			Certifications: certifications,
			Awards:         awards,
			Contacts:       contacts,
		}),
		Tokens:    token.NewManager("test-secret", time.Hour),
		Logger:    discardLogger(),
		UploadDir: t.TempDir(),
		UploadURL: "/uploads",
	})
}

func newTestEngine(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(discardLogger()))
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	auth := api.AuthRequired()
	r.POST("/api/auth/login", api.Login)
	r.POST("/api/auth/logout", api.Logout)
	r.GET("/api/auth/session", auth, api.Session)
	r.POST("/api/admin/init", api.InitAdmin)
	r.GET("/api/admin/seed", api.SeedAdmin)
	r.POST("/api/admin/reset", api.ResetAdmin)
	r.POST("/api/admin/create", auth, api.CreateUser)
	r.GET("/api/admin/stats", auth, api.Stats)
	r.POST("/api/admin/upload", auth, api.UploadImage)
	r.GET("/api/about", api.GetAbout)
	r.POST("/api/about", api.About.Create)
	r.GET("/api/projects", api.Projects.List)
	r.GET("/api/projects/:id", api.Projects.Get)
	r.POST("/api/projects", api.Projects.Create)
	r.PUT("/api/projects", api.Projects.Update)
	r.DELETE("/api/projects", api.Projects.Delete)
	r.POST("/api/skills", api.Skills.Create)
	r.POST("/api/contacts", api.Contacts.Create)
	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("encode body: %v", err)
			}
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, w)["error"]
}

// login 返回带会话 Cookie 的请求头与签发的令牌
func login(t *testing.T, r http.Handler) (http.Header, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	header := http.Header{}
	for _, c := range w.Result().Cookies() {
		header.Add("Cookie", c.Name+"="+c.Value)
	}
	body := decodeBody[struct {
		Token string `json:"token"`
	}](t, w)
	return header, body.Token
}

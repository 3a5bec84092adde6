package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/portfoliocms/internal/handler"
	"github.com/portfoliocms/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Options 控制路由层的横切配置
type Options struct {
	SessionSecret string
	SecureCookies bool
	CORSOrigins   []string
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	// Gatherer 为 nil 时 /metrics 暴露默认注册表
	Gatherer prometheus.Gatherer
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(corsMiddleware(opts.CORSOrigins))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("portfolio_session", store))

	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.Static(api.UploadURL(), api.UploadDir())

	authRequired := api.AuthRequired()
	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/login", api.Login)
		authGroup.GET("/logout", api.Logout)
		authGroup.POST("/logout", api.Logout)
		authGroup.GET("/session", authRequired, api.Session)
	}

	admin := apiGroup.Group("/admin")
	{
		admin.POST("/init", api.InitAdmin)
		admin.GET("/seed", api.SeedAdmin)
		admin.POST("/seed", api.SeedAdmin)
		admin.POST("/reset", api.ResetAdmin)
		admin.POST("/create", authRequired, api.CreateUser)
		admin.GET("/stats", authRequired, api.Stats)
		admin.POST("/upload", authRequired, api.UploadImage)
	}

	mountPublic(apiGroup.Group("/about"), api.GetAbout, api.About.Get, api.About.Create, api.About.Update, api.About.Delete, authRequired)
	mountPublic(apiGroup.Group("/projects"), api.Projects.List, api.Projects.Get, api.Projects.Create, api.Projects.Update, api.Projects.Delete, authRequired)
	mountPublic(apiGroup.Group("/experiences"), api.Experiences.List, api.Experiences.Get, api.Experiences.Create, api.Experiences.Update, api.Experiences.Delete, authRequired)
	mountPublic(apiGroup.Group("/education"), api.Education.List, api.Education.Get, api.Education.Create, api.Education.Update, api.Education.Delete, authRequired)
	mountPublic(apiGroup.Group("/skills"), api.Skills.List, api.Skills.Get, api.Skills.Create, api.Skills.Update, api.Skills.Delete, authRequired)
	mountPublic(apiGroup.Group("/certifications"), api.Certifications.List, api.Certifications.Get, api.Certifications.Create, api.Certifications.Update, api.Certifications.Delete, authRequired)
	mountPublic(apiGroup.Group("/awards"), api.Awards.List, api.Awards.Get, api.Awards.Create, api.Awards.Update, api.Awards.Delete, authRequired)

	// 留言相反：任何人可以提交，读取与处理需要登录
	contacts := apiGroup.Group("/contacts")
	{
		contacts.POST("", api.Contacts.Create)
		contacts.GET("", authRequired, api.Contacts.List)
		contacts.GET("/:id", authRequired, api.Contacts.Get)
		contacts.PUT("", authRequired, api.Contacts.Update)
		contacts.PUT("/:id", authRequired, api.Contacts.Update)
		contacts.DELETE("", authRequired, api.Contacts.Delete)
		contacts.DELETE("/:id", authRequired, api.Contacts.Delete)
	}

	return r
}

// mountPublic 注册公开读取、登录后写入的一组实体路由
func mountPublic(g *gin.RouterGroup, list, get, create, update, remove gin.HandlerFunc, auth gin.HandlerFunc) {
	g.GET("", list)
	g.GET("/:id", get)
	g.POST("", auth, create)
	g.PUT("", auth, update)
	g.PUT("/:id", auth, update)
	g.DELETE("", auth, remove)
	g.DELETE("/:id", auth, remove)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

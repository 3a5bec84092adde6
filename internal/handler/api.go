package handler

import (
	"log/slog"
	"strings"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/metrics"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/token"
)

// Deps lists everything the HTTP layer needs. Services are built by the caller
// so the same wiring can sit on either store backend.
type Deps struct {
	About          *service.AboutService
	Projects       *service.ProjectService
	Experiences    *service.ExperienceService
	Education      *service.EducationService
	Skills         *service.SkillService
	Certifications *service.CertificationService
	Awards         *service.AwardService
	Contacts       *service.ContactService
	Auth           *service.AuthService
	Dashboard      *service.DashboardService
	Tokens         *token.Manager
	Metrics        *metrics.Metrics
	Logger         *slog.Logger

	SecureCookies bool
	UploadDir     string
	UploadURL     string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	deps Deps
	log  *slog.Logger

	About          *Resource[db.About, service.AboutInput]
	Projects       *Resource[db.Project, service.ProjectInput]
	Experiences    *Resource[db.Experience, service.ExperienceInput]
	Education      *Resource[db.Education, service.EducationInput]
	Skills         *Resource[db.Skill, service.SkillInput]
	Certifications *Resource[db.Certification, service.CertificationInput]
	Awards         *Resource[db.Award, service.AwardInput]
	Contacts       *Resource[db.Contact, service.ContactInput]
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Deps) *API {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(deps.UploadDir) == "" {
		deps.UploadDir = "uploads"
	}
	if strings.TrimSpace(deps.UploadURL) == "" {
		deps.UploadURL = "/uploads"
	}

	return &API{
		deps:           deps,
		log:            logger,
		About:          NewResource[db.About, service.AboutInput](deps.About, "About", "about", logger),
		Projects:       NewResource[db.Project, service.ProjectInput](deps.Projects, "Project", "projects", logger),
		Experiences:    NewResource[db.Experience, service.ExperienceInput](deps.Experiences, "Experience", "experiences", logger),
		Education:      NewResource[db.Education, service.EducationInput](deps.Education, "Education", "education", logger),
		Skills:         NewResource[db.Skill, service.SkillInput](deps.Skills, "Skill", "skills", logger),
		Certifications: NewResource[db.Certification, service.CertificationInput](deps.Certifications, "Certification", "certifications", logger),
		Awards:         NewResource[db.Award, service.AwardInput](deps.Awards, "Award", "awards", logger),
		Contacts:       NewResource[db.Contact, service.ContactInput](deps.Contacts, "Contact", "contacts", logger),
	}
}

// UploadDir exposes where uploaded images are stored so the router can serve them.
func (a *API) UploadDir() string {
	return a.deps.UploadDir
}

// UploadURL is the public path prefix for uploaded images.
func (a *API) UploadURL() string {
	return a.deps.UploadURL
}

func lower(s string) string {
	return strings.ToLower(s)
}

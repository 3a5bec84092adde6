// Package app 负责把存储、服务与 HTTP 处理层装配在一起，供 cmd 与脚本共用。
package app

import (
	"fmt"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/handler"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/store"
	"gorm.io/gorm"
)

// Stores 是每张表对应的存储句柄
type Stores struct {
	Users          store.Store[db.User]
	About          store.Store[db.About]
	Projects       store.Store[db.Project]
	Experiences    store.Store[db.Experience]
	Education      store.Store[db.Education]
	Skills         store.Store[db.Skill]
	Certifications store.Store[db.Certification]
	Awards         store.Store[db.Award]
	Contacts       store.Store[db.Contact]
}

// SQLStores 在同一个 gorm 连接上为每张表构造 SQL 适配器
func SQLStores(gdb *gorm.DB) (*Stores, error) {
	var err error
	s := &Stores{
		Users:          sqlStore[db.User](gdb, &err),
		About:          sqlStore[db.About](gdb, &err),
		Projects:       sqlStore[db.Project](gdb, &err),
		Experiences:    sqlStore[db.Experience](gdb, &err),
		Education:      sqlStore[db.Education](gdb, &err),
		Skills:         sqlStore[db.Skill](gdb, &err),
		Certifications: sqlStore[db.Certification](gdb, &err),
		Awards:         sqlStore[db.Award](gdb, &err),
		Contacts:       sqlStore[db.Contact](gdb, &err),
	}
	if err != nil {
		return nil, fmt.Errorf("build sql stores: %w", err)
	}
	return s, nil
}

// RESTStores 为每张表构造 PostgREST 适配器
func RESTStores(opts store.RESTOptions) (*Stores, error) {
	var err error
	s := &Stores{
		Users:          restStore[db.User](opts, &err),
		About:          restStore[db.About](opts, &err),
		Projects:       restStore[db.Project](opts, &err),
		Experiences:    restStore[db.Experience](opts, &err),
		Education:      restStore[db.Education](opts, &err),
		Skills:         restStore[db.Skill](opts, &err),
		Certifications: restStore[db.Certification](opts, &err),
		Awards:         restStore[db.Award](opts, &err),
		Contacts:       restStore[db.Contact](opts, &err),
	}
	if err != nil {
		return nil, fmt.Errorf("build rest stores: %w", err)
	}
	return s, nil
}

func sqlStore[T any](gdb *gorm.DB, errp *error) store.Store[T] {
	if *errp != nil {
		return nil
	}
	st, err := store.NewSQLStore[T](gdb)
	if err != nil {
		*errp = err
		return nil
	}
	return st
}

func restStore[T any](opts store.RESTOptions, errp *error) store.Store[T] {
	if *errp != nil {
		return nil
	}
	st, err := store.NewRESTStore[T](opts)
	if err != nil {
		*errp = err
		return nil
	}
	return st
}

// Services 汇总全部领域服务
type Services struct {
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
}

// NewServices 基于给定存储构造服务，内容服务共享同一个缓存与时钟
func NewServices(st *Stores, opts service.Options, auth service.AuthConfig) *Services {
	s := &Services{
		About:          service.NewAboutService(st.About, opts),
		Projects:       service.NewProjectService(st.Projects, opts),
		Experiences:    service.NewExperienceService(st.Experiences, opts),
		Education:      service.NewEducationService(st.Education, opts),
		Skills:         service.NewSkillService(st.Skills, opts),
		Certifications: service.NewCertificationService(st.Certifications, opts),
		Awards:         service.NewAwardService(st.Awards, opts),
		Contacts:       service.NewContactService(st.Contacts, opts),
		Auth:           service.NewAuthService(service.NewStoreUserRepository(st.Users), auth),
	}
	s.Dashboard = service.NewDashboardService(service.DashboardSources{
		Projects:       s.Projects,
		Experiences:    s.Experiences,
		Skills:         s.Skills,
		Education:      s.Education,
		Certifications: s.Certifications,
		Awards:         s.Awards,
		Contacts:       s.Contacts,
	})
	return s
}

// HandlerDeps 把服务填入 handler.Deps，其余字段由调用方补充
func (s *Services) HandlerDeps() handler.Deps {
	return handler.Deps{
		About:          s.About,
		Projects:       s.Projects,
		Experiences:    s.Experiences,
		Education:      s.Education,
		Skills:         s.Skills,
		Certifications: s.Certifications,
		Awards:         s.Awards,
		Contacts:       s.Contacts,
		Auth:           s.Auth,
		Dashboard:      s.Dashboard,
	}
}

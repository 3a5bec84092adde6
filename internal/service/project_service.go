package service

import (
	"context"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
)

// ProjectInput 描述项目的可写字段，technologies 可以是数组或逗号分隔字符串
type ProjectInput struct {
	Title        Opt[string] `json:"title"`
	Description  Opt[string] `json:"description"`
	ImageURL     Opt[string] `json:"imageUrl"`
	DemoURL      Opt[string] `json:"demoUrl"`
	GithubURL    Opt[string] `json:"githubUrl"`
	Technologies Opt[List]   `json:"technologies"`
}

func (in ProjectInput) Validate(create bool) error {
	return requireStrings(create, in.Title, in.Description)
}

// ProjectService 管理作品集项目，默认按创建时间倒序
type ProjectService struct {
	*Collection[db.Project, *db.Project]
}

func NewProjectService(st store.Store[db.Project], opts Options) *ProjectService {
	return &ProjectService{
		Collection: newCollection[db.Project, *db.Project](st, opts, store.Order{Column: "created_at", Desc: true}),
	}
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*db.Project, error) {
	return s.insert(ctx, &db.Project{
		Title:        text(in.Title),
		Description:  text(in.Description),
		ImageURL:     text(in.ImageURL),
		DemoURL:      text(in.DemoURL),
		GithubURL:    text(in.GithubURL),
		Technologies: technologies(in.Technologies),
	})
}

func (s *ProjectService) Update(ctx context.Context, id string, in ProjectInput) (*db.Project, error) {
	patch := store.Patch{}
	putText(patch, "title", in.Title)
	putText(patch, "description", in.Description)
	putText(patch, "image_url", in.ImageURL)
	putText(patch, "demo_url", in.DemoURL)
	putText(patch, "github_url", in.GithubURL)
	if in.Technologies.Set {
		patch["technologies"] = technologies(in.Technologies)
	}
	return s.patch(ctx, id, patch)
}

func technologies(o Opt[List]) db.StringList {
	if !o.Set || o.Null {
		return db.StringList{}
	}
	return db.StringList(o.Value)
}

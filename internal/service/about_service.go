package service

import (
	"context"
	"fmt"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
)

// AboutInput 描述创建或更新“关于我”时可设置的字段
type AboutInput struct {
	Title       Opt[string] `json:"title"`
	Description Opt[string] `json:"description"`
	ImageURL    Opt[string] `json:"imageUrl"`
}

func (in AboutInput) Validate(create bool) error {
	return requireStrings(create, in.Title, in.Description)
}

// AboutService 管理“关于我”区块。表中允许多行，读取方使用最近更新的一条。
type AboutService struct {
	*Collection[db.About, *db.About]
}

// NewAboutService 构造 AboutService
func NewAboutService(st store.Store[db.About], opts Options) *AboutService {
	return &AboutService{
		Collection: newCollection[db.About, *db.About](st, opts, store.Order{Column: "updated_at", Desc: true}),
	}
}

func (s *AboutService) Create(ctx context.Context, in AboutInput) (*db.About, error) {
	return s.insert(ctx, &db.About{
		Title:       text(in.Title),
		Description: text(in.Description),
		ImageURL:    text(in.ImageURL),
	})
}

func (s *AboutService) Update(ctx context.Context, id string, in AboutInput) (*db.About, error) {
	patch := store.Patch{}
	putText(patch, "title", in.Title)
	putText(patch, "description", in.Description)
	putText(patch, "image_url", in.ImageURL)
	return s.patch(ctx, id, patch)
}

// AboutView 在实体之外附带渲染后的描述 HTML。
type AboutView struct {
	db.About
	DescriptionHTML string `json:"descriptionHtml"`
}

// Current 返回最近更新的一条并渲染描述，表为空时返回 nil, nil。
func (s *AboutService) Current(ctx context.Context) (*AboutView, error) {
	about, err := s.Latest(ctx)
	if err != nil || about == nil {
		return nil, err
	}
	rendered, err := RenderMarkdown(about.Description)
	if err != nil {
		return nil, fmt.Errorf("render about description: %w", err)
	}
	return &AboutView{About: *about, DescriptionHTML: rendered}, nil
}

package service

import (
	"context"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
)

// ContactInput 公开留言表单。Read 只在后台更新时生效
type ContactInput struct {
	Name    Opt[string] `json:"name"`
	Email   Opt[string] `json:"email"`
	Subject Opt[string] `json:"subject"`
	Message Opt[string] `json:"message"`
	Read    Opt[bool]   `json:"read"`
}

// Validate 创建时要求四个文本字段；更新只涉及 read，无需校验
func (in ContactInput) Validate(create bool) error {
	if !create {
		return nil
	}
	return requireStrings(true, in.Name, in.Email, in.Subject, in.Message)
}

// ContactService 管理访客留言，默认按创建时间倒序
type ContactService struct {
	*Collection[db.Contact, *db.Contact]
}

func NewContactService(st store.Store[db.Contact], opts Options) *ContactService {
	return &ContactService{
		Collection: newCollection[db.Contact, *db.Contact](st, opts, store.Order{Column: "created_at", Desc: true}),
	}
}

// Create 保存新留言，read 恒为 false
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*db.Contact, error) {
	return s.insert(ctx, &db.Contact{
		Name:    text(in.Name),
		Email:   text(in.Email),
		Subject: text(in.Subject),
		Message: text(in.Message),
		Read:    false,
	})
}

// Update 只允许切换已读状态，其他字段被忽略
func (s *ContactService) Update(ctx context.Context, id string, in ContactInput) (*db.Contact, error) {
	patch := store.Patch{}
	putBool(patch, "read", in.Read)
	return s.patch(ctx, id, patch)
}

// CountUnread 返回未读留言数量
func (s *ContactService) CountUnread(ctx context.Context) (int64, error) {
	return s.Count(ctx, map[string]any{"read": false})
}

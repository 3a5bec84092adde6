package service

import (
	"context"
	"fmt"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
)

const (
	minSkillLevel     = 1
	maxSkillLevel     = 10
	defaultSkillLevel = 1
)

// SkillInput 技能输入，level 可为数字或数字字符串
type SkillInput struct {
	Name     Opt[string] `json:"name"`
	Level    Opt[Number] `json:"level"`
	Category Opt[string] `json:"category"`
}

func (in SkillInput) Validate(create bool) error {
	if err := requireStrings(create, in.Name, in.Category); err != nil {
		return err
	}
	if in.Level.Set && !in.Level.Null {
		level := int(in.Level.Value)
		if level < minSkillLevel || level > maxSkillLevel {
			return fmt.Errorf("%w: level must be between %d and %d", ErrInvalidInput, minSkillLevel, maxSkillLevel)
		}
	}
	return nil
}

// SkillService 默认按分类升序，其次按名称
type SkillService struct {
	*Collection[db.Skill, *db.Skill]
}

func NewSkillService(st store.Store[db.Skill], opts Options) *SkillService {
	return &SkillService{
		Collection: newCollection[db.Skill, *db.Skill](st, opts,
			store.Order{Column: "category"},
			store.Order{Column: "name"},
		),
	}
}

func (s *SkillService) Create(ctx context.Context, in SkillInput) (*db.Skill, error) {
	level := defaultSkillLevel
	if in.Level.Set && !in.Level.Null {
		level = int(in.Level.Value)
	}
	return s.insert(ctx, &db.Skill{
		Name:     text(in.Name),
		Level:    level,
		Category: text(in.Category),
	})
}

func (s *SkillService) Update(ctx context.Context, id string, in SkillInput) (*db.Skill, error) {
	patch := store.Patch{}
	putText(patch, "name", in.Name)
	putText(patch, "category", in.Category)
	if in.Level.Set && !in.Level.Null {
		patch["level"] = int(in.Level.Value)
	}
	return s.patch(ctx, id, patch)
}

// CertificationInput 证书输入，expiryDate/credentialId/credentialUrl 可置 null
type CertificationInput struct {
	Name          Opt[string] `json:"name"`
	Issuer        Opt[string] `json:"issuer"`
	IssueDate     Opt[Date]   `json:"issueDate"`
	ExpiryDate    Opt[Date]   `json:"expiryDate"`
	CredentialID  Opt[string] `json:"credentialId"`
	CredentialURL Opt[string] `json:"credentialUrl"`
}

func (in CertificationInput) Validate(create bool) error {
	if err := requireStrings(create, in.Name, in.Issuer); err != nil {
		return err
	}
	return requireDates(create, in.IssueDate)
}

type CertificationService struct {
	*Collection[db.Certification, *db.Certification]
}

func NewCertificationService(st store.Store[db.Certification], opts Options) *CertificationService {
	return &CertificationService{
		Collection: newCollection[db.Certification, *db.Certification](st, opts, store.Order{Column: "issue_date", Desc: true}),
	}
}

func (s *CertificationService) Create(ctx context.Context, in CertificationInput) (*db.Certification, error) {
	return s.insert(ctx, &db.Certification{
		Name:          text(in.Name),
		Issuer:        text(in.Issuer),
		IssueDate:     in.IssueDate.Value.Time,
		ExpiryDate:    optionalDate(in.ExpiryDate),
		CredentialID:  optionalText(in.CredentialID),
		CredentialURL: optionalText(in.CredentialURL),
	})
}

func (s *CertificationService) Update(ctx context.Context, id string, in CertificationInput) (*db.Certification, error) {
	patch := store.Patch{}
	putText(patch, "name", in.Name)
	putText(patch, "issuer", in.Issuer)
	putDate(patch, "issue_date", in.IssueDate)
	putOptionalDate(patch, "expiry_date", in.ExpiryDate)
	putOptionalText(patch, "credential_id", in.CredentialID)
	putOptionalText(patch, "credential_url", in.CredentialURL)
	return s.patch(ctx, id, patch)
}

type AwardInput struct {
	Title       Opt[string] `json:"title"`
	Issuer      Opt[string] `json:"issuer"`
	Date        Opt[Date]   `json:"date"`
	Description Opt[string] `json:"description"`
}

func (in AwardInput) Validate(create bool) error {
	if err := requireStrings(create, in.Title, in.Issuer); err != nil {
		return err
	}
	return requireDates(create, in.Date)
}

type AwardService struct {
	*Collection[db.Award, *db.Award]
}

func NewAwardService(st store.Store[db.Award], opts Options) *AwardService {
	return &AwardService{
		Collection: newCollection[db.Award, *db.Award](st, opts, store.Order{Column: "date", Desc: true}),
	}
}

func (s *AwardService) Create(ctx context.Context, in AwardInput) (*db.Award, error) {
	return s.insert(ctx, &db.Award{
		Title:       text(in.Title),
		Issuer:      text(in.Issuer),
		Date:        in.Date.Value.Time,
		Description: optionalText(in.Description),
	})
}

func (s *AwardService) Update(ctx context.Context, id string, in AwardInput) (*db.Award, error) {
	patch := store.Patch{}
	putText(patch, "title", in.Title)
	putText(patch, "issuer", in.Issuer)
	putDate(patch, "date", in.Date)
	putOptionalText(patch, "description", in.Description)
	return s.patch(ctx, id, patch)
}

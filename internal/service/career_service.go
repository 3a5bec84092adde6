package service

import (
	"context"

	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
)

// ExperienceInput 工作经历输入。endDate 可为 null 或空字符串表示至今
type ExperienceInput struct {
	Title       Opt[string] `json:"title"`
	Company     Opt[string] `json:"company"`
	Location    Opt[string] `json:"location"`
	StartDate   Opt[Date]   `json:"startDate"`
	EndDate     Opt[Date]   `json:"endDate"`
	Current     Opt[bool]   `json:"current"`
	Description Opt[string] `json:"description"`
}

func (in ExperienceInput) Validate(create bool) error {
	if err := requireStrings(create, in.Title, in.Company); err != nil {
		return err
	}
	return requireDates(create, in.StartDate)
}

type ExperienceService struct {
	*Collection[db.Experience, *db.Experience]
}

func NewExperienceService(st store.Store[db.Experience], opts Options) *ExperienceService {
	return &ExperienceService{
		Collection: newCollection[db.Experience, *db.Experience](st, opts, store.Order{Column: "start_date", Desc: true}),
	}
}

func (s *ExperienceService) Create(ctx context.Context, in ExperienceInput) (*db.Experience, error) {
	return s.insert(ctx, &db.Experience{
		Title:       text(in.Title),
		Company:     text(in.Company),
		Location:    text(in.Location),
		StartDate:   in.StartDate.Value.Time,
		EndDate:     optionalDate(in.EndDate),
		Current:     in.Current.Value,
		Description: text(in.Description),
	})
}

func (s *ExperienceService) Update(ctx context.Context, id string, in ExperienceInput) (*db.Experience, error) {
	patch := store.Patch{}
	putText(patch, "title", in.Title)
	putText(patch, "company", in.Company)
	putText(patch, "location", in.Location)
	putDate(patch, "start_date", in.StartDate)
	putOptionalDate(patch, "end_date", in.EndDate)
	putBool(patch, "current", in.Current)
	putText(patch, "description", in.Description)
	return s.patch(ctx, id, patch)
}

// EducationInput 教育经历输入，语义同 ExperienceInput
type EducationInput struct {
	Institution Opt[string] `json:"institution"`
	Degree      Opt[string] `json:"degree"`
	Field       Opt[string] `json:"field"`
	StartDate   Opt[Date]   `json:"startDate"`
	EndDate     Opt[Date]   `json:"endDate"`
	Current     Opt[bool]   `json:"current"`
	Description Opt[string] `json:"description"`
}

func (in EducationInput) Validate(create bool) error {
	if err := requireStrings(create, in.Institution, in.Degree); err != nil {
		return err
	}
	return requireDates(create, in.StartDate)
}

type EducationService struct {
	*Collection[db.Education, *db.Education]
}

func NewEducationService(st store.Store[db.Education], opts Options) *EducationService {
	return &EducationService{
		Collection: newCollection[db.Education, *db.Education](st, opts, store.Order{Column: "start_date", Desc: true}),
	}
}

func (s *EducationService) Create(ctx context.Context, in EducationInput) (*db.Education, error) {
	return s.insert(ctx, &db.Education{
		Institution: text(in.Institution),
		Degree:      text(in.Degree),
		Field:       text(in.Field),
		StartDate:   in.StartDate.Value.Time,
		EndDate:     optionalDate(in.EndDate),
		Current:     in.Current.Value,
		Description: text(in.Description),
	})
}

func (s *EducationService) Update(ctx context.Context, id string, in EducationInput) (*db.Education, error) {
	patch := store.Patch{}
	putText(patch, "institution", in.Institution)
	putText(patch, "degree", in.Degree)
	putText(patch, "field", in.Field)
	putDate(patch, "start_date", in.StartDate)
	putOptionalDate(patch, "end_date", in.EndDate)
	putBool(patch, "current", in.Current)
	putText(patch, "description", in.Description)
	return s.patch(ctx, id, patch)
}

package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Counter 是仪表盘统计依赖的最小接口，各内容服务通过嵌入的 Collection 实现它
type Counter interface {
	Count(ctx context.Context, where map[string]any) (int64, error)
}

// DashboardStats 后台首页的计数汇总
type DashboardStats struct {
	Projects       int64 `json:"projects"`
	Experiences    int64 `json:"experiences"`
	Skills         int64 `json:"skills"`
	Education      int64 `json:"education"`
	Certifications int64 `json:"certifications"`
	Awards         int64 `json:"awards"`
	Contacts       int64 `json:"contacts"`
	UnreadContacts int64 `json:"unreadContacts"`
}

// DashboardSources 列出每个计数的数据来源
type DashboardSources struct {
	Projects       Counter
	Experiences    Counter
	Skills         Counter
	Education      Counter
	Certifications Counter
	Awards         Counter
	Contacts       Counter
}

type DashboardService struct {
	sources DashboardSources
}

func NewDashboardService(sources DashboardSources) *DashboardService {
	return &DashboardService{sources: sources}
}

// Stats 并发读取全部计数，任意一项失败则整体失败
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, source Counter, where map[string]any) {
		g.Go(func() error {
			total, err := source.Count(ctx, where)
			if err != nil {
				return err
			}
			*dst = total
			return nil
		})
	}

	count(&stats.Projects, s.sources.Projects, nil)
	count(&stats.Experiences, s.sources.Experiences, nil)
	count(&stats.Skills, s.sources.Skills, nil)
	count(&stats.Education, s.sources.Education, nil)
	count(&stats.Certifications, s.sources.Certifications, nil)
	count(&stats.Awards, s.sources.Awards, nil)
	count(&stats.Contacts, s.sources.Contacts, nil)
	count(&stats.UnreadContacts, s.sources.Contacts, map[string]any{"read": false})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

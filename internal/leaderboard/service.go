package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
)

// Service serves the student and department rankings behind a short redis
// cache so leaderboard refreshes never hammer the users table.
type Service interface {
	Students(ctx context.Context) ([]StudentRow, error)
	Departments(ctx context.Context) ([]DepartmentRow, error)
}

type cacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

type service struct {
	repo     Repository
	cache    cacheClient
	logg     *logger.Logger
	topLimit int
	ttl      time.Duration
}

// ServiceParams bundles the dependencies for the leaderboard service.
type ServiceParams struct {
	Repo     Repository
	Cache    cacheClient
	Logger   *logger.Logger
	TopLimit int
	CacheTTL time.Duration
}

// NewService wires a leaderboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("leaderboard repository is required")
	}
	if params.TopLimit <= 0 {
		params.TopLimit = 50
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = 30 * time.Second
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		logg:     params.Logger,
		topLimit: params.TopLimit,
		ttl:      params.CacheTTL,
	}, nil
}

func (s *service) Students(ctx context.Context) ([]StudentRow, error) {
	var cached []StudentRow
	if s.readCache(ctx, "students", &cached) {
		return cached, nil
	}

	rows, err := s.repo.TopStudents(ctx, s.topLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank students")
	}
	s.writeCache(ctx, "students", rows)
	return rows, nil
}

func (s *service) Departments(ctx context.Context) ([]DepartmentRow, error) {
	var cached []DepartmentRow
	if s.readCache(ctx, "departments", &cached) {
		return cached, nil
	}

	rows, err := s.repo.DepartmentAverages(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank departments")
	}
	s.writeCache(ctx, "departments", rows)
	return rows, nil
}

// Cache failures degrade to a direct query; rankings must not depend on redis.
func (s *service) readCache(ctx context.Context, scope string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey("leaderboard", scope))
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false
	}
	return true
}

func (s *service) writeCache(ctx context.Context, scope string, rows any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey("leaderboard", scope), string(raw), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "leaderboard cache write failed")
	}
}

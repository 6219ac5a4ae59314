package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	students    []StudentRow
	departments []DepartmentRow
	calls       int
}

func (f *fakeRepo) TopStudents(ctx context.Context, limit int) ([]StudentRow, error) {
	f.calls++
	if limit <= 0 {
		return nil, errors.New("bad limit")
	}
	if len(f.students) > limit {
		return f.students[:limit], nil
	}
	return f.students, nil
}

func (f *fakeRepo) DepartmentAverages(ctx context.Context) ([]DepartmentRow, error) {
	f.calls++
	return f.departments, nil
}

type fakeCache struct {
	data map[string]string
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return f.data[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.sets++
	return nil
}

func (f *fakeCache) CacheKey(parts ...string) string {
	key := "eco:cache"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func TestStudentsCachesResult(t *testing.T) {
	repo := &fakeRepo{
		students: []StudentRow{
			{Rank: 1, StudentID: "CS21B042", LifetimePoints: 900},
			{Rank: 2, StudentID: "ME20B011", LifetimePoints: 750},
		},
	}
	cache := newFakeCache()
	svc, err := NewService(ServiceParams{Repo: repo, Cache: cache, TopLimit: 50, CacheTTL: 30 * time.Second})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	first, err := svc.Students(context.Background())
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(first) != 2 || first[0].StudentID != "CS21B042" {
		t.Fatalf("unexpected rows %+v", first)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache write, got %d", cache.sets)
	}

	second, err := svc.Students(context.Background())
	if err != nil {
		t.Fatalf("students (cached): %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected cached read, repo called %d times", repo.calls)
	}
	if len(second) != 2 || second[1].LifetimePoints != 750 {
		t.Fatalf("cached rows mismatch %+v", second)
	}
}

func TestDepartmentsWorkWithoutCache(t *testing.T) {
	repo := &fakeRepo{
		departments: []DepartmentRow{
			{Rank: 1, Department: "Civil Engineering", AveragePoints: 420, StudentCount: 80},
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	rows, err := svc.Departments(context.Background())
	if err != nil {
		t.Fatalf("departments: %v", err)
	}
	if len(rows) != 1 || rows[0].Department != "Civil Engineering" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	repo := &fakeRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	if _, err := svc.Students(context.Background()); err != nil {
		t.Fatalf("students with default limit: %v", err)
	}

	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error for missing repo")
	}
}

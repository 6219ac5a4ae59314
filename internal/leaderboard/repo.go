package leaderboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
)

// StudentRow is one leaderboard entry.
type StudentRow struct {
	Rank           int     `json:"rank"`
	StudentID      string  `json:"student_id"`
	FullName       string  `json:"full_name"`
	Department     *string `json:"department,omitempty"`
	ProfileImgURL  *string `json:"profile_img_url,omitempty"`
	LifetimePoints int     `json:"lifetime_points"`
	TickType       string  `json:"tick_type"`
}

// DepartmentRow is one department ranking entry.
type DepartmentRow struct {
	Rank          int    `json:"rank"`
	Department    string `json:"department"`
	AveragePoints int    `json:"average_points"`
	StudentCount  int    `json:"student_count"`
}

// Repository reads the ranking projections off the users table.
type Repository interface {
	TopStudents(ctx context.Context, limit int) ([]StudentRow, error)
	DepartmentAverages(ctx context.Context) ([]DepartmentRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a leaderboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// TopStudents ranks by lifetime points; ties break on the stable user id.
func (r *repository) TopStudents(ctx context.Context, limit int) ([]StudentRow, error) {
	var rows []StudentRow
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("student_id, full_name, department, profile_img_url, lifetime_points, tick_type").
		Order("lifetime_points DESC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// DepartmentAverages aggregates in SQL; ties break on department name.
func (r *repository) DepartmentAverages(ctx context.Context) ([]DepartmentRow, error) {
	var rows []DepartmentRow
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("department, CAST(ROUND(AVG(lifetime_points)) AS BIGINT) AS average_points, COUNT(*) AS student_count").
		Where("department IS NOT NULL AND department <> ''").
		Group("department").
		Order("average_points DESC, department ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/pagination"
)

// FeedEntry is one row of a user's activity feed.
type FeedEntry struct {
	ID          int64     `json:"id"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedPage is a cursor page of feed entries.
type FeedPage struct {
	Entries    []FeedEntry `json:"entries"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// Service reads the activity feed. Writes happen only in the activity worker.
type Service interface {
	Feed(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FeedPage, error)
}

type service struct {
	repo Repository
}

// NewService wires an activity feed reader.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Feed(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FeedPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list activity")
	}

	page := &FeedPage{Entries: make([]FeedEntry, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Entries = append(page.Entries, FeedEntry{
			ID:          row.ID,
			ActionType:  row.ActionType,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return page, nil
}

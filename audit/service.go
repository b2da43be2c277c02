// audit/service.go
package audit

import (
	"context"
	"time"
)

type Service interface {
	Record(ctx context.Context, entry Entry) error
	QueryEntries(ctx context.Context, from, to time.Time, userID, resourceID string) ([]Entry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return s.repo.Record(ctx, entry)
}

func (s *service) QueryEntries(ctx context.Context, from, to time.Time, userID, resourceID string) ([]Entry, error) {
	return s.repo.QueryEntries(ctx, from, to, userID, resourceID)
}

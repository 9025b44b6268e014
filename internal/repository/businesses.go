package repository

import (
	"context"
	"strings"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
)

// BusinessesRepository describes persistence operations for directory records.
// List applies only the text filters; proximity and pagination are handled by
// the service layer.
type BusinessesRepository interface {
	ReplaceAll(ctx context.Context, businesses []entity.Business) (ReplaceResult, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error)
}

// ReplaceResult summarises a full snapshot replacement.
type ReplaceResult struct {
	Removed int
	Stored  int
}

// matchesFilter applies the q and city filters in memory.
func matchesFilter(b entity.Business, filter dto.ListFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(filter.Q)); q != "" {
		if !strings.Contains(strings.ToLower(b.Name), q) && !strings.Contains(strings.ToLower(b.Address), q) {
			return false
		}
	}
	if city := strings.TrimSpace(filter.City); city != "" && !strings.EqualFold(b.City, city) {
		return false
	}
	return true
}

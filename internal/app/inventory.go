package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"dealership_api/internal/domain"
)

type InventoryService struct{ searcher domain.InventorySearcher }

func NewInventoryService(s domain.InventorySearcher) *InventoryService {
	return &InventoryService{searcher: s}
}

// Search applies only the highest-precedence filter in filters
// (year > make > model > mileage > price) and returns the inventory
// service's answer as-is.
func (s *InventoryService) Search(ctx context.Context, dealerID string, filters url.Values) (json.RawMessage, error) {
	q, err := domain.ParseInventoryQuery(dealerID, filters)
	if err != nil {
		return nil, fmt.Errorf("dealer id %q: %w", dealerID, err)
	}
	cars, err := s.searcher.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search inventory for dealer %s: %w", q.DealerID, err)
	}
	return cars, nil
}

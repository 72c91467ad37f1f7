// Package dealerstore talks to the dealer/review datastore service.
package dealerstore

import (
	"context"
	"net/url"

	"dealership_api/internal/adapters/upstream"
	"dealership_api/internal/domain"
)

type Store struct{ up *upstream.Client }

func New(up *upstream.Client) *Store { return &Store{up: up} }

func (s *Store) FetchDealers(ctx context.Context, state string) ([]domain.Dealer, error) {
	path := "/fetchDealers"
	if state != "" {
		path += "/" + url.PathEscape(state)
	}
	var out []domain.Dealer
	if err := s.up.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FetchDealer(ctx context.Context, id string) ([]domain.Dealer, error) {
	var out []domain.Dealer
	if err := s.up.Get(ctx, "/fetchDealer/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FetchReviews(ctx context.Context, dealerID string) ([]domain.Review, error) {
	var out []domain.Review
	if err := s.up.Get(ctx, "/fetchReviews/dealer/"+url.PathEscape(dealerID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertReview posts the payload as-is; the store's echo is discarded.
func (s *Store) InsertReview(ctx context.Context, payload map[string]any) error {
	return s.up.Post(ctx, "/insert_review", payload, nil)
}

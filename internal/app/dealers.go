package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/domain"
)

const AllStates = "All"

type DealerService struct{ store domain.DealerStore }

func NewDealerService(store domain.DealerStore) *DealerService {
	return &DealerService{store: store}
}

// ListDealers fetches every dealer for "All" (or an empty state) and the
// state-filtered list otherwise. The state is not validated. A nil slice
// with a nil error means the store answered with no usable data.
func (s *DealerService) ListDealers(ctx context.Context, state string) ([]domain.Dealer, error) {
	if state == AllStates {
		state = ""
	}
	dealers, err := s.store.FetchDealers(ctx, state)
	if errors.Is(err, domain.ErrDecode) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch dealers (state=%q): %w", state, err)
	}
	return dealers, nil
}

func (s *DealerService) DealerDetails(ctx context.Context, dealerID string) ([]domain.Dealer, error) {
	id, err := domain.NormalizeDealerID(dealerID)
	if err != nil {
		return nil, fmt.Errorf("dealer id %q: %w", dealerID, err)
	}
	dealer, err := s.store.FetchDealer(ctx, id)
	if errors.Is(err, domain.ErrDecode) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch dealer %s: %w", id, err)
	}
	return dealer, nil
}

// SubmitReview forwards the client's review with the reviewer name replaced
// by the principal's display name. The principal check comes before the
// body is even looked at.
func (s *DealerService) SubmitReview(ctx context.Context, p *domain.Principal, body []byte) error {
	if p == nil {
		return domain.ErrUnauthorized
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		log.Error().Err(err).Msg("failed to decode review payload")
		return fmt.Errorf("review payload: %w", domain.ErrBadRequest)
	}

	payload["name"] = strings.TrimSpace(p.DisplayName())
	log.Debug().Str("user", p.UserName).Interface("payload", payload).Msg("review payload for insert_review")

	if err := s.store.InsertReview(ctx, payload); err != nil {
		log.Error().Err(err).Str("user", p.UserName).Msg("posting review to dealer store failed")
		return fmt.Errorf("insert review: %w", domain.ErrServiceError)
	}
	return nil
}

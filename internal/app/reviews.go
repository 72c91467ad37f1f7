package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"dealership_api/internal/adapters/observability"
	"dealership_api/internal/domain"
)

type ReviewService struct {
	store      domain.DealerStore
	classifier domain.SentimentClassifier
	fanout     int64
}

// NewReviewService classifies up to fanout reviews at once; fanout <= 1
// classifies one review at a time.
func NewReviewService(store domain.DealerStore, classifier domain.SentimentClassifier, fanout int) *ReviewService {
	if fanout < 1 {
		fanout = 1
	}
	return &ReviewService{store: store, classifier: classifier, fanout: int64(fanout)}
}

// ReviewsForDealer returns the dealer's reviews in upstream order, each with
// a sentiment label. An empty or undecodable upstream body is an empty list.
func (s *ReviewService) ReviewsForDealer(ctx context.Context, dealerID string) ([]domain.Review, error) {
	id, err := domain.NormalizeDealerID(dealerID)
	if err != nil {
		return nil, fmt.Errorf("dealer id %q: %w", dealerID, err)
	}

	reviews, err := s.store.FetchReviews(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDecode) {
			return []domain.Review{}, nil
		}
		return nil, fmt.Errorf("fetch reviews for dealer %s: %w", id, err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	s.annotate(ctx, reviews)
	return reviews, nil
}

// annotate writes each label into its own slot, so completion order never
// affects output order. Reviews not started before ctx ends get the
// sentinel label.
func (s *ReviewService) annotate(ctx context.Context, reviews []domain.Review) {
	sem := semaphore.NewWeighted(s.fanout)
	var wg sync.WaitGroup

	for i := range reviews {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Int("pending", len(reviews)-i).Msg("sentiment fan-out abandoned")
			for j := i; j < len(reviews); j++ {
				reviews[j].Sentiment = domain.SentimentServiceError
			}
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			reviews[i].Sentiment = s.classifier.Classify(ctx, reviews[i].Review).Label
		}(i)
	}

	wg.Wait()
	for _, r := range reviews {
		observability.ObserveSentiment(string(r.Sentiment))
	}
}

package domain

import (
	"context"
	"encoding/json"
	"time"
)

// DealerStore is the dealer/review datastore service.
type DealerStore interface {
	// FetchDealers returns all dealers when state is empty.
	FetchDealers(ctx context.Context, state string) ([]Dealer, error)
	FetchDealer(ctx context.Context, id string) ([]Dealer, error)
	FetchReviews(ctx context.Context, dealerID string) ([]Review, error)
	InsertReview(ctx context.Context, payload map[string]any) error
}

// SentimentClassifier never fails; a broken call yields SentimentServiceError.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) Classification
}

// InventorySearcher returns the inventory service's answer verbatim.
type InventorySearcher interface {
	Search(ctx context.Context, q InventoryQuery) (json.RawMessage, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, userName string) (User, error)
	CreateUser(ctx context.Context, u User) (int64, error)
}

type CatalogRepository interface {
	CountMakes(ctx context.Context) (int, error)
	InsertCatalog(ctx context.Context, makes []CarMake) error
	ListCarModels(ctx context.Context) ([]CarModelView, error)
}

type SessionStore interface {
	Create(ctx context.Context, p Principal, ttl time.Duration) (string, error)
	Get(ctx context.Context, token string) (Principal, error)
	Delete(ctx context.Context, token string) error
}

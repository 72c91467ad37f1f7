package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"dealership_api/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu        sync.Mutex
	dealers   []domain.Dealer
	reviews   []domain.Review
	fetchErr  error
	insertErr error

	states   []string
	calls    int32
	inserted []map[string]any
}

func (f *fakeStore) FetchDealers(ctx context.Context, state string) ([]domain.Dealer, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.states = append(f.states, state)
	f.mu.Unlock()
	return f.dealers, f.fetchErr
}

func (f *fakeStore) FetchDealer(ctx context.Context, id string) ([]domain.Dealer, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.dealers, f.fetchErr
}

func (f *fakeStore) FetchReviews(ctx context.Context, dealerID string) ([]domain.Review, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Review, len(f.reviews))
	copy(out, f.reviews)
	return out, nil
}

func (f *fakeStore) InsertReview(ctx context.Context, payload map[string]any) error {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.inserted = append(f.inserted, payload)
	f.mu.Unlock()
	return f.insertErr
}

// fakeClassifier labels by exact text and sleeps per text so completion
// order differs from submission order.
type fakeClassifier struct {
	labels map[string]domain.Sentiment
	delays map[string]time.Duration
	calls  int32
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) domain.Classification {
	atomic.AddInt32(&f.calls, 1)
	if d := f.delays[text]; d > 0 {
		time.Sleep(d)
	}
	if l, ok := f.labels[text]; ok {
		return domain.Classification{Label: l}
	}
	return domain.Classification{Label: domain.SentimentNeutral}
}

type fakeSearcher struct {
	got   []domain.InventoryQuery
	calls int32
}

func (f *fakeSearcher) Search(ctx context.Context, q domain.InventoryQuery) (json.RawMessage, error) {
	atomic.AddInt32(&f.calls, 1)
	f.got = append(f.got, q)
	return json.RawMessage(`[]`), nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
	err   error
}

func (f *fakeUsers) GetUser(ctx context.Context, userName string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.User{}, f.err
	}
	u, ok := f.users[userName]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[string]domain.User{}
	}
	if _, ok := f.users[u.UserName]; ok {
		return 0, domain.ErrAlreadyRegistered
	}
	u.ID = int64(len(f.users) + 1)
	f.users[u.UserName] = u
	return u.ID, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	n    int
	byID map[string]domain.Principal
}

func (f *fakeSessions) Create(ctx context.Context, p domain.Principal, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byID == nil {
		f.byID = map[string]domain.Principal{}
	}
	f.n++
	token := "tok-" + string(rune('a'+f.n))
	f.byID[token] = p
	return token, nil
}

func (f *fakeSessions) Get(ctx context.Context, token string) (domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[token]
	if !ok {
		return domain.Principal{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeSessions) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, token)
	return nil
}

type fakeCatalog struct {
	makes    []domain.CarMake
	inserts  int
	countErr error
}

func (f *fakeCatalog) CountMakes(ctx context.Context) (int, error) { return len(f.makes), f.countErr }

func (f *fakeCatalog) InsertCatalog(ctx context.Context, makes []domain.CarMake) error {
	f.inserts++
	f.makes = append(f.makes, makes...)
	return nil
}

func (f *fakeCatalog) ListCarModels(ctx context.Context) ([]domain.CarModelView, error) {
	var out []domain.CarModelView
	for _, mk := range f.makes {
		for _, m := range mk.Models {
			out = append(out, domain.CarModelView{CarModel: m.Name, CarMake: mk.Name})
		}
	}
	return out, nil
}

package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership_api/internal/adapters/dealerstore"
	server "dealership_api/internal/adapters/http_server"
	"dealership_api/internal/adapters/inventory"
	redisad "dealership_api/internal/adapters/redis"
	"dealership_api/internal/adapters/sentiment"
	"dealership_api/internal/adapters/upstream"
	"dealership_api/internal/app"
	"dealership_api/internal/domain"
)

// ---- in-memory repositories ----

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memUsers) GetUser(ctx context.Context, name string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[name]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.UserName]; ok {
		return 0, domain.ErrAlreadyRegistered
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.UserName] = u
	return u.ID, nil
}

type memCatalog struct{ makes []domain.CarMake }

func (m *memCatalog) CountMakes(ctx context.Context) (int, error) { return len(m.makes), nil }
func (m *memCatalog) InsertCatalog(ctx context.Context, mk []domain.CarMake) error {
	m.makes = append(m.makes, mk...)
	return nil
}
func (m *memCatalog) ListCarModels(ctx context.Context) ([]domain.CarModelView, error) {
	out := []domain.CarModelView{}
	for _, mk := range m.makes {
		for _, md := range mk.Models {
			out = append(out, domain.CarModelView{CarModel: md.Name, CarMake: mk.Name})
		}
	}
	return out, nil
}

// ---- fake upstreams ----

type fakeUpstreams struct {
	dealers, sentiment, inventory *httptest.Server

	storeDown   atomic.Bool
	insertFails atomic.Bool
	storeCalls  atomic.Int32

	mu       sync.Mutex
	inserted []map[string]any
	invPaths []string
}

func newFakeUpstreams(t *testing.T) *fakeUpstreams {
	f := &fakeUpstreams{}
	f.dealers = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.storeCalls.Add(1)
		if f.storeDown.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch {
		case r.URL.Path == "/fetchDealers":
			_, _ = w.Write([]byte(`[{"id":1,"state":"Texas"},{"id":2,"state":"Kansas"}]`))
		case r.URL.Path == "/fetchDealers/Kansas":
			_, _ = w.Write([]byte(`[{"id":2,"state":"Kansas"}]`))
		case r.URL.Path == "/fetchDealers/Nowhere":
			_, _ = w.Write([]byte(`[]`))
		case r.URL.Path == "/fetchDealer/15":
			_, _ = w.Write([]byte(`[{"id":15,"full_name":"Best Cars"}]`))
		case r.URL.Path == "/fetchReviews/dealer/15":
			_, _ = w.Write([]byte(`[
				{"id":1,"name":"A","dealership":15,"review":"love it","purchase":true},
				{"id":2,"name":"B","dealership":15,"review":"terrible","purchase":false},
				{"id":3,"name":"C","dealership":15,"review":"it is a car","purchase":false}]`))
		case r.URL.Path == "/fetchReviews/dealer/16":
			// empty body reads as no reviews
		case r.URL.Path == "/insert_review" && r.Method == http.MethodPost:
			var m map[string]any
			_ = json.NewDecoder(r.Body).Decode(&m)
			f.mu.Lock()
			f.inserted = append(f.inserted, m)
			f.mu.Unlock()
			if f.insertFails.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(m)
		default:
			http.NotFound(w, r)
		}
	}))
	f.sentiment = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := strings.TrimPrefix(r.URL.Path, "/analyze/")
		switch text {
		case "love it":
			_, _ = w.Write([]byte(`{"sentiment":"positive"}`))
		case "terrible":
			_, _ = w.Write([]byte(`{"sentiment":"negative"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	f.inventory = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.invPaths = append(f.invPaths, r.URL.Path)
		f.mu.Unlock()
		if r.URL.Path == "/cars/99" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"make":"Audi","model":"A4","year":2021}]`))
	}))
	t.Cleanup(func() {
		f.dealers.Close()
		f.sentiment.Close()
		f.inventory.Close()
	})
	return f
}

func upstreamClient(t *testing.T, base, service string) *upstream.Client {
	t.Helper()
	c, err := upstream.New(base, upstream.Options{Service: service, Timeout: time.Second, RPS: 1000})
	require.NoError(t, err)
	return c
}

type testAPI struct {
	*httptest.Server
	up *fakeUpstreams
}

func newTestAPI(t *testing.T, conflict409 bool) *testAPI {
	t.Helper()
	up := newFakeUpstreams(t)
	mr := miniredis.RunT(t)

	store := dealerstore.New(upstreamClient(t, up.dealers.URL, "dealers"))
	cls := sentiment.New(upstreamClient(t, up.sentiment.URL, "sentiment"))
	inv := inventory.New(upstreamClient(t, up.inventory.URL, "inventory"))
	sessions := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Dealers:             app.NewDealerService(store),
		Reviews:             app.NewReviewService(store, cls, 2),
		Inventory:           app.NewInventoryService(inv),
		Auth:                app.NewAuthService(&memUsers{users: map[string]domain.User{}}, sessions, time.Hour),
		Catalog:             app.NewCatalogService(&memCatalog{}),
		RegisterConflict409: conflict409,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &testAPI{Server: ts, up: up}
}

// client keeps cookies so a login carries over to later calls.
func (a *testAPI) client(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func call(t *testing.T, c *http.Client, method, url, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func register(t *testing.T, a *testAPI, c *http.Client) {
	t.Helper()
	code, body := call(t, c, http.MethodPost, a.URL+"/djangoapp/register",
		`{"userName":"ana","password":"pw","firstName":"Ana","lastName":"Lee","email":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Authenticated", body["status"])
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	a := newTestAPI(t, false)
	res, err := http.Get(a.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", string(b))
}

func TestGetDealers(t *testing.T) {
	a := newTestAPI(t, false)
	c := a.client(t)

	for _, path := range []string{"/djangoapp/get_dealers", "/djangoapp/get_dealers/", "/djangoapp/get_dealers/All"} {
		code, body := call(t, c, http.MethodGet, a.URL+path, "")
		require.Equal(t, http.StatusOK, code, path)
		assert.EqualValues(t, 200, body["status"])
		assert.Len(t, body["dealers"], 2, path)
	}

	_, body := call(t, c, http.MethodGet, a.URL+"/djangoapp/get_dealers/Kansas", "")
	assert.Len(t, body["dealers"], 1)

	_, body = call(t, c, http.MethodGet, a.URL+"/djangoapp/get_dealers/Nowhere", "")
	assert.Empty(t, body["dealers"])
}

func TestGetDealers_UpstreamDownIs503(t *testing.T) {
	a := newTestAPI(t, false)
	a.up.storeDown.Store(true)
	code, body := call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/get_dealers", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.EqualValues(t, 503, body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestDealerDetails(t *testing.T) {
	a := newTestAPI(t, false)
	code, body := call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/dealer/15", "")
	require.Equal(t, http.StatusOK, code)
	dealer := body["dealer"].([]any)
	require.Len(t, dealer, 1)
	assert.Equal(t, "Best Cars", dealer[0].(map[string]any)["full_name"])

	code, body = call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/dealer/zero", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Bad Request", body["message"])
}

func TestDealerReviews_LabelledInOrder(t *testing.T) {
	a := newTestAPI(t, false)
	code, body := call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/reviews/dealer/15", "")
	require.Equal(t, http.StatusOK, code)

	reviews := body["reviews"].([]any)
	require.Len(t, reviews, 3)
	want := []struct {
		id        float64
		sentiment string
	}{{1, "positive"}, {2, "negative"}, {3, "Service Error"}}
	for i, w := range want {
		r := reviews[i].(map[string]any)
		assert.Equal(t, w.id, r["id"])
		assert.Equal(t, w.sentiment, r["sentiment"])
	}
}

func TestDealerReviews_EmptyBodyIsEmptyList(t *testing.T) {
	a := newTestAPI(t, false)
	code, body := call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/reviews/dealer/16", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["reviews"])
}

func TestDealerReviews_BadIDSkipsUpstream(t *testing.T) {
	a := newTestAPI(t, false)
	code, body := call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/reviews/dealer/0", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.EqualValues(t, 400, body["status"])
	assert.Zero(t, a.up.storeCalls.Load())
}

func TestAddReview_AnonymousIs403WithoutPost(t *testing.T) {
	a := newTestAPI(t, false)
	code, body := call(t, a.client(t), http.MethodPost, a.URL+"/djangoapp/add_review", `{"review":"x"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.EqualValues(t, 403, body["status"])
	assert.Equal(t, "Unauthorized", body["message"])
	assert.Zero(t, a.up.storeCalls.Load())
}

func TestAddReview_InjectsDisplayName(t *testing.T) {
	a := newTestAPI(t, false)
	c := a.client(t)
	register(t, a, c)

	code, body := call(t, c, http.MethodPost, a.URL+"/djangoapp/add_review",
		`{"name":"Mallory","dealership":15,"review":"great","purchase":true,"car_make":"Audi"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Review submitted successfully", body["message"])

	require.Len(t, a.up.inserted, 1)
	assert.Equal(t, "Ana Lee", a.up.inserted[0]["name"])
	assert.Equal(t, "Audi", a.up.inserted[0]["car_make"])
}

func TestAddReview_BearerTokenAndFailures(t *testing.T) {
	a := newTestAPI(t, false)
	c := a.client(t)
	register(t, a, c)

	// reuse the cookie value as a bearer token from a cookie-less client
	u, _ := http.NewRequest(http.MethodGet, a.URL, nil)
	var token string
	for _, ck := range c.Jar.Cookies(u.URL) {
		if ck.Name == server.SessionCookie {
			token = ck.Value
		}
	}
	require.NotEmpty(t, token)

	req, _ := http.NewRequest(http.MethodPost, a.URL+"/djangoapp/add_review", strings.NewReader(`{not json`))
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid JSON format in request body", body["message"])

	a.up.insertFails.Store(true)
	code, body := call(t, c, http.MethodPost, a.URL+"/djangoapp/add_review", `{"review":"ok"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Error in posting review to external service", body["message"])
}

func TestLoginLogout(t *testing.T) {
	a := newTestAPI(t, false)
	c := a.client(t)
	register(t, a, c)

	code, body := call(t, c, http.MethodGet, a.URL+"/djangoapp/logout", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"username": ""}, body)

	code, _ = call(t, c, http.MethodPost, a.URL+"/djangoapp/add_review", `{"review":"x"}`)
	assert.Equal(t, http.StatusForbidden, code)

	_, body = call(t, c, http.MethodPost, a.URL+"/djangoapp/login", `{"userName":"ana","password":"nope"}`)
	assert.Equal(t, map[string]any{"userName": "ana"}, body)

	_, body = call(t, c, http.MethodPost, a.URL+"/djangoapp/login", `{"userName":"ana","password":"pw"}`)
	assert.Equal(t, map[string]any{"userName": "ana", "status": "Authenticated"}, body)

	code, _ = call(t, c, http.MethodPost, a.URL+"/djangoapp/add_review", `{"review":"x"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestRegister_Duplicate(t *testing.T) {
	for _, tc := range []struct {
		conflict409 bool
		want        int
	}{{false, http.StatusOK}, {true, http.StatusConflict}} {
		a := newTestAPI(t, tc.conflict409)
		register(t, a, a.client(t))

		code, body := call(t, a.client(t), http.MethodPost, a.URL+"/djangoapp/register", `{"userName":"ana","password":"other"}`)
		assert.Equal(t, tc.want, code)
		assert.Equal(t, map[string]any{"userName": "ana", "error": "Already Registered"}, body)
	}
}

func TestGetCars_SeedsCatalog(t *testing.T) {
	a := newTestAPI(t, false)
	code, body := call(t, a.client(t), http.MethodGet, a.URL+"/djangoapp/get_cars", "")
	require.Equal(t, http.StatusOK, code)
	models := body["CarModels"].([]any)
	assert.Len(t, models, 15)
	assert.Contains(t, models, map[string]any{"CarModel": "Camry", "CarMake": "Toyota"})
}

func TestGetInventory(t *testing.T) {
	a := newTestAPI(t, false)
	c := a.client(t)

	code, body := call(t, c, http.MethodGet, a.URL+"/djangoapp/get_inventory/3?make=Audi&year=2021", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["cars"], 1)
	assert.Equal(t, []string{"/carsbyyear/3/2021"}, a.up.invPaths)

	// upstream failure is passed through as the cars payload
	code, body = call(t, c, http.MethodGet, a.URL+"/djangoapp/get_inventory/99", "")
	require.Equal(t, http.StatusOK, code)
	cars := body["cars"].(map[string]any)
	assert.EqualValues(t, 500, cars["status"])
	assert.NotEmpty(t, cars["message"])
}

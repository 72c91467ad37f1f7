// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"dealership_api/internal/app"
	"dealership_api/internal/domain"
)

const maxRequestBody = 1 << 20

type Handlers struct {
	Dealers   *app.DealerService
	Reviews   *app.ReviewService
	Inventory *app.InventoryService
	Auth      *app.AuthService
	Catalog   *app.CatalogService

	// RegisterConflict409 answers a duplicate registration with 409
	// instead of the legacy 200.
	RegisterConflict409 bool
	SecureCookies       bool
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/djangoapp", func(r chi.Router) {
		r.Use(Session(h.Auth))

		r.Post("/login", h.login)
		r.Get("/logout", h.logout)
		r.Post("/register", h.register)

		r.Get("/get_dealers", h.listDealers)
		r.Get("/get_dealers/", h.listDealers)
		r.Get("/get_dealers/{state}", h.listDealers)
		r.Get("/dealer/{id}", h.dealerDetails)
		r.Get("/reviews/dealer/{id}", h.dealerReviews)
		r.Post("/add_review", h.addReview)

		r.Get("/get_cars", h.listCars)
		r.Get("/get_inventory/{id}", h.searchInventory)
	})
}

// ---- accounts ----

type credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(r, &c); err != nil {
		writeError(w, r, err, "")
		return
	}
	sess, err := h.Auth.Login(r.Context(), c.UserName, c.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeJSON(w, http.StatusOK, map[string]any{"userName": c.UserName})
		return
	}
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	h.setSession(w, sess.Token)
	writeJSON(w, http.StatusOK, map[string]any{"userName": sess.Principal.UserName, "status": "Authenticated"})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.Auth.Logout(r.Context(), token); err != nil {
			log.Warn().Err(err).Msg("session delete failed")
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"username": ""})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var reg app.Registration
	if err := decodeBody(r, &reg); err != nil {
		writeError(w, r, err, "")
		return
	}
	sess, err := h.Auth.Register(r.Context(), reg)
	if errors.Is(err, domain.ErrAlreadyRegistered) {
		status := http.StatusOK
		if h.RegisterConflict409 {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]any{"userName": reg.UserName, "error": "Already Registered"})
		return
	}
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	h.setSession(w, sess.Token)
	writeJSON(w, http.StatusOK, map[string]any{"userName": sess.Principal.UserName, "status": "Authenticated"})
}

func (h *Handlers) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Auth.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ---- dealers & reviews ----

func (h *Handlers) listDealers(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	if state == "" {
		state = app.AllStates
	}
	dealers, err := h.Dealers.ListDealers(r.Context(), state)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, "dealers", dealers))
}

func (h *Handlers) dealerDetails(w http.ResponseWriter, r *http.Request) {
	dealer, err := h.Dealers.DealerDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, "dealer", dealer))
}

func (h *Handlers) dealerReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.ReviewsForDealer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, "reviews", reviews))
}

func (h *Handlers) addReview(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	if p == nil {
		writeError(w, r, domain.ErrUnauthorized, "")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON format in request body")
		return
	}
	err = h.Dealers.SubmitReview(r.Context(), p, body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, envelope(http.StatusOK, "message", "Review submitted successfully"))
	case errors.Is(err, domain.ErrBadRequest):
		writeMessage(w, http.StatusBadRequest, "Invalid JSON format in request body")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, r, err, "")
	default:
		// every other failure, upstream outage included, is a generic 500
		log.Error().Err(err).Str("user", p.UserName).Msg("add review failed")
		writeMessage(w, http.StatusInternalServerError, "Error in posting review to external service")
	}
}

// ---- cars ----

func (h *Handlers) listCars(w http.ResponseWriter, r *http.Request) {
	models, err := h.Catalog.ListCarModels(r.Context())
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	if models == nil {
		models = []domain.CarModelView{}
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, "CarModels", models))
}

func (h *Handlers) searchInventory(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Inventory.Search(r.Context(), chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, "cars", cars))
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(out); err != nil {
		return errors.Join(domain.ErrBadRequest, err)
	}
	return nil
}

package router

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/movie-watchlist/internal/config"
	"github.com/deppfellow/movie-watchlist/internal/handler"
	"github.com/deppfellow/movie-watchlist/internal/metrics"
	"github.com/deppfellow/movie-watchlist/internal/middleware"
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/deppfellow/movie-watchlist/internal/service"
	"github.com/deppfellow/movie-watchlist/internal/service/servicetest"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

const inception = `{"title":"Inception","genre":"Sci-Fi","year":2010,"rating":8.8,"watched":true,"notes":"Amazing movie"}`

func newTestRouter(t *testing.T, configure func(*config.Config)) (*echo.Echo, *servicetest.MovieStore) {
	t.Helper()
	logger := zerolog.Nop()
	return newTestRouterWithLogger(t, &logger, configure)
}

func newTestRouterWithLogger(t *testing.T, logger *zerolog.Logger, configure func(*config.Config)) (*echo.Echo, *servicetest.MovieStore) {
	t.Helper()

	cfg := config.Default()
	cfg.Primary.Env = "test"
	cfg.Server.StaticDir = "../../static"
	if configure != nil {
		configure(cfg)
	}

	s := &server.Server{
		Config: cfg,
		Logger: logger,
	}

	store := servicetest.NewMovieStore()
	services := &service.Services{Movie: service.NewMovieService(store, logger)}

	return NewRouter(s, handler.NewHandlers(s, services)), store
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response %q is not valid JSON: %v", rec.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func TestCreateMovie(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	rec := do(t, e, http.MethodPost, "/movie/movie-1", inception)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}

	movie := decodeBody[model.Movie](t, rec)
	if movie.ID != "movie-1" || movie.Title != "Inception" {
		t.Errorf("created movie = %+v", movie)
	}
	if movie.StorageID == "" {
		t.Error("response is missing the stringified _id")
	}
	if !strings.Contains(rec.Body.String(), `"title":"Inception"`) || !strings.Contains(rec.Body.String(), `"id":"movie-1"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = do(t, e, http.MethodPost, "/movie/movie-1", `{"title":"Other"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second POST status = %d, want 409", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != service.MsgMovieExists {
		t.Errorf("conflict body = %+v", got)
	}
}

func TestCreateMovie_BadRequests(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantError  string
		wantErrors []string
	}{
		{name: "no body", body: "", wantError: "No data provided"},
		{name: "empty object", body: "{}", wantError: "No data provided"},
		{name: "null", body: "null", wantError: "No data provided"},
		{name: "malformed json", body: `{"title":`, wantError: "Invalid JSON body"},
		{name: "not an object", body: `["Inception"]`, wantError: "Invalid JSON body"},
		{
			name:       "year out of range",
			body:       `{"title":"Test Movie","year":2200}`,
			wantErrors: []string{"Year must be between 1800 and 2100"},
		},
		{
			name:       "several problems",
			body:       `{"year":"later","rating":"ten"}`,
			wantErrors: []string{"Title is required", "Year must be a number", "Rating must be a number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store := newTestRouter(t, nil)

			rec := do(t, e, http.MethodPost, "/movie/m", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}

			got := decodeBody[errorBody](t, rec)
			if got.Error != tt.wantError {
				t.Errorf("error = %q, want %q", got.Error, tt.wantError)
			}
			if strings.Join(got.Errors, "|") != strings.Join(tt.wantErrors, "|") {
				t.Errorf("errors = %q, want %q", got.Errors, tt.wantErrors)
			}
			if store.Inserts != 0 {
				t.Errorf("rejected request inserted %d movies", store.Inserts)
			}
		})
	}
}

func TestCreateMovie_BodyTooLarge(t *testing.T) {
	e, store := newTestRouter(t, nil)

	body := `{"title":"Long","notes":"` + strings.Repeat("x", 2<<20) + `"}`
	rec := do(t, e, http.MethodPost, "/movie/m", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != "Request Entity Too Large" {
		t.Errorf("body = %+v", got)
	}
	if store.Inserts != 0 {
		t.Errorf("oversized request inserted %d movies", store.Inserts)
	}
}

func TestCreateMovie_LongID(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	id := strings.Repeat("a", 300)
	rec := do(t, e, http.MethodPost, "/movie/"+id, `{"title":"Long"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[model.Movie](t, rec); got.ID != id {
		t.Errorf("id = %q, want the 300 character id", got.ID)
	}
}

func TestMovieLogLinesCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e, _ := newTestRouterWithLogger(t, &logger, nil)

	for _, step := range []struct {
		method string
		body   string
	}{
		{http.MethodPost, inception},
		{http.MethodPut, `{"title":"Inception"}`},
		{http.MethodDelete, ""},
	} {
		req := httptest.NewRequest(step.method, "/movie/movie-7", strings.NewReader(step.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(middleware.RequestIDHeader, "req-"+strings.ToLower(step.method))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code >= http.StatusBadRequest {
			t.Fatalf("%s status = %d, body %s", step.method, rec.Code, rec.Body.String())
		}
	}

	want := map[string]string{
		"movie created": "req-post",
		"movie updated": "req-put",
		"movie deleted": "req-delete",
	}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry struct {
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
			MovieID   string `json:"movie_id"`
		}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		requestID, ok := want[entry.Message]
		if !ok {
			continue
		}
		if entry.RequestID != requestID || entry.MovieID != "movie-7" {
			t.Errorf("%q logged request_id=%q movie_id=%q, want %q and movie-7",
				entry.Message, entry.RequestID, entry.MovieID, requestID)
		}
		delete(want, entry.Message)
	}
	for msg := range want {
		t.Errorf("no %q log line", msg)
	}
}

func TestMovieLifecycle(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	if rec := do(t, e, http.MethodPost, "/movie/movie-1", inception); rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d", rec.Code)
	}

	rec := do(t, e, http.MethodPut, "/movie/movie-1", `{"title":"Inception (2010)","rating":9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[model.Movie](t, rec)
	if updated.Title != "Inception (2010)" || updated.Genre != "" || updated.Watched || updated.Year != nil {
		t.Errorf("PUT must replace every field, got %+v", updated)
	}
	if updated.Rating == nil || *updated.Rating != 9 {
		t.Errorf("rating = %v, want 9", updated.Rating)
	}

	rec = do(t, e, http.MethodGet, "/movie/movie-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}

	rec = do(t, e, http.MethodGet, "/movie", "")
	if ids := decodeBody[[]string](t, rec); len(ids) != 1 || ids[0] != "movie-1" {
		t.Errorf("GET /movie = %v", ids)
	}

	rec = do(t, e, http.MethodGet, "/movies", "")
	if movies := decodeBody[[]model.Movie](t, rec); len(movies) != 1 || movies[0].Title != "Inception (2010)" {
		t.Errorf("GET /movies = %+v", movies)
	}

	rec = do(t, e, http.MethodDelete, "/movie/movie-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if msg := decodeBody[model.Message](t, rec); msg.Message != service.MsgMovieDeleted {
		t.Errorf("DELETE body = %+v", msg)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = do(t, e, method, "/movie/movie-1", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete status = %d, want 404", method, rec.Code)
		}
		if got := decodeBody[errorBody](t, rec); got.Error != service.MsgMovieNotFound {
			t.Errorf("%s after delete body = %+v", method, got)
		}
	}
}

func TestUpdateMissingMovie(t *testing.T) {
	e, store := newTestRouter(t, nil)

	rec := do(t, e, http.MethodPut, "/movie/ghost", `{"title":"Nobody"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if store.Inserts != 0 {
		t.Error("PUT on a missing id must not insert")
	}
}

func TestEmptyLists(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	for _, path := range []string{"/movie", "/movies"} {
		rec := do(t, e, http.MethodGet, path, "")
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("GET %s = %d %q, want 200 []", path, rec.Code, rec.Body.String())
		}
	}
}

func TestHealthAndAppMetrics(t *testing.T) {
	e, store := newTestRouter(t, nil)

	for i, watched := range []bool{true, true, false} {
		body := `{"title":"M","watched":false}`
		if watched {
			body = `{"title":"M","watched":true}`
		}
		if rec := do(t, e, http.MethodPost, "/movie/m"+string(rune('a'+i)), body); rec.Code != http.StatusCreated {
			t.Fatalf("seed POST status = %d", rec.Code)
		}
	}

	rec := do(t, e, http.MethodGet, "/app-metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/app-metrics status = %d", rec.Code)
	}
	counters := decodeBody[model.AppMetrics](t, rec)
	if counters.TotalMovies != 3 || counters.Watched != 2 || counters.Unwatched != 1 || counters.Timestamp == "" {
		t.Errorf("/app-metrics = %+v", counters)
	}

	// Liveness must not depend on the store.
	store.Err = errors.New("no reachable servers")
	rec = do(t, e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/health status = %d", rec.Code)
	}
	if health := decodeBody[model.Health](t, rec); health.Status != "healthy" {
		t.Errorf("/health = %+v", health)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	e, store := newTestRouter(t, nil)
	store.Err = errors.New("no reachable servers")

	rec := do(t, e, http.MethodGet, "/movie/m", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != "Internal Server Error" {
		t.Errorf("body = %+v, driver details must not leak", got)
	}
}

func TestRouteErrors(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	rec := do(t, e, http.MethodGet, "/nowhere", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != "Route not found" {
		t.Errorf("unknown route body = %+v", got)
	}

	rec = do(t, e, http.MethodPatch, "/movie/m", `{"title":"A"}`)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH status = %d", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != "Method Not Allowed" {
		t.Errorf("PATCH body = %+v", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	rec := do(t, e, http.MethodGet, "/health", "")
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response is missing a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "upstream-42")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(middleware.RequestIDHeader); got != "upstream-42" {
		t.Errorf("request id = %q, want the upstream one", got)
	}
}

func TestRateLimit(t *testing.T) {
	e, _ := newTestRouter(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 2
	})

	before := testutil.ToFloat64(metrics.RateLimitHits.WithLabelValues("/movie"))

	for i := 0; i < 2; i++ {
		if rec := do(t, e, http.MethodGet, "/movie", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}

	rec := do(t, e, http.MethodGet, "/movie", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != "Too many requests" {
		t.Errorf("429 body = %+v", got)
	}
	if after := testutil.ToFloat64(metrics.RateLimitHits.WithLabelValues("/movie")); after != before+1 {
		t.Errorf("rate limit hits = %v, want %v", after, before+1)
	}

	// Liveness is never limited.
	if rec := do(t, e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("/health status = %d while limited", rec.Code)
	}
}

func TestHTTPMetrics(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	created := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/movie/:id", "201")
	rejected := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/movie/:id", "400")
	createdBefore, rejectedBefore := testutil.ToFloat64(created), testutil.ToFloat64(rejected)

	do(t, e, http.MethodPost, "/movie/metrics-1", inception)
	do(t, e, http.MethodPost, "/movie/metrics-2", "")

	if got := testutil.ToFloat64(created) - createdBefore; got != 1 {
		t.Errorf("201 counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rejected) - rejectedBefore; got != 1 {
		t.Errorf("400 counter delta = %v, want 1", got)
	}

	rec := do(t, e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "watchlist_http_requests_total") {
		t.Errorf("/metrics = %d, missing watchlist collectors", rec.Code)
	}
}

func TestStaticPages(t *testing.T) {
	e, _ := newTestRouter(t, nil)

	for _, path := range []string{"/", "/docs", "/static/openapi.json"} {
		rec := do(t, e, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
		}
	}

	// The landing page drives every movie route it exposes.
	page := do(t, e, http.MethodGet, "/", "").Body.String()
	for _, call := range []string{`"POST"`, `"PUT"`, `method: "DELETE"`, `fetch("/movie/" + encodeURIComponent(id))`} {
		if !strings.Contains(page, call) {
			t.Errorf("landing page is missing %s", call)
		}
	}
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/movie-watchlist/internal/errs"
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/deppfellow/movie-watchlist/internal/service/servicetest"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*MovieService, *servicetest.MovieStore) {
	t.Helper()
	store := servicetest.NewMovieStore()
	logger := zerolog.Nop()
	svc := NewMovieService(store, &logger)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func payload(t *testing.T, body string) *model.MoviePayload {
	t.Helper()
	p, err := model.DecodeMoviePayload([]byte(body))
	if err != nil {
		t.Fatalf("DecodeMoviePayload(%s) error = %v", body, err)
	}
	return p
}

func assertHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *errs.HTTPError", err)
	}
	if httpErr.Status != status || httpErr.Message != message {
		t.Fatalf("error = %d %q, want %d %q", httpErr.Status, httpErr.Message, status, message)
	}
}

func TestMovieService_CreateThenGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "movie-1", payload(t,
		`{"title":"Inception","genre":"Sci-Fi","year":2010,"rating":8.8,"watched":true,"notes":"Amazing movie"}`))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != "movie-1" || created.StorageID == "" {
		t.Errorf("created = %+v, want id and storage id", created)
	}
	if created.CreatedAt != model.FormatTimestamp(fixedNow) {
		t.Errorf("CreatedAt = %q", created.CreatedAt)
	}

	got, err := svc.Get(ctx, "movie-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Inception" || got.Genre != "Sci-Fi" || *got.Year != 2010 ||
		*got.Rating != 8.8 || !got.Watched || got.Notes != "Amazing movie" {
		t.Errorf("Get() = %+v", got)
	}
	if got.StorageID != created.StorageID {
		t.Errorf("StorageID = %q, want %q", got.StorageID, created.StorageID)
	}
}

func TestMovieService_CreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), "heat", payload(t, `{"title":"Heat"}`))
	if err != nil {
		t.Fatal(err)
	}
	if created.Genre != "" || created.Notes != "" || created.Watched || created.Year != nil || created.Rating != nil {
		t.Errorf("defaults not applied: %+v", created)
	}
}

func TestMovieService_CreateDuplicate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "movie-1", payload(t, `{"title":"Original"}`)); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, "movie-1", payload(t, `{"title":"Impostor"}`))
	assertHTTPError(t, err, http.StatusConflict, MsgMovieExists)

	got, err := svc.Get(ctx, "movie-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Original" {
		t.Errorf("existing movie was modified: %+v", got)
	}
	if store.Inserts != 1 {
		t.Errorf("Inserts = %d, want 1", store.Inserts)
	}
}

func TestMovieService_UpdateIsFullReplace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "m", payload(t, `{"title":"A","genre":"Drama","year":1999,"rating":7,"watched":true,"notes":"n"}`)); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, "m", payload(t, `{"title":"B"}`))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "B" || updated.Genre != "" || updated.Year != nil ||
		updated.Rating != nil || updated.Watched || updated.Notes != "" {
		t.Errorf("update kept old fields: %+v", updated)
	}
	if updated.UpdatedAt != model.FormatTimestamp(fixedNow) {
		t.Errorf("UpdatedAt = %q", updated.UpdatedAt)
	}
	if updated.CreatedAt == "" {
		t.Error("CreatedAt lost on update")
	}
}

func TestMovieService_UpdateMissing(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Update(context.Background(), "ghost", payload(t, `{"title":"B"}`))
	assertHTTPError(t, err, http.StatusNotFound, MsgMovieNotFound)

	if store.Inserts != 0 {
		t.Errorf("update of a missing movie inserted %d records", store.Inserts)
	}
}

func TestMovieService_DeleteThenGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "m", payload(t, `{"title":"A"}`)); err != nil {
		t.Fatal(err)
	}

	msg, err := svc.Delete(ctx, "m")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if msg.Message != MsgMovieDeleted {
		t.Errorf("Delete() message = %q", msg.Message)
	}

	_, err = svc.Get(ctx, "m")
	assertHTTPError(t, err, http.StatusNotFound, MsgMovieNotFound)

	_, err = svc.Delete(ctx, "m")
	assertHTTPError(t, err, http.StatusNotFound, MsgMovieNotFound)
}

func TestMovieService_Lists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ids, err := svc.ListIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("ListIDs() on empty store = %#v, want empty non-nil slice", ids)
	}

	for _, id := range []string{"c", "a", "b"} {
		if _, err := svc.Create(ctx, id, payload(t, `{"title":"`+id+`"}`)); err != nil {
			t.Fatal(err)
		}
	}

	ids, err = svc.ListIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(ids) != "[c a b]" {
		t.Errorf("ListIDs() = %v, want store order [c a b]", ids)
	}

	movies, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 3 || movies[0].StorageID == "" {
		t.Errorf("ListAll() = %+v", movies)
	}
}

func TestMovieService_AppMetrics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		body := fmt.Sprintf(`{"title":"Movie %d","watched":%t}`, i, i < 6)
		if _, err := svc.Create(ctx, fmt.Sprintf("movie-%d", i), payload(t, body)); err != nil {
			t.Fatal(err)
		}
	}

	m, err := svc.AppMetrics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalMovies != 10 || m.Watched != 6 || m.Unwatched != 4 {
		t.Errorf("AppMetrics() = %+v, want 10/6/4", m)
	}
	if m.Timestamp != model.FormatTimestamp(fixedNow) {
		t.Errorf("Timestamp = %q", m.Timestamp)
	}
}

func TestMovieService_StoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	storeErr := errors.New("server selection timeout")
	store.Err = storeErr

	if _, err := svc.Get(context.Background(), "m"); !errors.Is(err, storeErr) {
		t.Errorf("Get() error = %v, want store error", err)
	}
	if _, err := svc.Create(context.Background(), "m", payload(t, `{"title":"A"}`)); !errors.Is(err, storeErr) {
		t.Errorf("Create() error = %v, want store error", err)
	}
	if _, err := svc.AppMetrics(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("AppMetrics() error = %v, want store error", err)
	}
}

func TestMovieService_Health(t *testing.T) {
	svc, store := newTestService(t)
	store.Err = errors.New("down")

	h := svc.Health()
	if h.Status != "healthy" || h.Timestamp == "" {
		t.Errorf("Health() = %+v", h)
	}
}

func TestMovieService_LogsWithoutRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	svc := NewMovieService(servicetest.NewMovieStore(), &logger)

	if _, err := svc.Create(context.Background(), "movie-9", payload(t, `{"title":"Heat"}`)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	line := buf.String()
	if !strings.Contains(line, `"movie_id":"movie-9"`) || !strings.Contains(line, `"message":"movie created"`) {
		t.Errorf("log line = %s, want movie created with movie_id", line)
	}
}

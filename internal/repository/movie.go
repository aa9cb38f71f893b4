package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/movie-watchlist/internal/metrics"
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// movieDocument is the stored shape of a movie.
//
// It is the only place that knows about primitive.ObjectID; everything
// above the repository sees model.Movie with the identity as a string.
type movieDocument struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty"`
	ID        string             `bson:"id"`
	Title     string             `bson:"title"`
	Genre     string             `bson:"genre"`
	Year      *int               `bson:"year"`
	Rating    *float64           `bson:"rating"`
	Watched   bool               `bson:"watched"`
	Notes     string             `bson:"notes"`
	CreatedAt string             `bson:"created_at,omitempty"`
	UpdatedAt string             `bson:"updated_at,omitempty"`
}

func toDocument(m *model.Movie) movieDocument {
	return movieDocument{
		ID:        m.ID,
		Title:     m.Title,
		Genre:     m.Genre,
		Year:      m.Year,
		Rating:    m.Rating,
		Watched:   m.Watched,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// toModel is the representation pass: the ObjectID becomes its hex string.
func (d movieDocument) toModel() model.Movie {
	m := model.Movie{
		ID:        d.ID,
		Title:     d.Title,
		Genre:     d.Genre,
		Year:      d.Year,
		Rating:    d.Rating,
		Watched:   d.Watched,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if !d.ObjectID.IsZero() {
		m.StorageID = d.ObjectID.Hex()
	}
	return m
}

// MovieRepository stores movies in one MongoDB collection.
//
// Every method issues exactly one driver call and is bounded by timeout.
type MovieRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMovieRepository binds a repository to coll.
func NewMovieRepository(coll *mongo.Collection, timeout time.Duration) *MovieRepository {
	return &MovieRepository{coll: coll, timeout: timeout}
}

func (r *MovieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// observe records the duration and outcome of one store call.
func observe(operation string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, model.ErrMovieNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.RecordStoreOperation(operation, outcome, time.Since(start))
}

// FindByID returns the movie with the given caller-supplied id.
// A missing movie is reported as model.ErrMovieNotFound.
func (r *MovieRepository) FindByID(ctx context.Context, id string) (_ *model.Movie, err error) {
	defer func(start time.Time) { observe("find_one", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc movieDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrMovieNotFound
		}
		return nil, errors.Wrapf(err, "find movie %q", id)
	}

	movie := doc.toModel()
	return &movie, nil
}

// Insert stores m and returns the store-assigned identity as a hex string.
func (r *MovieRepository) Insert(ctx context.Context, m *model.Movie) (_ string, err error) {
	defer func(start time.Time) { observe("insert_one", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.InsertOne(ctx, toDocument(m))
	if err != nil {
		return "", errors.Wrapf(err, "insert movie %q", m.ID)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(result.InsertedID), nil
}

// Update overwrites every mutable field of the movie with the given id and
// sets updated_at. It returns the number of matched documents.
func (r *MovieRepository) Update(ctx context.Context, id string, fields model.MovieFields, updatedAt string) (_ int64, err error) {
	defer func(start time.Time) { observe("update_one", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":      fields.Title,
		"genre":      fields.Genre,
		"year":       fields.Year,
		"rating":     fields.Rating,
		"watched":    fields.Watched,
		"notes":      fields.Notes,
		"updated_at": updatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return 0, errors.Wrapf(err, "update movie %q", id)
	}
	return result.MatchedCount, nil
}

// Delete removes the movie with the given id and returns the deleted count.
func (r *MovieRepository) Delete(ctx context.Context, id string) (_ int64, err error) {
	defer func(start time.Time) { observe("delete_one", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return 0, errors.Wrapf(err, "delete movie %q", id)
	}
	return result.DeletedCount, nil
}

// Count returns the number of movies matching filter.
func (r *MovieRepository) Count(ctx context.Context, filter model.MovieFilter) (_ int64, err error) {
	defer func(start time.Time) { observe("count", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.Watched != nil {
		query["watched"] = *filter.Watched
	}

	n, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "count movies")
	}
	return n, nil
}

// Find returns every movie in natural store order.
func (r *MovieRepository) Find(ctx context.Context) (_ []model.Movie, err error) {
	defer func(start time.Time) { observe("find", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "find movies")
	}

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode movies")
	}

	movies := make([]model.Movie, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, doc.toModel())
	}
	return movies, nil
}

// FindIDs returns the id of every movie in natural store order.
func (r *MovieRepository) FindIDs(ctx context.Context) (_ []string, err error) {
	defer func(start time.Time) { observe("find_ids", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 0, "id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find movie ids")
	}

	var rows []struct {
		ID string `bson:"id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode movie ids")
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MovieIDIndex is the name of the unique index on the caller-supplied id.
const MovieIDIndex = "movie_id_unique"

// EnsureIndexes creates the indexes the movie collection relies on.
//
// MongoDB has no schema to migrate, so this is the whole start-up
// bootstrap. CreateMany is idempotent for identical index definitions,
// so running it on every boot is fine.
//
//   - movie_id_unique: {id: 1}, unique. Backs the existence check done
//     before every insert when two creates for one id race.
//   - watched: {watched: 1}. Serves the watched count of /app-metrics.
func EnsureIndexes(ctx context.Context, logger *zerolog.Logger, coll *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(MovieIDIndex),
		},
		{
			Keys:    bson.D{{Key: "watched", Value: 1}},
			Options: options.Index().SetName("watched"),
		},
	}

	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("creating indexes on %s: %w", coll.Name(), err)
	}

	logger.Info().
		Str("collection", coll.Name()).
		Strs("indexes", names).
		Msg("collection indexes ensured")
	return nil
}

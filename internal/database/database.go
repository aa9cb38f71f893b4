// Package database contains the logic for establishing
// connections to MongoDB.
//
// It handles:
//   - creating the mongo client from config
//   - wiring command logging (local env) and New Relic (nrmongo) monitors
//   - pinging at start-up so a wrong URI fails fast
//   - creating the indexes the movie collection relies on
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/movie-watchlist/internal/config"
	loggerConfig "github.com/deppfellow/movie-watchlist/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database wraps the mongo client and the database handle.
//
// The client is safe for concurrent use and is shared by every request.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *zerolog.Logger
}

// commandLogger is an event.CommandMonitor that prints every command.
//
// Started events are kept until the matching Succeeded/Failed event arrives
// so the finished line can carry the command name and database.
type commandLogger struct {
	log           zerolog.Logger
	slowThreshold time.Duration

	mu      sync.Mutex
	pending map[int64]*event.CommandStartedEvent
}

func newCommandLogger(log zerolog.Logger, slowThreshold time.Duration) *commandLogger {
	return &commandLogger{
		log:           log,
		slowThreshold: slowThreshold,
		pending:       make(map[int64]*event.CommandStartedEvent),
	}
}

func (cl *commandLogger) monitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started:   cl.started,
		Succeeded: cl.succeeded,
		Failed:    cl.failed,
	}
}

func (cl *commandLogger) started(_ context.Context, evt *event.CommandStartedEvent) {
	cl.mu.Lock()
	cl.pending[evt.RequestID] = evt
	cl.mu.Unlock()

	cl.log.Debug().
		Int64("request_id", evt.RequestID).
		Str("command", evt.CommandName).
		Str("database", evt.DatabaseName).
		Str("body", evt.Command.String()).
		Msg("mongo command started")
}

func (cl *commandLogger) take(requestID int64) *event.CommandStartedEvent {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	evt := cl.pending[requestID]
	delete(cl.pending, requestID)
	return evt
}

func (cl *commandLogger) database(requestID int64) string {
	if started := cl.take(requestID); started != nil {
		return started.DatabaseName
	}
	return ""
}

func (cl *commandLogger) succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	database := cl.database(evt.RequestID)

	e := cl.log.Debug()
	if cl.slowThreshold > 0 && evt.Duration >= cl.slowThreshold {
		e = cl.log.Warn().Bool("slow", true)
	}
	e.Int64("request_id", evt.RequestID).
		Str("database", database).
		Str("command", evt.CommandName).
		Dur("duration", evt.Duration).
		Msg("mongo command succeeded")
}

func (cl *commandLogger) failed(_ context.Context, evt *event.CommandFailedEvent) {
	database := cl.database(evt.RequestID)

	cl.log.Error().
		Int64("request_id", evt.RequestID).
		Str("database", database).
		Str("command", evt.CommandName).
		Dur("duration", evt.Duration).
		Str("failure", evt.Failure).
		Msg("mongo command failed")
}

// buildMonitor returns the command monitor for the client, or nil.
//
// In the local env a commandLogger prints every command. With New Relic
// enabled, nrmongo wraps that monitor (or nil) and forwards each event to
// it after recording the datastore segment, so both run.
func buildMonitor(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) *event.CommandMonitor {
	var monitor *event.CommandMonitor

	if cfg.Primary.Env == "local" {
		mongoLogger := loggerConfig.NewMongoLogger(logger.GetLevel())
		monitor = newCommandLogger(mongoLogger, cfg.Observability.Logging.SlowQueryThreshold).monitor()
	}

	if loggerService.GetApplication() != nil {
		monitor = nrmongo.NewCommandMonitor(monitor)
	}

	return monitor
}

// New connects to MongoDB and verifies the connection.
//
// Behavior:
//   - Apply the URI and the command monitor
//   - Connect, then ping the primary within database.connect_timeout
//   - Return a Database bound to database.name
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetAppName(cfg.Observability.ServiceName)

	if monitor := buildMonitor(cfg, logger, loggerService); monitor != nil {
		clientOpts.SetMonitor(monitor)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("database", cfg.Database.Name).
		Msg("connected to the database")

	return &Database{
		Client: client,
		DB:     client.Database(cfg.Database.Name),
		log:    logger,
	}, nil
}

// Collection returns a handle on the named collection.
func (db *Database) Collection(name string) *mongo.Collection {
	return db.DB.Collection(name)
}

// Close disconnects the client, waiting for in-flight operations until ctx ends.
func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")
	return db.Client.Disconnect(ctx)
}

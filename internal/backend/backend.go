// Package backend picks the storage medium once at startup and reports on it afterwards.
//
// Select probes MongoDB with a bounded timeout. When the probe succeeds every request is
// served from the database for the lifetime of the process; otherwise the process commits
// to the in-memory repository. There is no later promotion or demotion.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/todoapp/todo-api/internal/config"
	"github.com/todoapp/todo-api/internal/repository"
)

type Kind string

const (
	KindMongo  Kind = "mongo"
	KindMemory Kind = "memory"
)

// Database status values reported by the health endpoint.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusError        = "error"
)

type Backend struct {
	kind    Kind
	todos   repository.TodoRepository
	client  *mongo.Client
	db      *mongo.Database
	coll    *mongo.Collection
	timeout time.Duration
}

// Info is the diagnostic snapshot served by /api/db-info.
type Info struct {
	Connected   bool     `json:"connected"`
	Database    string   `json:"database,omitempty"`
	Collections []string `json:"collections,omitempty"`
	TodosCount  *int64   `json:"todos_count,omitempty"`
	Status      string   `json:"status,omitempty"`
	Message     string   `json:"message,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Select runs the one-time backend probe. It never fails: any problem reaching
// MongoDB is logged and the in-memory repository is returned instead.
func Select(ctx context.Context, cfg config.MongoConfig, mode string, logger *slog.Logger) *Backend {
	if mode == config.StorageModeMemory {
		logger.Info("storage mode forced to memory, skipping mongodb probe")
		return NewMemory()
	}

	client, err := repository.NewMongoClient(ctx, cfg.URI, cfg.ConnectTimeout)
	if err != nil {
		logger.Warn("mongodb unavailable, falling back to in-memory storage", "error", err)
		return NewMemory()
	}

	db := client.Database(cfg.Database)
	coll := db.Collection(cfg.Collection)

	indexCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()
	if err := repository.EnsureIndexes(indexCtx, coll); err != nil {
		logger.Warn("mongodb index creation failed", "error", err)
	}

	logger.Info("mongodb connected",
		"database", cfg.Database,
		"collection", cfg.Collection,
	)

	return NewMongo(client, coll, cfg.OperationTimeout)
}

// NewMongo wraps an already connected client. coll must belong to client.
func NewMongo(client *mongo.Client, coll *mongo.Collection, opTimeout time.Duration) *Backend {
	if opTimeout <= 0 {
		opTimeout = repository.DefaultOperationTimeout
	}
	return &Backend{
		kind:    KindMongo,
		todos:   repository.NewMongoTodo(coll, opTimeout),
		client:  client,
		db:      coll.Database(),
		coll:    coll,
		timeout: opTimeout,
	}
}

func NewMemory() *Backend {
	return &Backend{
		kind:  KindMemory,
		todos: repository.NewMemoryTodo(),
	}
}

func (b *Backend) Kind() Kind {
	return b.kind
}

func (b *Backend) Todos() repository.TodoRepository {
	return b.todos
}

// Persistent reports whether the process committed to MongoDB at startup.
func (b *Backend) Persistent() bool {
	return b.kind == KindMongo
}

// Status re-pings MongoDB. It reports disconnected for the in-memory backend.
func (b *Backend) Status(ctx context.Context) string {
	if !b.Persistent() {
		return StatusDisconnected
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.client.Ping(ctx, readpref.Primary()); err != nil {
		return StatusError
	}
	return StatusConnected
}

func (b *Backend) Info(ctx context.Context) Info {
	if !b.Persistent() {
		return Info{
			Status:  StatusDisconnected,
			Message: "Database is not connected. Using in-memory storage.",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	collections, err := b.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return Info{Connected: false, Error: err.Error()}
	}
	count, err := b.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return Info{Connected: false, Error: err.Error()}
	}

	return Info{
		Connected:   true,
		Database:    b.db.Name(),
		Collections: collections,
		TodosCount:  &count,
	}
}

// Close disconnects the MongoDB client, if any.
func (b *Backend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongodb: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "users"
	ProfilesCollection = "profiles"
	OrdersCollection   = "orders"

	smokeCollection = "test_connection"
	connectTimeout  = 10 * time.Second
)

var (
	// ErrNotConnected is returned when the manager is used before Connect succeeded.
	ErrNotConnected = errors.New("database not connected")

	// ErrConnection wraps failures to reach the server.
	ErrConnection = errors.New("database connection failed")
)

// Manager owns the process-wide MongoDB client. It is built once in main and
// handed to whatever needs the database.
type Manager struct {
	uri    string
	name   string
	log    zerolog.Logger
	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func NewManager(uri, name string, log zerolog.Logger) *Manager {
	return &Manager{
		uri:  uri,
		name: name,
		log:  log.With().Str("component", "db").Logger(),
	}
}

// Connect dials and pings the server. Calling it again after a successful
// connect is a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	m.client = client
	m.db = client.Database(m.name)
	m.log.Info().Str("database", m.name).Msg("connected to MongoDB")
	return nil
}

// Database returns the handle services borrow their collections from.
func (m *Manager) Database() (*mongo.Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return nil, ErrNotConnected
	}
	return m.db, nil
}

func (m *Manager) Name() string {
	return m.name
}

// CollectionInfo describes one collection of the database.
type CollectionInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Collections lists the collections of the database.
func (m *Manager) Collections(ctx context.Context) ([]CollectionInfo, error) {
	database, err := m.Database()
	if err != nil {
		return nil, err
	}

	specs, err := database.ListCollectionSpecifications(ctx, bson.D{})
	if err != nil {
		m.log.Error().Err(err).Msg("listing collections failed")
		return nil, err
	}

	infos := make([]CollectionInfo, 0, len(specs))
	for _, s := range specs {
		infos = append(infos, CollectionInfo{Name: s.Name, Type: s.Type})
	}
	return infos, nil
}

// Stats is the subset of dbStats the service exposes.
type Stats struct {
	DB          string  `bson:"db" json:"db"`
	Collections int64   `bson:"collections" json:"collections"`
	Objects     int64   `bson:"objects" json:"objects"`
	DataSize    float64 `bson:"dataSize" json:"dataSize"`
	StorageSize float64 `bson:"storageSize" json:"storageSize"`
	IndexSize   float64 `bson:"indexSize" json:"indexSize"`
	Indexes     int64   `bson:"indexes" json:"indexes"`
}

// Stats runs dbStats. Failures are logged and returned.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	database, err := m.Database()
	if err != nil {
		return stats, err
	}

	if err := database.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&stats); err != nil {
		m.log.Error().Err(err).Msg("dbStats failed")
		return stats, err
	}

	m.log.Debug().
		Int64("collections", stats.Collections).
		Float64("dataSize", stats.DataSize).
		Float64("indexSize", stats.IndexSize).
		Float64("storageSize", stats.StorageSize).
		Msg("database stats")
	return stats, nil
}

// SmokeResult reports a write/read/delete round trip.
type SmokeResult struct {
	InsertedID       primitive.ObjectID `json:"inserted_id"`
	Found            bson.M             `json:"found_document"`
	CollectionsCount int                `json:"collections_count"`
}

// SmokeTest inserts a document into a scratch collection, reads it back and
// deletes it again.
func (m *Manager) SmokeTest(ctx context.Context) (SmokeResult, error) {
	var res SmokeResult

	database, err := m.Database()
	if err != nil {
		return res, err
	}

	coll := database.Collection(smokeCollection)
	doc := bson.M{
		"_id":       primitive.NewObjectID(),
		"message":   "Hello MongoDB!",
		"timestamp": time.Now(),
		"test":      true,
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return res, fmt.Errorf("insert test document: %w", err)
	}
	res.InsertedID = doc["_id"].(primitive.ObjectID)

	if err := coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&res.Found); err != nil {
		return res, fmt.Errorf("find test document: %w", err)
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": res.InsertedID}); err != nil {
		return res, fmt.Errorf("delete test document: %w", err)
	}

	names, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return res, fmt.Errorf("list collections: %w", err)
	}
	res.CollectionsCount = len(names)

	m.log.Info().Str("id", res.InsertedID.Hex()).Msg("smoke test round trip succeeded")
	return res, nil
}

// EnsureIndexes creates the indexes the services rely on, including the
// unique index that backs email uniqueness on register.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	database, err := m.Database()
	if err != nil {
		return err
	}

	createdAt := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	plan := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			createdAt,
		},
		ProfilesCollection: {
			createdAt,
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		OrdersCollection: {
			createdAt,
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "buyerId", Value: 1}}},
			{Keys: bson.D{{Key: "sellerId", Value: 1}}},
		},
	}

	var errs []error
	for coll, models := range plan {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			errs = append(errs, fmt.Errorf("%s indexes: %w", coll, err))
		}
	}
	return errors.Join(errs...)
}

// Disconnect releases the client. It is safe to call when never connected
// and safe to call twice.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}

	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil
	if err != nil {
		m.log.Error().Err(err).Msg("disconnect failed")
		return err
	}

	m.log.Info().Msg("MongoDB connection closed")
	return nil
}

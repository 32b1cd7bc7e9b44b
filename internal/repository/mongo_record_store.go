package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used by MongoRecordStore.
const (
	CollectionProgress    = "progress"
	CollectionTaskHistory = "task_history"
	CollectionMetrics     = "agent_metrics"
	CollectionChatLogs    = "chat_logs"
)

// MongoRecordStore implements RecordStore against a MongoDB database.
type MongoRecordStore struct {
	client   *mongo.Client
	database *mongo.Database
}

type progressDoc struct {
	UserID         string    `bson:"userId"`
	TotalPoints    int64     `bson:"totalPoints"`
	Level          int       `bson:"level"`
	TasksCompleted int64     `bson:"tasksCompleted"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

type historyDoc struct {
	ID             string    `bson:"_id"`
	UserID         string    `bson:"userId"`
	Category       string    `bson:"category"`
	PointsAwarded  int64     `bson:"pointsAwarded"`
	SequenceNumber int64     `bson:"sequenceNumber"`
	CreatedAt      time.Time `bson:"createdAt"`
}

type metricDoc struct {
	UserID          string    `bson:"userId"`
	Category        string    `bson:"category"`
	CallCount       int64     `bson:"callCount"`
	PointsGenerated int64     `bson:"pointsGenerated"`
	LastUsed        time.Time `bson:"lastUsed"`
}

type chatDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Input     string    `bson:"input"`
	Response  string    `bson:"response"`
	Category  string    `bson:"category"`
	CreatedAt time.Time `bson:"createdAt"`
}

// NewMongoRecordStore connects to uri, verifies the connection, and ensures
// the indexes the store relies on exist.
func NewMongoRecordStore(ctx context.Context, uri, dbName string) (*MongoRecordStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: pinging mongo: %v", ErrStoreUnavailable, err)
	}

	s := &MongoRecordStore{client: client, database: client.Database(dbName)}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoRecordStore) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionProgress: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionTaskHistory: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "sequenceNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionMetrics: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionChatLogs: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *MongoRecordStore) collection(name string) *mongo.Collection {
	return s.database.Collection(name)
}

// ReadProgress upserts a zeroed document on first read.
func (s *MongoRecordStore) ReadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":         userID,
			"totalPoints":    int64(0),
			"level":          1,
			"tasksCompleted": int64(0),
			"updatedAt":      time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc progressDoc
	if err := s.collection(CollectionProgress).FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("reading progress: %w", err)
	}
	return domain.ProgressRecord{
		UserID:         doc.UserID,
		TotalPoints:    doc.TotalPoints,
		Level:          doc.Level,
		TasksCompleted: doc.TasksCompleted,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func (s *MongoRecordStore) WriteProgress(ctx context.Context, rec domain.ProgressRecord) error {
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	update := bson.M{"$set": bson.M{
		"totalPoints":    rec.TotalPoints,
		"level":          rec.Level,
		"tasksCompleted": rec.TasksCompleted,
		"updatedAt":      updatedAt,
	}}
	_, err := s.collection(CollectionProgress).UpdateOne(ctx,
		bson.M{"userId": rec.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	return nil
}

// AppendHistory treats a duplicate (user, sequence) as already written.
func (s *MongoRecordStore) AppendHistory(ctx context.Context, e domain.TaskHistoryEntry) error {
	doc := historyDoc{
		ID:             e.ID,
		UserID:         e.UserID,
		Category:       string(e.Category),
		PointsAwarded:  e.PointsAwarded,
		SequenceNumber: e.SequenceNumber,
		CreatedAt:      e.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := s.collection(CollectionTaskHistory).InsertOne(ctx, doc)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

func (s *MongoRecordStore) ListHistory(ctx context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sequenceNumber", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit, DefaultHistoryLimit)))
	cursor, err := s.collection(CollectionTaskHistory).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []historyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	entries := make([]domain.TaskHistoryEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.TaskHistoryEntry{
			ID:             d.ID,
			UserID:         d.UserID,
			Category:       domain.Category(d.Category),
			PointsAwarded:  d.PointsAwarded,
			SequenceNumber: d.SequenceNumber,
			CreatedAt:      d.CreatedAt,
		})
	}
	return entries, nil
}

func (s *MongoRecordStore) ReadAggregateMetrics(ctx context.Context, userID string) ([]domain.AgentMetric, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "callCount", Value: -1},
		{Key: "category", Value: 1},
	})
	cursor, err := s.collection(CollectionMetrics).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing metrics: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []metricDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding metrics: %w", err)
	}
	metrics := make([]domain.AgentMetric, 0, len(docs))
	for _, d := range docs {
		metrics = append(metrics, domain.AgentMetric{
			UserID:          d.UserID,
			Category:        domain.Category(d.Category),
			CallCount:       d.CallCount,
			PointsGenerated: d.PointsGenerated,
			LastUsed:        d.LastUsed,
		})
	}
	return metrics, nil
}

// IncrementAggregateMetric is a single upsert with $inc, atomic per document.
func (s *MongoRecordStore) IncrementAggregateMetric(ctx context.Context, userID string, category domain.Category, pointsDelta int64) error {
	if pointsDelta < 0 {
		return fmt.Errorf("incrementing metric: negative points delta %d", pointsDelta)
	}
	filter := bson.M{"userId": userID, "category": string(category)}
	update := bson.M{
		"$inc": bson.M{
			"callCount":       int64(1),
			"pointsGenerated": pointsDelta,
		},
		"$set": bson.M{"lastUsed": time.Now().UTC()},
		"$setOnInsert": bson.M{
			"userId":   userID,
			"category": string(category),
		},
	}
	_, err := s.collection(CollectionMetrics).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("incrementing metric: %w", err)
	}
	return nil
}

func (s *MongoRecordStore) LogChat(ctx context.Context, e domain.ChatLogEntry) error {
	doc := chatDoc{
		ID:        e.ID,
		UserID:    e.UserID,
		Input:     e.Input,
		Response:  e.Response,
		Category:  string(e.Category),
		CreatedAt: e.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := s.collection(CollectionChatLogs).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("logging chat: %w", err)
	}
	return nil
}

func (s *MongoRecordStore) ListChats(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit, DefaultChatLimit)))
	cursor, err := s.collection(CollectionChatLogs).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chatDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding chats: %w", err)
	}
	entries := make([]domain.ChatLogEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.ChatLogEntry{
			ID:        d.ID,
			UserID:    d.UserID,
			Input:     d.Input,
			Response:  d.Response,
			Category:  domain.Category(d.Category),
			CreatedAt: d.CreatedAt,
		})
	}
	return entries, nil
}

// ResetUser deletes the user's documents collection by collection. Progress
// goes last so a partial failure never leaves history without its counter.
func (s *MongoRecordStore) ResetUser(ctx context.Context, userID string) error {
	filter := bson.M{"userId": userID}
	var errs []error
	for _, name := range []string{CollectionTaskHistory, CollectionMetrics, CollectionChatLogs, CollectionProgress} {
		if _, err := s.collection(name).DeleteMany(ctx, filter); err != nil {
			errs = append(errs, fmt.Errorf("clearing %s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("resetting user %s: %w", userID, err)
	}
	return nil
}

func (s *MongoRecordStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoRecordStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ RecordStore = (*MongoRecordStore)(nil)

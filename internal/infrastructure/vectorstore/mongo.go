package vectorstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

const (
	// DefaultTopK is used when a caller asks for a non-positive result count
	DefaultTopK = 5
	// MinNumCandidates is the floor for $vectorSearch candidate scanning
	MinNumCandidates = 100
	// DefaultIndex is the Atlas vector index over the embedding field
	DefaultIndex = "embedding_index"
)

// MongoStore keeps meeting embeddings in a MongoDB collection and queries
// them through Atlas $vectorSearch
type MongoStore struct {
	col   *mongo.Collection
	index string
}

// NewMongoStore wraps an already connected collection
func NewMongoStore(col *mongo.Collection, index string) *MongoStore {
	if index == "" {
		index = DefaultIndex
	}
	return &MongoStore{col: col, index: index}
}

// EnsureIndexes creates the unique meetingId index. The vector index itself
// is managed in Atlas.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "meetingId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.col.Indexes().CreateOne(ctx, idx); err != nil {
		return errors.ErrStorageFailed("vector_index", err)
	}
	return nil
}

// Store writes the vector document. It replaces by meetingId so a retried
// write never duplicates.
func (s *MongoStore) Store(ctx context.Context, vector *entities.MeetingVector) error {
	if vector == nil || len(vector.Embedding) == 0 {
		return errors.ErrStorageFailed("vector_store", entities.ErrEmptyEmbedding)
	}
	if vector.CreatedAt.IsZero() {
		vector.CreatedAt = time.Now()
	}

	_, err := s.col.ReplaceOne(ctx,
		bson.M{"meetingId": vector.MeetingID},
		vector,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.ErrStorageFailed("vector_store", err)
	}
	return nil
}

// Search runs a similarity query restricted to userID. Hits belonging to
// another user are dropped and the result never exceeds topK.
func (s *MongoStore) Search(ctx context.Context, userID string, queryVector []float32, topK int) ([]entities.SimilarMeeting, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(queryVector) == 0 {
		return []entities.SimilarMeeting{}, nil
	}

	cur, err := s.col.Aggregate(ctx, buildSearchPipeline(s.index, userID, queryVector, topK))
	if err != nil {
		return nil, errors.ErrStorageFailed("vector_search", err)
	}
	defer cur.Close(ctx)

	var hits []entities.SimilarMeeting
	if err := cur.All(ctx, &hits); err != nil {
		return nil, errors.ErrStorageFailed("vector_search", err)
	}
	return filterResults(hits, userID, topK), nil
}

// ExistingMeetingIDs reports which of ids already have a vector document
func (s *MongoStore) ExistingMeetingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	values, err := s.col.Distinct(ctx, "meetingId", bson.M{"meetingId": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.ErrStorageFailed("vector_distinct", err)
	}
	for _, v := range values {
		if id, ok := v.(string); ok {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

func numCandidates(topK int) int {
	if n := topK * 10; n > MinNumCandidates {
		return n
	}
	return MinNumCandidates
}

func buildSearchPipeline(index, userID string, queryVector []float32, topK int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: index},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: queryVector},
			{Key: "numCandidates", Value: numCandidates(topK)},
			{Key: "limit", Value: topK},
			{Key: "filter", Value: bson.D{{Key: "userId", Value: userID}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "meetingId", Value: 1},
			{Key: "userId", Value: 1},
			{Key: "title", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}
}

func filterResults(hits []entities.SimilarMeeting, userID string, topK int) []entities.SimilarMeeting {
	out := make([]entities.SimilarMeeting, 0, len(hits))
	for _, h := range hits {
		if h.UserID != userID {
			continue
		}
		out = append(out, h)
		if len(out) == topK {
			break
		}
	}
	return out
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRunRepo handles the persistence of run records in MongoDB.
type MongoRunRepo struct {
	collection *mongo.Collection
}

// NewMongoRunRepo creates a new MongoRunRepo with the given MongoDB client, database name, and collection name.
func NewMongoRunRepo(client *mongo.Client, dbName, collectionName string) *MongoRunRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoRunRepo{
		collection: collection,
	}
}

// SaveMap upserts the world layout of a run.
func (m *MongoRunRepo) SaveMap(ctx context.Context, id uuid.UUID, rows []string) error {
	return m.set(ctx, id, bson.M{"map": rows})
}

// SaveTrials upserts the successful trials and the failure count of a run.
func (m *MongoRunRepo) SaveTrials(ctx context.Context, id uuid.UUID, successes []domain.Trial, failed int) error {
	return m.set(ctx, id, bson.M{
		"successfulPaths": successes,
		"successfulCount": len(successes),
		"failedCount":     failed,
	})
}

// SaveStatus upserts the final status of a run.
func (m *MongoRunRepo) SaveStatus(ctx context.Context, id uuid.UUID, status domain.Status, rounds int) error {
	return m.set(ctx, id, bson.M{
		"status": status,
		"rounds": rounds,
	})
}

// ByID retrieves a run by its ID.
// Returns domain.ErrRunNotFound if the run is not found.
func (m *MongoRunRepo) ByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	filter := bson.M{"_id": id.String()}
	var run domain.Run
	if err := m.collection.FindOne(ctx, filter).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRunNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	run.ID = id
	return &run, nil
}

func (m *MongoRunRepo) set(ctx context.Context, id uuid.UUID, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	fields["updatedAt"] = time.Now()
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$set": fields}

	opts := options.Update().SetUpsert(true)
	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The mongo repository needs a live server; set MONGO_TEST_URI to run it.
func testMongoClient(t *testing.T) *mongo.Client {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo not reachable at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo not reachable at %s: %v", uri, err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestMongoRunRepo(t *testing.T) {
	client := testMongoClient(t)
	collection := "runs_test_" + uuid.NewString()
	t.Cleanup(func() {
		_ = client.Database("pathfinder_test").Collection(collection).Drop(context.Background())
	})

	exerciseRepo(t, NewMongoRunRepo(client, "pathfinder_test", collection))
}

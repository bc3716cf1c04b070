package sortedstorage

import (
	"context"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultBoardKey = "pathfinder:runs:successes"

// RedisRunBoard ranks runs in a Redis sorted set scored by successful trials.
type RedisRunBoard struct {
	client *redis.Client
	locker *redsync.Redsync
	key    string
}

// NewRedisRunBoard initializes a RedisRunBoard on the given client. An empty
// key selects the default one.
func NewRedisRunBoard(client *redis.Client, key string) *RedisRunBoard {
	if key == "" {
		key = defaultBoardKey
	}
	pool := goredis.NewPool(client)
	return &RedisRunBoard{
		client: client,
		locker: redsync.New(pool),
		key:    key,
	}
}

// Record sets the score of a run. Scores only grow, so a late or repeated
// write never lowers a run's rank.
func (b *RedisRunBoard) Record(ctx context.Context, id uuid.UUID, successes int) error {
	mutex := b.locker.NewMutex(b.key + ":lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	_, err := b.client.ZAddGT(ctx, b.key, redis.Z{Score: float64(successes), Member: id.String()}).Result()
	return err
}

// Top returns up to n runs with the highest scores.
func (b *RedisRunBoard) Top(ctx context.Context, n int64) ([]domain.RunRank, error) {
	if n <= 0 {
		return nil, nil
	}
	entries, err := b.client.ZRevRangeWithScores(ctx, b.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	ranks := make([]domain.RunRank, 0, len(entries))
	for _, e := range entries {
		raw, ok := e.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("non-UUID member %q on board: %w", raw, err)
		}
		ranks = append(ranks, domain.RunRank{ID: id, SuccessfulCount: int(e.Score)})
	}
	return ranks, nil
}

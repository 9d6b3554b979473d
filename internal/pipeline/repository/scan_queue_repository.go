package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/pkg/common"

	"github.com/redis/go-redis/v9"
)

// ScanQueueRepository publishes asynchronous scan requests.
type ScanQueueRepository interface {
	// Publish appends msg to the scan stream and returns the stream entry ID.
	Publish(ctx context.Context, msg dto.ScanRequestMessage) (string, error)
}

type redisScanQueue struct {
	client *redis.Client
	maxLen int64
}

// NewScanQueueRepository creates a ScanQueueRepository on the scan stream.
// A nil client yields a queue that rejects every publish.
func NewScanQueueRepository(client *redis.Client, maxLen int64) ScanQueueRepository {
	if client == nil {
		return unconfiguredScanQueue{}
	}
	return &redisScanQueue{client: client, maxLen: maxLen}
}

func (q *redisScanQueue) Publish(ctx context.Context, msg dto.ScanRequestMessage) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal scan request: %w", err)
	}
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamThesisScan,
		Values: map[string]interface{}{common.PayloadField: payload},
		MaxLen: q.maxLen,
		Approx: q.maxLen > 0,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue scan request: %w", err)
	}
	return id, nil
}

type unconfiguredScanQueue struct{}

func (unconfiguredScanQueue) Publish(context.Context, dto.ScanRequestMessage) (string, error) {
	return "", dto.ErrQueueNotConfigured
}

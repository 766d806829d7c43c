package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexum-core/ledger/pkg/utils"
)

// RedisTailCache is a distributed TailCache backed by go-redis: a spin-retry
// mutual-exclusion lock for the append path, plus a plain key holding the
// last hash/seq pair so every process can reconcile without rescanning
// storage.
type RedisTailCache struct {
	rdb       *redis.Client
	lockKey   string
	tailKey   string
	lockTTL   time.Duration
	pollEvery time.Duration
}

func NewRedisTailCache(rdb *redis.Client, namespace string) *RedisTailCache {
	return &RedisTailCache{
		rdb:       rdb,
		lockKey:   fmt.Sprintf("audit:%s:lock", namespace),
		tailKey:   fmt.Sprintf("audit:%s:tail", namespace),
		lockTTL:   5 * time.Second,
		pollEvery: 10 * time.Millisecond,
	}
}

// Acquire is the append lock as a limit-1 concurrency cap: only one process
// may hold it at a time, per pkg/utils.AcquireConcurrencyCap.
func (c *RedisTailCache) Acquire(ctx context.Context) (func(), error) {
	for {
		ok, err := utils.AcquireConcurrencyCap(ctx, c.rdb, c.lockKey, 1, c.lockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = utils.ReleaseConcurrencyCap(context.Background(), c.rdb, c.lockKey)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollEvery):
		}
	}
}

type tailValue struct {
	Hash string `json:"hash"`
	Seq  int64  `json:"seq"`
}

func (c *RedisTailCache) GetTail(ctx context.Context) (string, int64, bool, error) {
	raw, err := c.rdb.Get(ctx, c.tailKey).Bytes()
	if err == redis.Nil {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, err
	}
	var v tailValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", 0, false, err
	}
	return v.Hash, v.Seq, true, nil
}

func (c *RedisTailCache) SetTail(ctx context.Context, hash string, seq int64) error {
	raw, err := json.Marshal(tailValue{Hash: hash, Seq: seq})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.tailKey, raw, 0).Err()
}

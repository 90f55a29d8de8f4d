package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DraftStore 在 Redis 中保存某天尚未保存到数据库的工作副本，过期后重新从数据库加载
type DraftStore struct {
	client           *redis.Client
	expiration       time.Duration
	operationTimeout time.Duration
}

func NewDraftStore(client *redis.Client, expiration, operationTimeout time.Duration) *DraftStore {
	return &DraftStore{
		client:           client,
		expiration:       expiration,
		operationTimeout: operationTimeout,
	}
}

func DraftKey(date string) string {
	return fmt.Sprintf("schedule_draft_%s", date)
}

// Get 返回草稿，ok 为 false 表示没有草稿
func (s *DraftStore) Get(ctx context.Context, date string) (draft domain.ScheduleDraft, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, DraftKey(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return draft, false, nil
		}
		return draft, false, err
	}

	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.ScheduleDraft{}, false, fmt.Errorf("decode draft %s: %w", date, err)
	}

	return draft, true, nil
}

func (s *DraftStore) Put(ctx context.Context, date string, draft domain.ScheduleDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	return s.client.Set(ctx, DraftKey(date), data, s.expiration).Err()
}

func (s *DraftStore) Delete(ctx context.Context, date string) error {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	return s.client.Del(ctx, DraftKey(date)).Err()
}

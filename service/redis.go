package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"img2svg/config"
	"img2svg/model"
	"img2svg/utils"
)

const cachePrefix = "svg:"

// RedisService 转换结果缓存；值为 zstd 压缩的 JSON
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetResult 缓存未命中时返回 nil, nil
func (s *RedisService) GetResult(ctx context.Context, key string) (*model.ConvertResult, error) {
	data, err := s.client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	result, err := decodeResult(data)
	if err != nil {
		utils.Logger.Error("failed to decode cached result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// SetResult 写入缓存
func (s *RedisService) SetResult(ctx context.Context, key string, result *model.ConvertResult) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cachePrefix+key, data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func encodeResult(result *model.ConvertResult) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return compressZstd(raw)
}

func decodeResult(data []byte) (*model.ConvertResult, error) {
	raw, err := decompressZstd(data)
	if err != nil {
		return nil, err
	}
	var result model.ConvertResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

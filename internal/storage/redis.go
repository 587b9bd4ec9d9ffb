package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skillfit-go/internal/config"
	"skillfit-go/internal/constants"
	"skillfit-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound 键不存在, 包装redis.Nil便于上层判断
var ErrNotFound = redis.Nil

// Redis 缓存适配器, 存放搜索结果和分析报告的序列化副本
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis连接并挂载OpenTelemetry钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 挂载OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// resultCacheTTL 返回搜索结果的缓存时间
func (r *Redis) resultCacheTTL() time.Duration {
	if r.config != nil && r.config.ResultCacheTTLHours > 0 {
		return time.Duration(r.config.ResultCacheTTLHours) * time.Hour
	}
	return constants.SearchResultCacheTTL
}

// CacheSearchArtifact 缓存一次搜索的最终工件
func (r *Redis) CacheSearchArtifact(ctx context.Context, taskID string, artifact *types.SearchArtifact) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("序列化搜索工件失败: %w", err)
	}
	key := constants.KeySearchResult + taskID
	return r.Client.Set(ctx, key, data, r.resultCacheTTL()).Err()
}

// GetSearchArtifact 读取缓存的搜索工件, 不存在时返回ErrNotFound
func (r *Redis) GetSearchArtifact(ctx context.Context, taskID string) (*types.SearchArtifact, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}
	key := constants.KeySearchResult + taskID
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var artifact types.SearchArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("反序列化搜索工件失败: %w", err)
	}
	return &artifact, nil
}

// CacheAnalytics 缓存一次搜索的分析报告
func (r *Redis) CacheAnalytics(ctx context.Context, taskID string, report any) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("序列化分析报告失败: %w", err)
	}
	key := constants.KeySearchAnalytics + taskID
	return r.Client.Set(ctx, key, data, r.resultCacheTTL()).Err()
}

// GetAnalytics 读取缓存的分析报告原始JSON, 不存在时返回ErrNotFound
func (r *Redis) GetAnalytics(ctx context.Context, taskID string) ([]byte, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}
	key := constants.KeySearchAnalytics + taskID
	return r.Client.Get(ctx, key).Bytes()
}

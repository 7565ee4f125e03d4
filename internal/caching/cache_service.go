package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"okrhub/internal/models"
)

type CacheService interface {
	// Job progress caching
	GetJobSummary(ctx context.Context, tenantID, jobID uuid.UUID) (*models.ImportJobSummary, error)
	SetJobSummary(ctx context.Context, tenantID uuid.UUID, summary *models.ImportJobSummary, ttl time.Duration) error
	DeleteJobSummary(ctx context.Context, tenantID, jobID uuid.UUID) error

	// Dashboard caching. InvalidateTenantCache drops the cached summary so
	// the next dashboard read recomputes it; slot and rate-limit counters
	// are untouched.
	GetTenantSummary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error)
	SetTenantSummary(ctx context.Context, tenantID uuid.UUID, summary map[string]any, ttl time.Duration) error
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Concurrent import guard. Jobs in flight per tenant are counted in a
	// shared Redis key so the ceiling holds across instances.
	AcquireImportSlot(ctx context.Context, tenantID uuid.UUID, ceiling int, ttl time.Duration) (bool, error)
	ReleaseImportSlot(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port style addresses too
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetJobSummary(ctx context.Context, tenantID, jobID uuid.UUID) (*models.ImportJobSummary, error) {
	key := fmt.Sprintf("okrhub:job:%s:%s", tenantID.String(), jobID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var summary models.ImportJobSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetJobSummary(ctx context.Context, tenantID uuid.UUID, summary *models.ImportJobSummary, ttl time.Duration) error {
	key := fmt.Sprintf("okrhub:job:%s:%s", tenantID.String(), summary.Job.ID.String())
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteJobSummary(ctx context.Context, tenantID, jobID uuid.UUID) error {
	key := fmt.Sprintf("okrhub:job:%s:%s", tenantID.String(), jobID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetTenantSummary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error) {
	key := fmt.Sprintf("okrhub:summary:%s", tenantID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var summary map[string]any
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *redisCacheService) SetTenantSummary(ctx context.Context, tenantID uuid.UUID, summary map[string]any, ttl time.Duration) error {
	key := fmt.Sprintf("okrhub:summary:%s", tenantID.String())
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	key := fmt.Sprintf("okrhub:summary:%s", tenantID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) AcquireImportSlot(ctx context.Context, tenantID uuid.UUID, ceiling int, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("okrhub:imports:%s", tenantID.String())
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	// TTL bounds leakage from crashed workers that never release
	if count == 1 {
		r.client.Expire(ctx, key, ttl)
	}

	if count > int64(ceiling) {
		r.client.Decr(ctx, key)
		return false, nil
	}
	return true, nil
}

func (r *redisCacheService) ReleaseImportSlot(ctx context.Context, tenantID uuid.UUID) error {
	key := fmt.Sprintf("okrhub:imports:%s", tenantID.String())
	count, err := r.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count < 0 {
		return r.client.Del(ctx, key).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("okrhub:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// api/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/taskhive/taskhive/api/logging"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

const policyInvalidationChannel = "authz:policy-invalidations"

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// CacheSubject stores a subject snapshot for the configured cache TTL.
func CacheSubject(ctx context.Context, subject *pdp_model.Subject) error {
	subjectJSON, err := json.Marshal(subject)
	if err != nil {
		return fmt.Errorf("failed to marshal subject: %w", err)
	}

	key := fmt.Sprintf("subject:%s", subject.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, subjectJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache subject: %w", err)
	}

	logger.Debug("Subject cached successfully", zap.String("userID", subject.ID))
	return nil
}

func GetCachedSubject(ctx context.Context, userID string) (*pdp_model.Subject, error) {
	key := fmt.Sprintf("subject:%s", userID)
	subjectJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Subject not found in cache", zap.String("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get subject from cache: %w", err)
	}

	var subject pdp_model.Subject
	err = json.Unmarshal([]byte(subjectJSON), &subject)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal subject: %w", err)
	}

	logger.Debug("Subject retrieved from cache", zap.String("userID", userID))
	return &subject, nil
}

// PublishPolicyInvalidation fans an invalidation out to every engine
// instance. An empty policyID means "clear everything".
func PublishPolicyInvalidation(ctx context.Context, policyID string) error {
	err := RedisClient.Publish(ctx, policyInvalidationChannel, policyID).Err()
	if err != nil {
		return fmt.Errorf("failed to publish policy invalidation: %w", err)
	}
	return nil
}

// SubscribePolicyInvalidations delivers invalidations published by other
// instances until ctx is cancelled.
func SubscribePolicyInvalidations(ctx context.Context, handler func(policyID string)) {
	pubsub := RedisClient.Subscribe(ctx, policyInvalidationChannel)
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(msg.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

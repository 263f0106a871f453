package redis

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"studio-media-server/modules/common/config"
)

// Connect - Redis 연결 생성 (실패 시 nil 반환, 호출자가 큐 기능을 끄는 방식)
func Connect(cfg *config.Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}

	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	// 관리형 Redis는 대부분 TLS 종단만 제공
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // Render.com Redis용
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	log.Println("✅ Redis connected")
	return rdb
}

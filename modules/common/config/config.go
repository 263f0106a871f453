package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Server
	Port string

	// Video storage (생성된 비디오 저장 루트)
	VideoStorageDir string

	// Redis (백그라운드 워커/큐용 - 없으면 큐 기능 비활성화)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Gemini API (프롬프트 보정용)
	GeminiAPIKeys []string
	GeminiModel   string
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	globalConfig = &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Video storage
		VideoStorageDir: getEnv("VIDEO_STORAGE_DIR", filepath.Join("storage", "videos")),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Gemini API
		GeminiAPIKeys: parseGeminiKeys(),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	// 선택 기능은 경고만 하고 서버는 그대로 기동
	if globalConfig.RedisHost == "" {
		log.Println("⚠️  REDIS_HOST not set - queue worker will be disabled")
	}
	if len(globalConfig.GeminiAPIKeys) == 0 {
		log.Println("⚠️  GEMINI_API_KEY not set - prompt enhancement will be disabled")
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Storage: %s", globalConfig.VideoStorageDir)
	if globalConfig.RedisHost != "" {
		log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	}
	log.Printf("   Gemini: %s (%d keys)", globalConfig.GeminiModel, len(globalConfig.GeminiAPIKeys))

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseGeminiKeys - GEMINI_API_KEYS (콤마 구분) 또는 GEMINI_API_KEY 단일 키
func parseGeminiKeys() []string {
	var keys []string
	if multi := os.Getenv("GEMINI_API_KEYS"); multi != "" {
		for _, k := range strings.Split(multi, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	if single := os.Getenv("GEMINI_API_KEY"); single != "" {
		keys = append(keys, single)
	}
	return keys
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

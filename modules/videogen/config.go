package videogen

import (
	"log"
	"os"
	"time"
)

// Config - MiniMax Video API 설정
type Config struct {
	APIKey  string
	BaseURL string
	Version string
	Model   string

	// 제출은 백엔드 생성 시간이 걸릴 수 있어 길게, 상태 조회는 짧게
	SubmitTimeout time.Duration
	StatusTimeout time.Duration

	// 재시도 정책: 고정 간격, 고정 횟수
	MaxRetries int
	RetryDelay time.Duration
}

var videoConfig *Config

// LoadConfig - 환경변수에서 설정 로드
func LoadConfig() *Config {
	if videoConfig != nil {
		return videoConfig
	}

	apiKey := os.Getenv("MINIMAX_API_KEY")
	if apiKey == "" {
		// 키가 없어도 서버는 뜬다 - provider 호출 시점에 실패
		log.Println("⚠️ [Video] MINIMAX_API_KEY not set - generation requests will fail")
	}

	baseURL := os.Getenv("MINIMAX_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.minimax.chat"
	}

	model := os.Getenv("MINIMAX_MODEL")
	if model == "" {
		model = "video-01"
	}

	videoConfig = &Config{
		APIKey:        apiKey,
		BaseURL:       baseURL,
		Version:       "v1",
		Model:         model,
		SubmitTimeout: 10 * time.Minute,
		StatusTimeout: 30 * time.Second,
		MaxRetries:    3,
		RetryDelay:    2 * time.Second,
	}

	log.Printf("✅ [Video] Config loaded - API: %s, Model: %s", baseURL, model)
	return videoConfig
}

// GetConfig - 설정 반환
func GetConfig() *Config {
	if videoConfig == nil {
		return LoadConfig()
	}
	return videoConfig
}

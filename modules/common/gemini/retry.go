package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	maxRetriesPerKey = 3
	retryDelay       = 2 * time.Second
)

// GenerateContentWithRetry - 429 에러 시 여러 API 키로 재시도하는 헬퍼 함수
// 각 키당 최대 3번 재시도, 재시도 간 2초 대기. 429 이외의 에러는 바로 반환.
func GenerateContentWithRetry(
	ctx context.Context,
	apiKeys []string,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {

	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("no API keys provided")
	}

	var lastErr error

	for keyIndex, apiKey := range apiKeys {
		log.Printf("🔑 [Gemini Retry] Trying API key #%d/%d", keyIndex+1, len(apiKeys))

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Printf("⚠️  [Gemini Retry] Failed to create client with key #%d: %v", keyIndex+1, err)
			lastErr = err
			continue
		}

		for attempt := 1; attempt <= maxRetriesPerKey; attempt++ {
			result, err := client.Models.GenerateContent(ctx, model, contents, config)
			if err == nil {
				log.Printf("✅ [Gemini Retry] Success with API key #%d (attempt %d/%d)", keyIndex+1, attempt, maxRetriesPerKey)
				return result, nil
			}

			lastErr = err

			// 429가 아닌 다른 에러면 바로 반환 (재시도 안 함)
			if !is429Error(err) {
				log.Printf("❌ [Gemini Retry] Key #%d failed with non-429 error: %v", keyIndex+1, err)
				return nil, err
			}

			log.Printf("⚠️  [Gemini Retry] Key #%d hit rate limit (429) on attempt %d/%d", keyIndex+1, attempt, maxRetriesPerKey)
			if attempt < maxRetriesPerKey {
				time.Sleep(retryDelay)
			}
		}

		log.Printf("⚠️  [Gemini Retry] Key #%d exhausted all %d attempts, trying next key...", keyIndex+1, maxRetriesPerKey)
	}

	return nil, fmt.Errorf("all %d API keys exhausted (%d attempts each), last error: %w", len(apiKeys), maxRetriesPerKey, lastErr)
}

// is429Error - 429 Rate Limit 에러인지 확인
func is429Error(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(strings.ToLower(errStr), "rate limit") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}

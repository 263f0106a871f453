package promptlab

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"studio-media-server/modules/common/config"
	geminiretry "studio-media-server/modules/common/gemini"
)

// 비디오 프롬프트 보정용 시스템 프롬프트
const enhanceInstruction = `You are a prompt engineer for an AI video generation model.
Rewrite the user's idea into a single, vivid, production-ready video prompt.
Describe subject, motion, camera work and lighting in one paragraph.
Return only the rewritten prompt, no explanations.`

// Service - Gemini 기반 프롬프트 보정 서비스
type Service struct {
	apiKeys []string
	model   string
}

// NewService - Service 생성 (Gemini 키가 없으면 nil)
func NewService() *Service {
	cfg := config.GetConfig()

	if len(cfg.GeminiAPIKeys) == 0 {
		log.Println("⚠️ [PromptLab] No Gemini API keys configured")
		return nil
	}

	log.Println("✅ [PromptLab] Service initialized")
	return &Service{
		apiKeys: cfg.GeminiAPIKeys,
		model:   cfg.GeminiModel,
	}
}

// Enhance - 사용자의 아이디어를 비디오 생성용 프롬프트로 다듬기
func (s *Service) Enhance(ctx context.Context, prompt, style string) (string, error) {
	var sb strings.Builder
	sb.WriteString(enhanceInstruction)
	if style != "" {
		sb.WriteString("\nTarget style: ")
		sb.WriteString(style)
	}
	sb.WriteString("\n\nUser idea: ")
	sb.WriteString(prompt)

	contents := []*genai.Content{
		genai.NewContentFromText(sb.String(), genai.RoleUser),
	}

	result, err := geminiretry.GenerateContentWithRetry(ctx, s.apiKeys, s.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", fmt.Errorf("failed to enhance prompt: %w", err)
	}

	enhanced := strings.TrimSpace(result.Text())
	if enhanced == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	log.Printf("✨ [PromptLab] Prompt enhanced (%d chars → %d chars)", len(prompt), len(enhanced))
	return enhanced, nil
}

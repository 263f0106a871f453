package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ProviderError - provider가 non-2xx 응답을 돌려준 경우
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("MiniMax API Error (%d): %s", e.Status, e.Message)
}

// NetworkError - 응답 자체를 받지 못한 경우 (타임아웃 포함)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("MiniMax API Network Error: no response received - %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Service - MiniMax Video API 클라이언트
type Service struct {
	config *Config

	// 제출과 상태 조회는 타임아웃이 달라 클라이언트를 분리
	submitClient *http.Client
	statusClient *http.Client
}

// NewService - Service 생성 (설정은 명시적으로 주입)
func NewService(cfg *Config) *Service {
	return &Service{
		config:       cfg,
		submitClient: &http.Client{Timeout: cfg.SubmitTimeout},
		statusClient: &http.Client{Timeout: cfg.StatusTimeout},
	}
}

// SubmitTextJob - 텍스트 프롬프트로 비디오 생성 작업 제출
func (s *Service) SubmitTextJob(ctx context.Context, prompt, style string, duration int, settings Settings) (*SubmitResponse, error) {
	reqData := map[string]interface{}{
		"model":  s.config.Model,
		"prompt": prompt,
	}
	if style != "" {
		reqData["style"] = style
	}
	if duration > 0 {
		reqData["duration"] = duration
	}
	for key, value := range settings.Params() {
		reqData[key] = value
	}

	reqBody, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/text_to_video", s.config.BaseURL, s.config.Version)
	log.Printf("🚀 [Video] Submitting text_to_video job...")

	body, err := s.doWithRetry(s.submitClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	return parseSubmitResponse(body)
}

// SubmitImageJob - 이미지로 비디오 생성 작업 제출 (multipart)
// 메모리 버퍼로 받은 이미지는 업로드 동안 임시 파일로 스테이징하고 끝나면 지운다.
func (s *Service) SubmitImageJob(ctx context.Context, imageData []byte, mimeType, prompt, style string, settings Settings) (*SubmitResponse, error) {
	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+extForMime(mimeType))
	if err := os.WriteFile(tempPath, imageData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to stage image upload: %w", err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ [Video] Failed to clean up temp file %s: %v", tempPath, err)
		}
	}()

	endpoint := fmt.Sprintf("%s/%s/image_to_video", s.config.BaseURL, s.config.Version)
	log.Printf("🚀 [Video] Submitting image_to_video job (%d bytes, %s)...", len(imageData), mimeType)

	body, err := s.doWithRetry(s.submitClient, func() (*http.Request, error) {
		form, contentType, err := s.buildImageForm(tempPath, mimeType, prompt, style, settings)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, form)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	return parseSubmitResponse(body)
}

// CheckStatus - 작업 상태 조회. provider 응답을 그대로 통과시킨다.
func (s *Service) CheckStatus(ctx context.Context, jobID string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/%s/video_jobs/%s", s.config.BaseURL, s.config.Version, jobID)

	body, err := s.doWithRetry(s.statusClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	return payload, nil
}

// buildImageForm - multipart body 구성. 스칼라가 아닌 값은 JSON 문자열로 직렬화.
func (s *Service) buildImageForm(imagePath, mimeType, prompt, style string, settings Settings) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("model", s.config.Model); err != nil {
		return nil, "", err
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open staged image: %w", err)
	}
	defer file.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filepath.Base(imagePath)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read staged image: %w", err)
	}

	if prompt != "" {
		if err := writer.WriteField("prompt", prompt); err != nil {
			return nil, "", err
		}
	}
	if style != "" {
		if err := writer.WriteField("style", style); err != nil {
			return nil, "", err
		}
	}

	for key, value := range settings.Params() {
		if err := writer.WriteField(key, formFieldValue(value)); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// doWithRetry - 고정 횟수/고정 간격 재시도. 중간 실패는 삼키고 마지막 실패만 반환.
func (s *Service) doWithRetry(client *http.Client, newRequest func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 1 {
			time.Sleep(s.config.RetryDelay)
		}

		req, err := newRequest()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = &NetworkError{Err: err}
			log.Printf("⚠️ [Video] Attempt %d/%d failed: %v", attempt, s.config.MaxRetries, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &NetworkError{Err: readErr}
			log.Printf("⚠️ [Video] Attempt %d/%d failed reading response: %v", attempt, s.config.MaxRetries, readErr)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = &ProviderError{Status: resp.StatusCode, Message: providerMessage(body)}
			log.Printf("⚠️ [Video] Attempt %d/%d got status %d", attempt, s.config.MaxRetries, resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

// providerMessage - provider 에러 응답에서 메시지 추출
func providerMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error.Message != "" {
			return payload.Error.Message
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return "Unknown API error"
}

func parseSubmitResponse(body []byte) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse submit response: %w", err)
	}
	log.Printf("✅ [Video] Job accepted: %s (estimated: %s)", resp.JobID, resp.EstimatedTime)
	return &resp, nil
}

// formFieldValue - multipart 필드 값 직렬화 (객체는 JSON 문자열로)
func formFieldValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// extForMime - 임시 파일 확장자 결정
func extForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

package videogen

import "time"

// Job 상태 (provider가 정의하는 값 - 모르는 값은 진행 중으로 취급)
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// SettingsInput - 클라이언트가 보내는 부분 설정 (전부 선택)
// FPS는 숫자/문자열 둘 다 들어올 수 있어 interface{}로 받는다.
type SettingsInput struct {
	Resolution string      `json:"resolution,omitempty"`
	FPS        interface{} `json:"fps,omitempty"`
	Quality    string      `json:"quality,omitempty"`
	Format     string      `json:"format,omitempty"`
}

// Settings - 검증 완료된 생성 설정 (모든 필드가 항상 유효한 값)
type Settings struct {
	Resolution string `json:"resolution"`
	FPS        int    `json:"fps"`
	Quality    string `json:"quality"`
	Format     string `json:"format"`
}

// Params - provider 요청에 flatten되는 필드들
func (s Settings) Params() map[string]interface{} {
	return map[string]interface{}{
		"resolution": s.Resolution,
		"fps":        s.FPS,
		"quality":    s.Quality,
		"format":     s.Format,
	}
}

// GenerateTextRequest - POST /video/text-to-video 요청 body
type GenerateTextRequest struct {
	Prompt   string `json:"prompt"`
	Style    string `json:"style,omitempty"`
	Duration int    `json:"duration,omitempty"`
	UserID   string `json:"userId,omitempty"`
	SettingsInput
}

// SubmitResponse - provider가 작업을 수락했을 때 돌려주는 핸들
type SubmitResponse struct {
	JobID         string `json:"job_id"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

// GenerateResponse - 생성 요청 API 응답
type GenerateResponse struct {
	Success       bool   `json:"success"`
	JobID         string `json:"jobId"`
	EstimatedTime string `json:"estimatedTime"`
}

// ErrorResponse - API 에러 응답 (내부 경로/스택은 message에 싣지 않음)
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StoredVideo - 로컬에 저장된 비디오 메타데이터
type StoredVideo struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeleteResponse - DELETE /video/{videoId} 응답
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PollJob - auto-materialize 큐에 들어가는 항목 (일시적 큐 항목일 뿐, job 장부가 아님)
type PollJob struct {
	JobID  string `json:"job_id"`
	UserID string `json:"user_id,omitempty"`
}

// EnqueueRequest - POST /video/enqueue 요청
type EnqueueRequest struct {
	JobID  string `json:"job_id"`
	UserID string `json:"userId,omitempty"`
}

// EnqueueResponse - POST /video/enqueue 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

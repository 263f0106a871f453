package videogen

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	appconfig "studio-media-server/modules/common/config"
	redisutil "studio-media-server/modules/common/redis"
	"studio-media-server/modules/common/utils"
)

// 업로드 이미지 최대 크기
const maxUploadSize = 10 << 20 // 10MB

// auto-materialize 큐 이름
const pollQueue = "jobs:video-poll"

// VideoAPI - 비디오 생성 provider 호출 계약
type VideoAPI interface {
	SubmitTextJob(ctx context.Context, prompt, style string, duration int, settings Settings) (*SubmitResponse, error)
	SubmitImageJob(ctx context.Context, imageData []byte, mimeType, prompt, style string, settings Settings) (*SubmitResponse, error)
	CheckStatus(ctx context.Context, jobID string) (map[string]interface{}, error)
}

// Handler - 비디오 생성 HTTP 핸들러
type Handler struct {
	api   VideoAPI
	store *Store
	rdb   *redis.Client
}

// NewHandler - Handler 생성
func NewHandler() *Handler {
	appCfg := appconfig.GetConfig()

	service := NewService(GetConfig())
	store := NewStore(appCfg.VideoStorageDir)

	// Redis는 선택 - 없으면 enqueue만 비활성화
	rdb := redisutil.Connect(appCfg)
	if rdb == nil {
		log.Println("⚠️ [Video] Redis not available - /video/enqueue disabled")
	}

	log.Println("✅ [Video] Handler initialized")
	return &Handler{
		api:   service,
		store: store,
		rdb:   rdb,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/video/text-to-video", h.GenerateFromText).Methods("POST", "OPTIONS")
	r.HandleFunc("/video/image-to-video", h.GenerateFromImage).Methods("POST", "OPTIONS")
	r.HandleFunc("/video/status/{jobId}", h.CheckVideoStatus).Methods("GET")
	r.HandleFunc("/video/user/{userId}", h.ListUserVideos).Methods("GET")
	r.HandleFunc("/video/enqueue", h.EnqueueAutoMaterialize).Methods("POST", "OPTIONS")
	r.HandleFunc("/video/ws/status", h.StreamStatus).Methods("GET")
	r.HandleFunc("/video/{videoId:.+}", h.DeleteVideo).Methods("DELETE")
	log.Println("✅ [Video] Routes registered under /video")
}

// GenerateFromText - POST /video/text-to-video
func (h *Handler) GenerateFromText(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req GenerateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Prompt == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Prompt is required"})
		return
	}

	settings := ResolveSettings(req.SettingsInput)

	log.Printf("🎬 [Video] Starting text-to-video generation for user %s", orAnonymous(req.UserID))

	resp, err := h.api.SubmitTextJob(r.Context(), req.Prompt, req.Style, req.Duration, settings)
	if err != nil {
		log.Printf("❌ [Video] text-to-video failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to generate video",
			Message: err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:       true,
		JobID:         resp.JobID,
		EstimatedTime: orUnknown(resp.EstimatedTime),
	})
}

// GenerateFromImage - POST /video/image-to-video (multipart)
func (h *Handler) GenerateFromImage(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Image file is required"})
		return
	}
	defer file.Close()

	if !utils.IsSupportedImageType(header.Filename, header.Header.Get("Content-Type")) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Only image files are allowed"})
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Failed to read image file"})
		return
	}

	// WebP/GIF 업로드는 provider가 받는 PNG로 정규화
	imageData, mimeType, err := utils.NormalizeToPNG(imageData)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Only image files are allowed"})
		return
	}

	settings := ResolveSettings(SettingsInput{
		Resolution: r.FormValue("resolution"),
		FPS:        r.FormValue("fps"),
		Quality:    r.FormValue("quality"),
		Format:     r.FormValue("format"),
	})

	prompt := r.FormValue("prompt")
	style := r.FormValue("style")
	userID := r.FormValue("userId")

	log.Printf("🎬 [Video] Starting image-to-video generation for user %s", orAnonymous(userID))

	resp, err := h.api.SubmitImageJob(r.Context(), imageData, mimeType, prompt, style, settings)
	if err != nil {
		log.Printf("❌ [Video] image-to-video failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to generate video",
			Message: err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:       true,
		JobID:         resp.JobID,
		EstimatedTime: orUnknown(resp.EstimatedTime),
	})
}

// CheckVideoStatus - GET /video/status/{jobId}
// 완료 상태이고 result.video_url이 있으면 로컬로 저장하고 localVideoUrl을 붙인다.
// 저장 실패는 로그만 남기고 응답은 그대로 성공 처리 (생성 성공을 가리면 안 됨).
func (h *Handler) CheckVideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	if jobID == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Job ID is required"})
		return
	}

	payload, err := h.api.CheckStatus(r.Context(), jobID)
	if err != nil {
		log.Printf("❌ [Video] Status check failed for %s: %v", jobID, err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to check video status",
			Message: err.Error(),
		})
		return
	}

	if videoURL := completedVideoURL(payload); videoURL != "" {
		saved, err := h.store.SaveGeneratedVideo(r.Context(), videoURL, r.URL.Query().Get("userId"), jobID)
		if err != nil {
			log.Printf("⚠️ [Video] Failed to save generated video for %s: %v", jobID, err)
		} else {
			payload["localVideoUrl"] = saved.URL
		}
	}

	respondJSON(w, http.StatusOK, payload)
}

// ListUserVideos - GET /video/user/{userId}
func (h *Handler) ListUserVideos(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	respondJSON(w, http.StatusOK, h.store.ListUserVideos(userID))
}

// DeleteVideo - DELETE /video/{videoId}
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]

	path, ok := h.store.ResolvePath(videoID)
	if !ok || !h.store.DeleteVideo(path) {
		respondJSON(w, http.StatusNotFound, DeleteResponse{
			Success: false,
			Message: "Video not found or could not be deleted",
		})
		return
	}

	log.Printf("🗑️ [Video] Deleted %s", path)
	respondJSON(w, http.StatusOK, DeleteResponse{
		Success: true,
		Message: "Video deleted successfully",
	})
}

// EnqueueAutoMaterialize - POST /video/enqueue
// 작업이 끝나면 서버가 알아서 다운로드하도록 폴링 큐에 등록한다.
func (h *Handler) EnqueueAutoMaterialize(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.rdb == nil {
		respondJSON(w, http.StatusServiceUnavailable, EnqueueResponse{
			Success: false,
			Error:   "Queue not available",
		})
		return
	}

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, EnqueueResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.JobID == "" {
		respondJSON(w, http.StatusBadRequest, EnqueueResponse{
			Success: false,
			Error:   "job_id is required",
		})
		return
	}

	job, err := json.Marshal(PollJob{JobID: req.JobID, UserID: req.UserID})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.rdb.LPush(ctx, pollQueue, job).Result(); err != nil {
		log.Printf("❌ [Video] Redis LPUSH failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	queueLen, _ := h.rdb.LLen(ctx, pollQueue).Result()

	log.Printf("✅ [Video] Job %s enqueued for auto-materialize (position: %d)", req.JobID, queueLen)

	respondJSON(w, http.StatusOK, EnqueueResponse{
		Success:       true,
		Message:       "Video job enqueued successfully",
		JobID:         req.JobID,
		Queue:         pollQueue,
		QueuePosition: queueLen,
	})
}

// completedVideoURL - 완료 응답에서 result.video_url 추출 (아니면 빈 문자열)
func completedVideoURL(payload map[string]interface{}) string {
	status, _ := payload["status"].(string)
	if status != StatusCompleted {
		return ""
	}
	result, ok := payload["result"].(map[string]interface{})
	if !ok {
		return ""
	}
	videoURL, _ := result["video_url"].(string)
	return videoURL
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ [Video] Failed to encode response: %v", err)
	}
}

func orAnonymous(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}

func orUnknown(estimated string) string {
	if estimated == "" {
		return "unknown"
	}
	return estimated
}

package videogen

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// 상태 push 간격과 연결당 최대 유지 시간
const (
	streamInterval = 5 * time.Second
	streamMaxAge   = 10 * time.Minute
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// StreamStatus - GET /video/ws/status?jobId=...&userId=...
// 연결이 살아있는 동안 서버가 provider 상태를 주기적으로 조회해서 push한다.
// 완료 시 결과를 로컬로 저장하고 localVideoUrl을 붙인 뒤 연결을 닫는다.
func (h *Handler) StreamStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	userID := r.URL.Query().Get("userId")

	if jobID == "" {
		http.Error(w, "jobId parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Video Stream] WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("🔍 [Video Stream] Streaming status for job %s", jobID)

	deadline := time.Now().Add(streamMaxAge)

	for {
		payload, err := h.api.CheckStatus(r.Context(), jobID)
		if err != nil {
			log.Printf("⚠️ [Video Stream] Status check failed for %s: %v", jobID, err)
			conn.WriteJSON(map[string]interface{}{
				"error":   "Failed to check video status",
				"message": err.Error(),
			})
			return
		}

		status, _ := payload["status"].(string)

		if videoURL := completedVideoURL(payload); videoURL != "" {
			// 저장 실패해도 provider 응답은 그대로 전달
			if saved, err := h.store.SaveGeneratedVideo(r.Context(), videoURL, userID, jobID); err != nil {
				log.Printf("⚠️ [Video Stream] Failed to save generated video for %s: %v", jobID, err)
			} else {
				payload["localVideoUrl"] = saved.URL
			}
		}

		if err := conn.WriteJSON(payload); err != nil {
			// 클라이언트가 떠남
			return
		}

		if status == StatusCompleted || status == StatusFailed {
			log.Printf("✅ [Video Stream] Job %s reached terminal status: %s", jobID, status)
			return
		}

		if time.Now().After(deadline) {
			log.Printf("⏰ [Video Stream] Closing stream for %s after %v", jobID, streamMaxAge)
			return
		}

		time.Sleep(streamInterval)
	}
}

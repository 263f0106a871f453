package videogen

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "studio-media-server/modules/common/config"
	redisutil "studio-media-server/modules/common/redis"
)

// Worker - enqueue된 작업을 provider 상태가 끝날 때까지 폴링하고
// 완료되면 결과를 로컬 저장소로 내려받는 백그라운드 워커.
// 어디에도 상태를 남기지 않는다 - provider가 유일한 source of truth.
type Worker struct {
	rdb   *redis.Client
	api   VideoAPI
	store *Store

	pollInterval time.Duration
	maxPolls     int
}

// NewWorker - Worker 생성 (Redis가 없으면 nil)
func NewWorker() *Worker {
	appCfg := appconfig.GetConfig()

	rdb := redisutil.Connect(appCfg)
	if rdb == nil {
		log.Println("⚠️ [Video Worker] Redis not available - worker disabled")
		return nil
	}

	log.Println("✅ [Video Worker] Initialized successfully")
	return &Worker{
		rdb:          rdb,
		api:          NewService(GetConfig()),
		store:        NewStore(appCfg.VideoStorageDir),
		pollInterval: 5 * time.Second,
		maxPolls:     120, // 약 10분
	}
}

// Start - Redis 큐 감시 시작
func (w *Worker) Start() {
	log.Println("🔄 [Video Worker] Starting auto-materialize worker...")
	log.Printf("👀 [Video Worker] Watching queue: %s", pollQueue)

	ctx := context.Background()

	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := w.rdb.BRPop(ctx, 0, pollQueue).Result()
		if err != nil {
			log.Printf("❌ [Video Worker] Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 실제 payload
		var job PollJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("❌ [Video Worker] Failed to unmarshal job: %v", err)
			continue
		}

		log.Printf("🎯 [Video Worker] Received job: %s (user: %s)", job.JobID, orAnonymous(job.UserID))
		w.processJob(ctx, job)
	}
}

// processJob - 작업이 끝날 때까지 폴링 후 결과 저장
func (w *Worker) processJob(ctx context.Context, job PollJob) {
	for attempt := 1; attempt <= w.maxPolls; attempt++ {
		payload, err := w.api.CheckStatus(ctx, job.JobID)
		if err != nil {
			log.Printf("⚠️ [Video Worker] Attempt %d: status check failed for %s: %v", attempt, job.JobID, err)
			time.Sleep(w.pollInterval)
			continue
		}

		status, _ := payload["status"].(string)

		switch status {
		case StatusCompleted:
			videoURL := completedVideoURL(payload)
			if videoURL == "" {
				log.Printf("❌ [Video Worker] Job %s completed without video_url", job.JobID)
				return
			}
			saved, err := w.store.SaveGeneratedVideo(ctx, videoURL, job.UserID, job.JobID)
			if err != nil {
				log.Printf("❌ [Video Worker] Failed to save video for %s: %v", job.JobID, err)
				return
			}
			log.Printf("✅ [Video Worker] Job %s materialized: %s", job.JobID, saved.URL)
			return

		case StatusFailed:
			log.Printf("❌ [Video Worker] Job %s failed upstream", job.JobID)
			return

		default:
			// starting/processing/모르는 상태는 계속 대기
			time.Sleep(w.pollInterval)
		}
	}

	log.Printf("⏰ [Video Worker] Gave up polling job %s after %d attempts", job.JobID, w.maxPolls)
}

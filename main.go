package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"studio-media-server/modules/common/config"
	"studio-media-server/modules/promptlab"
	"studio-media-server/modules/videogen"
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "studio-media-server",
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Provider 설정 로드 (키 없으면 경고만)
	videogen.LoadConfig()

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	// 비디오 생성 모듈
	videoHandler := videogen.NewHandler()
	videoHandler.RegisterRoutes(r)

	// 프롬프트 보정 모듈 (Gemini 키가 있을 때만)
	if promptHandler := promptlab.NewHandler(); promptHandler != nil {
		promptHandler.RegisterRoutes(r)
	}

	// 저장된 비디오 정적 서빙
	r.PathPrefix("/api/videos/").Handler(
		http.StripPrefix("/api/videos/", http.FileServer(http.Dir(cfg.VideoStorageDir))))

	// Auto-materialize 워커 시작 (백그라운드, Redis 있을 때만)
	if worker := videogen.NewWorker(); worker != nil {
		go worker.Start()
	}

	log.Printf("🚀 Studio Media Server starting on port %s", cfg.Port)
	log.Printf("🎬 Video API: http://localhost:%s/video", cfg.Port)
	log.Printf("📼 Stored videos: http://localhost:%s/api/videos/", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

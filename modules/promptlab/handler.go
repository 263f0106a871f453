package promptlab

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 프롬프트 보정 HTTP 핸들러
type Handler struct {
	service *Service
}

// EnhanceRequest - POST /prompt/enhance 요청
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
}

// EnhanceResponse - POST /prompt/enhance 응답
type EnhanceResponse struct {
	Success        bool   `json:"success"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
	Error          string `json:"error,omitempty"`
	Message        string `json:"message,omitempty"`
}

// NewHandler - Handler 생성 (Gemini 키가 없으면 nil)
func NewHandler() *Handler {
	service := NewService()
	if service == nil {
		return nil
	}
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/prompt/enhance", h.EnhancePrompt).Methods("POST", "OPTIONS")
	log.Println("✅ [PromptLab] Routes registered: POST /prompt/enhance")
}

// EnhancePrompt - POST /prompt/enhance
func (h *Handler) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnhanceResponse{Success: false, Error: "Invalid request body"})
		return
	}

	if req.Prompt == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnhanceResponse{Success: false, Error: "Prompt is required"})
		return
	}

	enhanced, err := h.service.Enhance(r.Context(), req.Prompt, req.Style)
	if err != nil {
		log.Printf("❌ [PromptLab] Enhance failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(EnhanceResponse{
			Success: false,
			Error:   "Failed to enhance prompt",
			Message: err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(EnhanceResponse{
		Success:        true,
		EnhancedPrompt: enhanced,
	})
}

package videogen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		APIKey:        "test-key",
		BaseURL:       baseURL,
		Version:       "v1",
		Model:         "video-01",
		SubmitTimeout: 5 * time.Second,
		StatusTimeout: 5 * time.Second,
		MaxRetries:    3,
		RetryDelay:    10 * time.Millisecond,
	}
}

func TestSubmitTextJobRetriesAndSurfacesLastFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"backend exploded"}}`)
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))
	_, err := svc.SubmitTextJob(context.Background(), "a cat surfing", "", 0, ResolveSettings(SettingsInput{}))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.Equal(t, "backend exploded", pe.Message)
}

func TestSubmitTextJobSucceedsWithinRetryBudget(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"job_id":         "job-42",
			"estimated_time": "120s",
		})
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))
	resp, err := svc.SubmitTextJob(context.Background(), "a cat surfing", "anime", 6, ResolveSettings(SettingsInput{}))

	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "no further attempts after success")
	assert.Equal(t, "job-42", resp.JobID)
	assert.Equal(t, "120s", resp.EstimatedTime)
}

func TestSubmitTextJobSendsModelAndSettings(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text_to_video", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1"})
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))
	settings := ResolveSettings(SettingsInput{Resolution: "1080p", FPS: "30"})
	_, err := svc.SubmitTextJob(context.Background(), "a red fox", "realistic", 5, settings)

	require.NoError(t, err)
	assert.Equal(t, "video-01", body["model"])
	assert.Equal(t, "a red fox", body["prompt"])
	assert.Equal(t, "realistic", body["style"])
	assert.Equal(t, float64(5), body["duration"])
	assert.Equal(t, "1080p", body["resolution"])
	assert.Equal(t, float64(30), body["fps"])
	assert.Equal(t, "high", body["quality"])
	assert.Equal(t, "mp4", body["format"])
}

func TestSubmitImageJobMultipart(t *testing.T) {
	imageData := []byte("fake-png-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/image_to_video", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "video-01", r.FormValue("model"))
		assert.Equal(t, "make it move", r.FormValue("prompt"))
		assert.Equal(t, "anime", r.FormValue("style"))
		// flatten된 설정 필드는 문자열로 전송
		assert.Equal(t, "720p", r.FormValue("resolution"))
		assert.Equal(t, "24", r.FormValue("fps"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, imageData, got)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-7", "estimated_time": "90s"})
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))
	resp, err := svc.SubmitImageJob(context.Background(), imageData, "image/png", "make it move", "anime", ResolveSettings(SettingsInput{}))

	require.NoError(t, err)
	assert.Equal(t, "job-7", resp.JobID)
}

func TestSubmitImageJobRetriesWithFreshBody(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got, "multipart body must be rebuilt per attempt")
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-8"})
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))
	resp, err := svc.SubmitImageJob(context.Background(), []byte("payload"), "image/png", "", "", ResolveSettings(SettingsInput{}))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "job-8", resp.JobID)
}

func TestCheckStatusPassesPayloadThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/video_jobs/job-5", r.URL.Path)
		io.WriteString(w, `{"status":"processing","progress":42,"estimated_time":"60s"}`)
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))
	payload, err := svc.CheckStatus(context.Background(), "job-5")

	require.NoError(t, err)
	assert.Equal(t, "processing", payload["status"])
	assert.Equal(t, float64(42), payload["progress"])
	assert.Equal(t, "60s", payload["estimated_time"])
}

func TestNetworkErrorWhenNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // 더 이상 응답하지 않는 주소

	svc := NewService(testConfig(url))
	_, err := svc.CheckStatus(context.Background(), "job-1")

	require.Error(t, err)
	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
}

func TestFormFieldValueSerializesObjectsAsJSON(t *testing.T) {
	assert.Equal(t, "plain", formFieldValue("plain"))
	assert.Equal(t, "24", formFieldValue(24))
	assert.Equal(t, "true", formFieldValue(true))
	assert.JSONEq(t, `{"a":1}`, formFieldValue(map[string]interface{}{"a": 1}))
	assert.JSONEq(t, `["x","y"]`, formFieldValue([]string{"x", "y"}))
}

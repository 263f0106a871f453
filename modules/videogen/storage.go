package videogen

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 저장 비디오의 고정 확장자와 public 서빙 prefix
const (
	videoExt     = ".mp4"
	publicPrefix = "/api/videos"
)

// DownloadError - 원격 결과물 다운로드 실패
type DownloadError struct {
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download video: %v", e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// WriteError - 로컬 파일시스템 쓰기 실패
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write video to storage: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store - 생성된 비디오의 로컬 저장소
type Store struct {
	root   string
	client *http.Client
}

// NewStore - Store 생성. 다운로드는 스트리밍이라 전체 타임아웃을 걸지 않는다.
func NewStore(root string) *Store {
	return &Store{
		root:   root,
		client: &http.Client{},
	}
}

// Root - 저장 루트 경로
func (st *Store) Root() string {
	return st.root
}

// SaveGeneratedVideo - 완료된 작업의 원격 비디오를 다운로드해서 로컬에 저장
// 같은 jobID는 같은 파일명으로 매핑되므로 재호출 시 덮어쓴다 (의도된 멱등성).
func (st *Store) SaveGeneratedVideo(ctx context.Context, videoURL, userID, jobID string) (*StoredVideo, error) {
	// userID가 없으면 공용 루트에 저장 - 익명 호출자 간 파일명 충돌 가능 (원 설계 유지)
	dir := st.root
	if userID != "" {
		dir = filepath.Join(st.root, userID)
	}

	// 동시 생성은 MkdirAll이 흡수 (already exists 허용)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Err: err}
	}

	filename := jobID
	if filename == "" {
		filename = uuid.New().String()
	}
	filename += videoExt
	destPath := filepath.Join(dir, filename)

	log.Printf("📥 [Video] Downloading result: %s → %s", videoURL, destPath)

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, &DownloadError{Err: err}
	}

	resp, err := st.client.Do(req)
	if err != nil {
		return nil, &DownloadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{Err: fmt.Errorf("status %d from %s", resp.StatusCode, videoURL)}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return nil, &WriteError{Err: err}
	}

	// 응답 body를 디스크로 바로 스트리밍 (메모리 버퍼링 없음)
	written, err := copyStream(file, resp.Body)
	if err != nil {
		os.Remove(destPath)
		return nil, err
	}

	relPath, err := filepath.Rel(st.root, destPath)
	if err != nil {
		relPath = filename
	}

	log.Printf("✅ [Video] Saved %s (%d bytes)", destPath, written)

	return &StoredVideo{
		Filename:  filename,
		URL:       publicPrefix + "/" + filepath.ToSlash(relPath),
		Path:      destPath,
		Size:      written,
		CreatedAt: modTimeOf(destPath),
	}, nil
}

// ListUserVideos - 사용자의 저장 비디오 목록 (최신순). 디렉토리가 없으면 빈 목록.
func (st *Store) ListUserVideos(userID string) []StoredVideo {
	dir := st.root
	if userID != "" {
		dir = filepath.Join(st.root, userID)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []StoredVideo{}
	}

	videos := []StoredVideo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), videoExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		relPath, err := filepath.Rel(st.root, path)
		if err != nil {
			relPath = entry.Name()
		}

		videos = append(videos, StoredVideo{
			Filename:  entry.Name(),
			URL:       publicPrefix + "/" + filepath.ToSlash(relPath),
			Path:      path,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})

	return videos
}

// DeleteVideo - 파일 삭제. 실제로 지워졌으면 true, 없거나 실패하면 false.
func (st *Store) DeleteVideo(path string) bool {
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ [Video] Failed to delete %s: %v", path, err)
		}
		return false
	}
	return true
}

// ResolvePath - /video/{videoId} 경로 조각을 저장 루트 아래 절대 경로로 변환
// 루트 밖으로 나가는 경로는 거부한다.
func (st *Store) ResolvePath(videoID string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(videoID))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", false
	}
	return filepath.Join(st.root, cleaned), true
}

// errTrackingWriter - 쓰기 측 실패를 따로 기록하는 writer
// io.Copy의 에러만으로는 원격 스트림 실패와 디스크 쓰기 실패를 구분할 수 없다.
type errTrackingWriter struct {
	w   io.Writer
	err error
}

func (w *errTrackingWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

// copyStream - src를 dst로 스트리밍하고 실패를 읽기/쓰기 측으로 분류
func copyStream(dst io.WriteCloser, src io.Reader) (int64, error) {
	w := &errTrackingWriter{w: dst}
	written, err := io.Copy(w, src)
	closeErr := dst.Close()

	switch {
	case w.err != nil:
		return written, &WriteError{Err: w.err}
	case closeErr != nil:
		return written, &WriteError{Err: closeErr}
	case err != nil:
		return written, &DownloadError{Err: err}
	}
	return written, nil
}

func modTimeOf(path string) time.Time {
	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Now()
}

package videogen

import (
	"encoding/json"
	"strconv"
	"strings"
)

// 기본 생성 설정
const (
	defaultResolution = "720p"
	defaultFPS        = 24
	defaultQuality    = "high"
	defaultFormat     = "mp4"

	minFPS = 15
	maxFPS = 60
)

// ResolveSettings - 부분 입력을 기본값과 합쳐 항상 유효한 설정을 만든다.
// 순수 함수이며 절대 실패하지 않는다. 잘못된 값은 조용히 기본값으로 대체.
func ResolveSettings(in SettingsInput) Settings {
	out := Settings{
		Resolution: defaultResolution,
		FPS:        defaultFPS,
		Quality:    defaultQuality,
		Format:     defaultFormat,
	}

	switch in.Resolution {
	case "480p", "720p", "1080p":
		out.Resolution = in.Resolution
	}

	if fps, ok := parseFPS(in.FPS); ok && fps >= minFPS && fps <= maxFPS {
		out.FPS = fps
	}

	switch in.Quality {
	case "low", "medium", "high":
		out.Quality = in.Quality
	}

	switch in.Format {
	case "mp4", "webm":
		out.Format = in.Format
	}

	return out
}

// parseFPS - fps 입력 파싱 (JSON number, 정수, 문자열 허용)
func parseFPS(v interface{}) (int, bool) {
	switch fps := v.(type) {
	case nil:
		return 0, false
	case int:
		return fps, true
	case int64:
		return int(fps), true
	case float64:
		return int(fps), true
	case json.Number:
		n, err := fps.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(fps))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

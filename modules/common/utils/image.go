package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF 디코더 등록
	_ "image/jpeg" // JPEG 디코더 등록
	"image/png"
	"log"
	"strings"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
)

// IsSupportedImageType - 업로드 허용 이미지 타입 체크 (jpeg/jpg/png/gif/webp)
func IsSupportedImageType(filename, mimeType string) bool {
	name := strings.ToLower(filename)
	for _, ext := range []string{".jpeg", ".jpg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// NormalizeToPNG - 업로드 이미지를 provider가 받는 포맷으로 정규화
// WebP/GIF는 PNG로 재인코딩하고, PNG/JPEG은 원본 그대로 통과시킨다.
func NormalizeToPNG(imageData []byte) ([]byte, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	switch format {
	case "png":
		return imageData, "image/png", nil
	case "jpeg":
		return imageData, "image/jpeg", nil
	}

	// WebP/GIF → PNG 재인코딩
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	log.Printf("🔄 Image normalized: %s → png (%d bytes → %d bytes)", format, len(imageData), buf.Len())
	return buf.Bytes(), "image/png", nil
}

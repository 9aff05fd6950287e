package service

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/config"
)

// Sentinel errors for audio uploads.
var (
	ErrUnsupportedAudio = errors.New("unsupported audio type")
	ErrAudioTooLarge    = errors.New("audio file too large")
)

// Allowed audio MIME types.
var allowedAudioTypes = map[string]string{
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/wav":  ".wav",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".m4a",
}

// responsesDir is the subdirectory of the upload dir holding recordings.
const responsesDir = "responses"

// MediaService stores recorded audio answers.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveAudio saves an uploaded recording under a UUID filename and returns
// its URL path below /uploads.
func (s *MediaService) SaveAudio(file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := audioType(header.Header.Get("Content-Type"))
	ext, ok := allowedAudioTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedAudio, contentType, strings.Join(allowedTypes(), ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrAudioTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	dir := filepath.Join(s.cfg.UploadDir, responsesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// Guard against a lying Size header.
	n, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if n > s.cfg.MaxUploadBytes {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("%w: more than %d bytes", ErrAudioTooLarge, s.cfg.MaxUploadBytes)
	}

	return "/uploads/" + responsesDir + "/" + filename, nil
}

// audioType strips parameters such as "audio/webm;codecs=opus".
func audioType(raw string) string {
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mt
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedAudioTypes))
	for t := range allowedAudioTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

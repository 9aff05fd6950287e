package service

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/candidate-assessment/internal/config"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func upload(contentType string, body []byte) (multipart.File, *multipart.FileHeader) {
	h := &multipart.FileHeader{
		Filename: "answer",
		Header:   textproto.MIMEHeader{"Content-Type": {contentType}},
		Size:     int64(len(body)),
	}
	return memFile{bytes.NewReader(body)}, h
}

func TestSaveAudio(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 16})

	f, h := upload("audio/webm;codecs=opus", []byte("opus-frames"))
	url, err := svc.SaveAudio(f, h)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/responses/"))
	assert.True(t, strings.HasSuffix(url, ".webm"))

	saved, err := os.ReadFile(filepath.Join(dir, "responses", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "opus-frames", string(saved))

	f, h = upload("image/png", []byte("png"))
	_, err = svc.SaveAudio(f, h)
	assert.ErrorIs(t, err, ErrUnsupportedAudio)

	f, h = upload("audio/wav", bytes.Repeat([]byte{1}, 17))
	_, err = svc.SaveAudio(f, h)
	assert.ErrorIs(t, err, ErrAudioTooLarge)

	// Declared size under the limit, actual body over it.
	f, h = upload("audio/ogg", bytes.Repeat([]byte{1}, 32))
	h.Size = 4
	_, err = svc.SaveAudio(f, h)
	assert.ErrorIs(t, err, ErrAudioTooLarge)
}

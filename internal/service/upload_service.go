package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/content"
	"eldrix/admin/internal/ids"
	"eldrix/admin/internal/media/sniffer"
	"eldrix/admin/internal/media/svg"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/storage"
)

type imagePoster interface {
	EnsureWritable(ctx context.Context, sessionID string) error
	Append(ctx context.Context, sessionID, body string, isAdmin bool) (models.Message, error)
}

type UploadInput struct {
	File         io.Reader
	Size         int64
	DeclaredType string
	SessionID    string
}

type UploadResult struct {
	URL     string
	Key     string
	MIME    string
	Size    int64
	Message *models.Message
}

type UploadService struct {
	store    ObjectStorage
	messages imagePoster
	maxBytes int64
	prefix   string
	log      zerolog.Logger
}

func NewUploadService(store ObjectStorage, messages imagePoster, maxBytes int64, prefix string, log zerolog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &UploadService{
		store:    store,
		messages: messages,
		maxBytes: maxBytes,
		prefix:   prefix,
		log:      log,
	}
}

// UploadImage stores an admin image. With a SessionID the image is also
// posted to that session as an admin message.
func (s *UploadService) UploadImage(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.File == nil {
		return UploadResult{}, apperr.Validation("file", "file is required")
	}
	if input.Size > s.maxBytes {
		return UploadResult{}, s.tooLarge()
	}

	if input.SessionID != "" {
		if err := s.messages.EnsureWritable(ctx, input.SessionID); err != nil {
			return UploadResult{}, err
		}
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxBytes+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return UploadResult{}, s.tooLarge()
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	detected, err := sniffer.DetectHead(head)
	if err != nil {
		return UploadResult{}, apperr.Validation("file", "file must be an image")
	}
	if declared := input.DeclaredType; declared != "" && declared != "application/octet-stream" && declared != detected.MIME {
		return UploadResult{}, apperr.Validation("file", fmt.Sprintf("declared type %s does not match content %s", declared, detected.MIME))
	}

	if detected.IsSVG() {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return UploadResult{}, apperr.Validation("file", "file must be an image")
		}
		data = clean
	}

	key := path.Join(s.prefix, fmt.Sprintf("admin-%s.%s", ids.New(), detected.Ext))
	url, err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), detected.MIME)
	if err != nil {
		return UploadResult{}, apperr.Upstream("Image upload", err)
	}

	result := UploadResult{URL: url, Key: key, MIME: detected.MIME, Size: int64(len(data))}
	s.log.Info().Str("key", key).Int64("size", result.Size).Msg("image uploaded")

	if input.SessionID != "" {
		msg, err := s.messages.Append(ctx, input.SessionID, content.ImageMarkup(url), true)
		if err != nil {
			return UploadResult{}, err
		}
		result.Message = &msg
	}
	return result, nil
}

func (s *UploadService) ListRecordings(ctx context.Context) ([]storage.ObjectInfo, error) {
	recordings, err := s.store.ListRecordings(ctx)
	if err != nil {
		return nil, apperr.Upstream("List recordings", err)
	}
	return recordings, nil
}

func (s *UploadService) tooLarge() error {
	return apperr.Validation("file", fmt.Sprintf("file must be at most %dMB", s.maxBytes>>20))
}

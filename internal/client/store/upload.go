package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/veristream/veristream-cli/internal/client/api"
)

// ErrUploadInProgress is returned when an upload is started while another
// one is still sending.
var ErrUploadInProgress = errors.New("upload already in progress")

// UploadRequest describes the video being uploaded. Size must be the exact
// byte length of the reader's content.
type UploadRequest struct {
	Filename     string
	Title        string
	Description  string
	Location     string
	ThumbnailURL string
	Size         int64
}

// UploadVideo slices the content into fixed-size chunks and submits them
// strictly in order: chunk n+1 is not sent until chunk n's request has
// resolved (the server appends by arrival order). Progress advances one
// step per confirmed chunk. A failed chunk aborts the remaining sequence
// with no retry, recording the failing index and the error. On completion
// the cached feed is invalidated so the new video shows up on the next load.
func (s *Store) UploadVideo(ctx context.Context, req UploadRequest, r io.Reader) error {
	if apiErr := validateUpload(req); apiErr != nil {
		s.mu.Lock()
		s.upload.Error = apiErr
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrValidation, apiErr.Message)
	}

	total := int((req.Size + s.chunkSize - 1) / s.chunkSize)

	s.mu.Lock()
	if s.upload.Phase == UploadSending {
		s.mu.Unlock()
		return ErrUploadInProgress
	}
	s.upload = UploadState{Phase: UploadSending, TotalChunks: total}
	s.mu.Unlock()

	remaining := req.Size
	for i := 0; i < total; i++ {
		size := s.chunkSize
		if remaining < size {
			size = remaining
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return s.failUpload(ctx, i, fmt.Errorf("read chunk %d: %w", i, err))
		}

		chunk := api.ChunkUpload{
			Data:        data,
			Filename:    req.Filename,
			Index:       i,
			Total:       total,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
		}
		if i == 0 {
			chunk.ThumbnailURL = req.ThumbnailURL
		}

		if err := s.api.UploadChunk(ctx, chunk); err != nil {
			return s.failUpload(ctx, i, err)
		}

		remaining -= size

		s.mu.Lock()
		s.upload.ChunksSent = i + 1
		s.upload.Progress = float64(i+1) / float64(total) * 100
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.upload.Phase = UploadComplete
	s.upload.Progress = 100
	s.feed.Invalidated = true
	s.mu.Unlock()

	s.log.Info(ctx, "upload complete", "filename", req.Filename, "chunks", total)
	return nil
}

// ResetUpload returns the upload slice to idle so a new upload can start.
func (s *Store) ResetUpload() {
	s.mu.Lock()
	s.upload = UploadState{Phase: UploadIdle}
	s.mu.Unlock()
}

func (s *Store) failUpload(ctx context.Context, chunk int, err error) error {
	s.mu.Lock()
	s.upload.Phase = UploadFailed
	s.upload.FailedChunk = chunk
	s.upload.Error = asAPIError(err)
	s.mu.Unlock()

	s.log.Error(ctx, "upload failed", "chunk", chunk, "error", err)
	return err
}

func validateUpload(req UploadRequest) *api.Error {
	fields := map[string][]string{}
	if strings.TrimSpace(req.Filename) == "" {
		fields["filename"] = []string{"required"}
	}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = []string{"required"}
	}
	if len(fields) > 0 {
		return validationError("missing required fields", fields)
	}
	if req.Size <= 0 {
		return validationError("file is empty", map[string][]string{"file": {"must not be empty"}})
	}
	return nil
}

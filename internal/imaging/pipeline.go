// Package imaging converts uploaded files into inline base64 data URIs,
// the only image representation the backend API stores.
package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
)

// File is a single uploaded file entering the pipeline.
type File struct {
	Name   string
	Reader io.Reader
}

// Preview is an ingested image ready to display and submit. Src is a
// data URI ("data:image/png;base64,....") usable directly as an image
// source and as the stored representation.
type Preview struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Pipeline ingests uploaded files concurrently. Ingestion is best effort:
// files that fail to read, exceed the size limit, or are not images are
// skipped with a warning rather than failing the batch.
type Pipeline struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewPipeline creates a pipeline. maxBytes caps the accepted size of a
// single file; 0 means no limit.
func NewPipeline(maxBytes int64, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Ingest encodes the given files in parallel, one goroutine per file.
// Results come back in submission order regardless of which file finishes
// first. An error is returned only when every file in a non-empty batch
// was rejected.
func (p *Pipeline) Ingest(ctx context.Context, files []File) ([]Preview, error) {
	if len(files) == 0 {
		return []Preview{}, nil
	}

	results := make([]*Preview, len(files))
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(idx int, file File) {
			defer wg.Done()

			preview, err := p.encode(file)
			if err != nil {
				p.logger.WarnContext(ctx, "skipping file during image ingestion",
					slog.String("file", file.Name),
					slog.String("error", err.Error()),
				)
				return
			}
			results[idx] = preview
		}(i, f)
	}

	wg.Wait()

	previews := make([]Preview, 0, len(files))
	for _, r := range results {
		if r != nil {
			previews = append(previews, *r)
		}
	}

	if len(previews) == 0 {
		return nil, apperrors.InvalidInput("no usable image files in upload")
	}

	return previews, nil
}

func (p *Pipeline) encode(file File) (*Preview, error) {
	reader := file.Reader
	if p.maxBytes > 0 {
		// Read one byte past the limit to detect oversize files.
		reader = io.LimitReader(reader, p.maxBytes+1)
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if p.maxBytes > 0 && int64(len(raw)) > p.maxBytes {
		return nil, fmt.Errorf("file exceeds %d byte limit", p.maxBytes)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	mime := mimetype.Detect(raw)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("unsupported content type %s", mime.String())
	}

	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mime.String())
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(raw))

	return &Preview{
		ID:   uuid.New().String(),
		Name: file.Name,
		Src:  b.String(),
	}, nil
}

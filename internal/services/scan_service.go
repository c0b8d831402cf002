package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cents/internal/core"
	"cents/internal/objectstore"
	"cents/internal/receipt"
	"cents/internal/store"
)

// MaxImageSize caps uploads at 10 MiB; phone photos are well under this.
const MaxImageSize = 10 << 20

var (
	ErrEmptyImage       = errors.New("empty image upload")
	ErrImageTooLarge    = errors.New("image too large")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// JobPublisher pushes scan jobs to the worker. Satisfied by *amqp.Client.
type JobPublisher interface {
	PublishScanJob(ctx context.Context, scanID, imageKey string) error
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// ScanService orchestrates the receipt scan pipeline: store the image, record
// a pending scan, hand the job to the worker. The broker is best effort; a
// lost publish is recovered by the worker's pending sweep.
type ScanService struct {
	scans     store.ScanStore
	images    store.ImageStore
	publisher JobPublisher
	parser    *receipt.Parser
}

func NewScanService(scans store.ScanStore, images store.ImageStore, publisher JobPublisher, parser *receipt.Parser) *ScanService {
	return &ScanService{
		scans:     scans,
		images:    images,
		publisher: publisher,
		parser:    parser,
	}
}

// SubmitImage accepts an uploaded receipt image and returns the pending scan.
func (s *ScanService) SubmitImage(ctx context.Context, data []byte, contentType string) (core.Scan, error) {
	if len(data) == 0 {
		return core.Scan{}, ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return core.Scan{}, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}
	if !allowedImageTypes[contentType] {
		return core.Scan{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}

	scan := core.Scan{
		ID:          uuid.NewString(),
		Status:      core.ScanPending,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	scan.ImageKey = objectstore.ImageKey(scan.ID, contentType)

	if err := s.images.Put(ctx, scan.ImageKey, contentType, data); err != nil {
		return core.Scan{}, fmt.Errorf("store image: %w", err)
	}
	if err := s.scans.CreateScan(ctx, scan); err != nil {
		return core.Scan{}, fmt.Errorf("create scan: %w", err)
	}

	// Publish async job (non-blocking for the upload)
	if err := s.publishScanJob(ctx, scan); err != nil {
		slog.ErrorContext(ctx, "Failed to publish scan job",
			"scan_id", scan.ID, "error", err)
		// Don't fail the request - the pending sweep will pick it up
	}

	return scan, nil
}

// ParseText runs the receipt parser synchronously over text the client
// already extracted (on-device OCR) and records a completed scan for audit.
// Parsing never fails; problems describe fields that need manual review.
func (s *ScanService) ParseText(ctx context.Context, text string) (core.Scan, []string) {
	result := s.parser.Parse(text)
	now := time.Now().UTC()
	scan := core.Scan{
		ID:        uuid.NewString(),
		Status:    core.ScanCompleted,
		Result:    &result,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.scans.CreateScan(ctx, scan); err != nil {
		// Audit record only; the parse result is still returned.
		slog.WarnContext(ctx, "Failed to record text scan",
			"scan_id", scan.ID, "error", err)
	}
	return scan, receipt.Validate(result)
}

// GetScan returns the current state of a scan.
func (s *ScanService) GetScan(ctx context.Context, id string) (core.Scan, error) {
	return s.scans.GetScan(ctx, id)
}

func (s *ScanService) publishScanJob(ctx context.Context, scan core.Scan) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Job publisher not available, relying on pending sweep")
		return nil
	}
	return s.publisher.PublishScanJob(ctx, scan.ID, scan.ImageKey)
}

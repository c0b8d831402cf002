// Package worker processes queued receipt scans: fetch the image, run OCR,
// parse the text and persist the result.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cents/internal/amqp"
	"cents/internal/core"
	"cents/internal/ocr"
	"cents/internal/receipt"
	"cents/internal/store"
)

// ScanWorker drives pending scans through OCR and parsing.
type ScanWorker struct {
	scans     store.ScanStore
	images    store.ImageStore
	engine    ocr.Engine
	parser    *receipt.Parser
	batchSize int
}

func NewScanWorker(scans store.ScanStore, images store.ImageStore, engine ocr.Engine, parser *receipt.Parser, batchSize int) *ScanWorker {
	return &ScanWorker{
		scans:     scans,
		images:    images,
		engine:    engine,
		parser:    parser,
		batchSize: batchSize,
	}
}

// HandleScanMessage processes a single scan job message from AMQP.
func (w *ScanWorker) HandleScanMessage(ctx context.Context, msg *amqp.ScanJobMessage) error {
	slog.InfoContext(ctx, "Processing scan message", "scan_id", msg.ScanID)
	return w.processScan(ctx, msg.ScanID)
}

// ProcessPendingScans processes scans still marked pending. This is the
// backup path for jobs whose AMQP message was lost.
func (w *ScanWorker) ProcessPendingScans(ctx context.Context) error {
	pending, err := w.scans.ListPendingScans(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending scans: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending scans", "count", len(pending))

	for _, scan := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.processScan(ctx, scan.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to process pending scan",
				"scan_id", scan.ID, "error", err)
		}
	}

	return nil
}

// processScan runs one scan through the pipeline. OCR failures mark the scan
// failed rather than bubbling up, so a poison image cannot wedge the queue;
// only infrastructure errors (store unavailable) are returned for retry.
func (w *ScanWorker) processScan(ctx context.Context, id string) error {
	scan, err := w.scans.GetScan(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrScanNotFound) {
			slog.WarnContext(ctx, "Scan message for unknown scan, dropping", "scan_id", id)
			return nil
		}
		return fmt.Errorf("get scan: %w", err)
	}

	if scan.Status != core.ScanPending {
		slog.InfoContext(ctx, "Scan already processed, skipping",
			"scan_id", id, "status", scan.Status)
		return nil
	}

	image, contentType, err := w.images.Get(ctx, scan.ImageKey)
	if err != nil {
		return w.fail(ctx, id, fmt.Sprintf("fetch image: %v", err))
	}

	text, err := w.engine.ExtractText(ctx, image, contentType)
	if err != nil {
		return w.fail(ctx, id, fmt.Sprintf("extract text: %v", err))
	}

	result := w.parser.Parse(text)
	if err := w.scans.CompleteScan(ctx, id, result); err != nil {
		return fmt.Errorf("complete scan: %w", err)
	}

	slog.InfoContext(ctx, "Scan completed",
		"scan_id", id,
		"merchant", result.Merchant,
		"confidence", result.Confidence,
		"items", len(result.Items))

	return nil
}

func (w *ScanWorker) fail(ctx context.Context, id, reason string) error {
	slog.WarnContext(ctx, "Scan failed", "scan_id", id, "reason", reason)
	if err := w.scans.FailScan(ctx, id, reason); err != nil {
		return fmt.Errorf("fail scan: %w", err)
	}
	return nil
}

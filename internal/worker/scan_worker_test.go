package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"cents/internal/amqp"
	"cents/internal/core"
	"cents/internal/receipt"
	"cents/internal/store/memory"
)

type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) ExtractText(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

func fixedParser() *receipt.Parser {
	return receipt.New(receipt.WithClock(func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}))
}

func seedScan(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	ctx := context.Background()
	if err := s.Put(ctx, "receipts/"+id+".jpg", "image/jpeg", []byte{0xFF, 0xD8}); err != nil {
		t.Fatalf("put image: %v", err)
	}
	err := s.CreateScan(ctx, core.Scan{
		ID:          id,
		Status:      core.ScanPending,
		ImageKey:    "receipts/" + id + ".jpg",
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("create scan: %v", err)
	}
}

func TestHandleScanMessage_Completes(t *testing.T) {
	s := memory.New()
	engine := &fakeEngine{text: "COSTCO WHOLESALE\nMILK 2% GAL 3.49\nTOTAL $97.18\n12/25/2023"}
	w := NewScanWorker(s, s, engine, fixedParser(), 10)
	seedScan(t, s, "scan-1")

	err := w.HandleScanMessage(context.Background(), &amqp.ScanJobMessage{ScanID: "scan-1"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	scan, _ := s.GetScan(context.Background(), "scan-1")
	if scan.Status != core.ScanCompleted {
		t.Fatalf("status = %s, want completed", scan.Status)
	}
	if scan.Result == nil || scan.Result.Merchant != "Costco" {
		t.Fatalf("unexpected result: %+v", scan.Result)
	}
}

func TestHandleScanMessage_OCRFailureMarksFailed(t *testing.T) {
	s := memory.New()
	engine := &fakeEngine{err: errors.New("model unavailable")}
	w := NewScanWorker(s, s, engine, fixedParser(), 10)
	seedScan(t, s, "scan-1")

	// OCR failure must not requeue the message.
	if err := w.HandleScanMessage(context.Background(), &amqp.ScanJobMessage{ScanID: "scan-1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	scan, _ := s.GetScan(context.Background(), "scan-1")
	if scan.Status != core.ScanFailed || scan.Error == "" {
		t.Fatalf("expected failed scan with reason, got %+v", scan)
	}
}

func TestHandleScanMessage_UnknownScanDropped(t *testing.T) {
	s := memory.New()
	w := NewScanWorker(s, s, &fakeEngine{text: "x"}, fixedParser(), 10)

	if err := w.HandleScanMessage(context.Background(), &amqp.ScanJobMessage{ScanID: "ghost"}); err != nil {
		t.Fatalf("unknown scan should be dropped, got %v", err)
	}
}

func TestHandleScanMessage_AlreadyProcessedSkipped(t *testing.T) {
	s := memory.New()
	engine := &fakeEngine{text: "SHELL\nTOTAL 42.00"}
	w := NewScanWorker(s, s, engine, fixedParser(), 10)
	seedScan(t, s, "scan-1")

	ctx := context.Background()
	if err := w.HandleScanMessage(ctx, &amqp.ScanJobMessage{ScanID: "scan-1"}); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	first, _ := s.GetScan(ctx, "scan-1")

	// A duplicate delivery must not reprocess.
	engine.text = "DIFFERENT STORE\nTOTAL 1.00"
	if err := w.HandleScanMessage(ctx, &amqp.ScanJobMessage{ScanID: "scan-1"}); err != nil {
		t.Fatalf("second handle: %v", err)
	}
	second, _ := s.GetScan(ctx, "scan-1")
	if second.Result.Merchant != first.Result.Merchant {
		t.Fatalf("duplicate delivery reprocessed the scan")
	}
}

func TestProcessPendingScans(t *testing.T) {
	s := memory.New()
	engine := &fakeEngine{text: "WALMART\nTOTAL 10.00"}
	w := NewScanWorker(s, s, engine, fixedParser(), 10)
	for _, id := range []string{"a", "b", "c"} {
		seedScan(t, s, id)
	}

	if err := w.ProcessPendingScans(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}

	pending, _ := s.ListPendingScans(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("still pending: %v", pending)
	}
	for _, id := range []string{"a", "b", "c"} {
		scan, _ := s.GetScan(context.Background(), id)
		if scan.Status != core.ScanCompleted {
			t.Fatalf("scan %s status = %s", id, scan.Status)
		}
	}
}

func TestProcessPendingScans_BatchLimit(t *testing.T) {
	s := memory.New()
	engine := &fakeEngine{text: "WALMART\nTOTAL 10.00"}
	w := NewScanWorker(s, s, engine, fixedParser(), 2)
	for _, id := range []string{"a", "b", "c"} {
		seedScan(t, s, id)
	}

	if err := w.ProcessPendingScans(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}

	pending, _ := s.ListPendingScans(context.Background(), 10)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1 left after batch of 2", len(pending))
	}
}

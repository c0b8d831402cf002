package amqp

import (
	"encoding/json"
	"time"
)

// ScanJobMessage tells the worker a receipt image is waiting to be processed.
// It carries only identifiers; the worker fetches the scan row and the image
// itself from their stores.
type ScanJobMessage struct {
	ScanID    string    `json:"scan_id"`
	ImageKey  string    `json:"image_key"`
	Timestamp time.Time `json:"timestamp"`
}

// NewScanJobMessage creates a job message for a freshly uploaded scan.
func NewScanJobMessage(scanID, imageKey string) *ScanJobMessage {
	return &ScanJobMessage{
		ScanID:    scanID,
		ImageKey:  imageKey,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ScanJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ScanJobMessageFromJSON creates a message from JSON bytes
func ScanJobMessageFromJSON(data []byte) (*ScanJobMessage, error) {
	var msg ScanJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package events

import (
	"testing"
	"time"
)

func TestNewAuditCompleted(t *testing.T) {
	before := time.Now()
	event := NewAuditCompleted("report-1", "tx.csv", 72)

	if event.EventType() != "AUDIT_COMPLETED" {
		t.Errorf("EventType() = %q", event.EventType())
	}

	payload := event.Payload()
	if payload["report_id"] != "report-1" {
		t.Errorf("report_id = %v", payload["report_id"])
	}
	if payload["filename"] != "tx.csv" {
		t.Errorf("filename = %v", payload["filename"])
	}
	if payload["health_score"] != float64(72) {
		t.Errorf("health_score = %v", payload["health_score"])
	}

	if event.Timestamp().Before(before) {
		t.Errorf("Timestamp() = %v, before %v", event.Timestamp(), before)
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")

	log.Debug("suppressed")
	log.Info("suppressed too")
	log.Warn("shown")

	lines := strings.Count(strings.TrimSpace(buf.String()), "\n") + 1
	if buf.Len() == 0 {
		t.Fatal("expected warn message to be written")
	}
	if lines != 1 {
		t.Errorf("expected 1 log line, got %d: %s", lines, buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing from output: %s", buf.String())
	}
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").Named("dispatcher")

	log.Info("dispatching")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["component"] != "dispatcher" {
		t.Errorf("component = %v, want dispatcher", entry["component"])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.WithFields(map[string]interface{}{
		"ticker": "005930",
		"market": "KR",
	}).Info("analysis started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["ticker"] != "005930" {
		t.Errorf("ticker = %v, want 005930", entry["ticker"])
	}
	if entry["market"] != "KR" {
		t.Errorf("market = %v, want KR", entry["market"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.WithError(errors.New("connection refused")).Error("agent call failed")

	if !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("error field missing from output: %s", buf.String())
	}
}

func TestParseLogLevel_Unknown(t *testing.T) {
	if got := parseLogLevel("nonsense"); got.String() != "info" {
		t.Errorf("unknown level should default to info, got %s", got)
	}
}

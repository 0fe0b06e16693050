package utils

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, INFO)

	logger.Debug("hidden", nil)
	logger.With(map[string]interface{}{"session": "abc"}).Info("scene added", map[string]interface{}{
		"index": 2,
		"count": 3,
	})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[INFO]") || !strings.Contains(out, "scene added") {
		t.Fatalf("missing info line: %q", out)
	}
	if !strings.Contains(out, "| count=3 index=2 session=abc") {
		t.Fatalf("expected sorted fields, got %q", out)
	}
	if !strings.Contains(out, "utils_test.go:") {
		t.Fatalf("expected caller file in line, got %q", out)
	}
}

func TestDerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, ERROR)
	child := logger.With(map[string]interface{}{"k": "v"})

	child.Warn("dropped", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}

	logger.SetLogLevel(DEBUG)
	child.Debug("kept", nil)
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected child to follow root level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{"debug": DEBUG, "": INFO, "warn": WARNING, "ERROR": ERROR} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mc.IncrementCounter("hits")
		}()
	}
	wg.Wait()

	if got := mc.GetCounterValue("hits"); got != 100 {
		t.Fatalf("expected 100 hits, got %d", got)
	}

	mc.AddGauge("sessions", 2)
	mc.AddGauge("sessions", -1)
	if got := mc.GetGauge("sessions"); got != 1 {
		t.Fatalf("expected gauge 1, got %d", got)
	}

	mc.RecordHistogram("latency", 10)
	mc.RecordHistogram("latency", 30)
	hist := mc.GetMetrics()["histograms"].(map[string]map[string]int64)["latency"]
	if hist["count"] != 2 || hist["sum"] != 40 || hist["min"] != 10 || hist["max"] != 30 {
		t.Fatalf("unexpected histogram %v", hist)
	}
}

func TestAPIMetricsGeneration(t *testing.T) {
	mc := NewMetricsCollector()
	am := NewAPIMetrics(mc, NewLogger(&bytes.Buffer{}, ERROR))

	am.RecordGeneration(true, 20*time.Millisecond)
	am.RecordGeneration(false, 5*time.Millisecond)
	am.RecordAPIRequest("/api/health", "GET", 200, time.Millisecond)

	if mc.GetCounterValue("generation.requests") != 2 ||
		mc.GetCounterValue("generation.success") != 1 ||
		mc.GetCounterValue("generation.failure") != 1 {
		t.Fatalf("unexpected generation counters %v", mc.GetMetrics()["counters"])
	}
	if mc.GetCounterValue("api.responses.2xx") != 1 {
		t.Fatalf("expected one 2xx response")
	}
}

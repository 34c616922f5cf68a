package diagnostics

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHostSnapshotMarshalsExpectedKeys(t *testing.T) {
	snapshot := HostSnapshot{
		Hostname:      "box",
		OSName:        "windows",
		KernelVersion: "10.0.19045",
		Architecture:  "amd64",
		CPUCount:      8,
		CPUBrand:      "Example CPU",
		TotalMemory:   16_000_000_000,
		UsedMemory:    4_000_000_000,
		Uptime:        3600,
		LoadAverage:   LoadAverage{One: 0.1, Five: 0.2, Fifteen: 0.3},
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{
		"hostname", "os_name", "kernel_version", "architecture",
		"cpu_count", "cpu_brand", "total_memory", "used_memory",
		"uptime", "load_average",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := doc["batteries"]; ok {
		t.Error("batteries key present despite omitempty with a nil slice")
	}
}

func TestHostSnapshotIncludesBatteriesWhenPresent(t *testing.T) {
	snapshot := HostSnapshot{Batteries: []Battery{{ChargePercent: 87.5, State: "Charging"}}}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := doc["batteries"]; !ok {
		t.Error("batteries key missing despite a non-empty slice")
	}
}

func TestWatchChildReturnsImmediatelyForUnknownPID(t *testing.T) {
	called := false
	done := make(chan struct{})

	go func() {
		WatchChild(0, time.Second, 10*time.Millisecond, func(ChildSample) { called = true })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchChild did not return promptly for a nonexistent pid")
	}
	if called {
		t.Error("callback invoked for a nonexistent pid")
	}
}

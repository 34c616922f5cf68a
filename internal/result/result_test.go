package result

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestExitWritesSixKeyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	r := New(path)
	r.SetChildStdout([]byte("hello\x00world"))
	r.SetChildStderr(nil)
	r.SetChildExitCode(0)

	got := r.Exit(0)
	if got != 0 {
		t.Fatalf("Exit returned %d, want 0", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result file: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("result file is not valid JSON: %v", err)
	}

	wantKeys := []string{
		"internal_error", "child_timed_out", "child_exit_code",
		"child_stdout", "child_stderr", "exit_code",
	}
	if len(doc) != len(wantKeys) {
		t.Fatalf("document has %d keys, want exactly %d: %v", len(doc), len(wantKeys), doc)
	}
	for _, key := range wantKeys {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(doc["child_stdout"].(string))
	if err != nil {
		t.Fatalf("child_stdout is not valid base64: %v", err)
	}
	if string(decoded) != "hello\x00world" {
		t.Errorf("child_stdout decoded to %q, want %q", decoded, "hello\x00world")
	}
}

func TestExitWithoutChildExitCodeIsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	r := New(path)
	r.Exit(1)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result file: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("result file is not valid JSON: %v", err)
	}
	if doc["child_exit_code"] != nil {
		t.Errorf("child_exit_code = %v, want nil", doc["child_exit_code"])
	}
}

func TestSetInternalErrorAppendsCause(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	r := New(path)
	r.SetInternalError("unable to spawn child", os.ErrNotExist)
	r.Exit(1)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("result file is not valid JSON: %v", err)
	}
	msg, _ := doc["internal_error"].(string)
	if want := "unable to spawn child: " + os.ErrNotExist.Error(); msg != want {
		t.Fatalf("internal_error = %q, want %q", msg, want)
	}
}

func TestChildTimedOutImpliesKillCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	r := New(path)
	r.MarkChildTimedOut()
	r.SetChildExitCode(1)
	r.Exit(0)

	raw, _ := os.ReadFile(path)
	var doc map[string]any
	json.Unmarshal(raw, &doc)

	if doc["child_timed_out"] != true {
		t.Errorf("child_timed_out = %v, want true", doc["child_timed_out"])
	}
	if doc["child_exit_code"] != float64(1) {
		t.Errorf("child_exit_code = %v, want 1", doc["child_exit_code"])
	}
}

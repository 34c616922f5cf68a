// Package result builds and serializes the final JSON record of a
// sandboxed run: whatever the child printed, how it exited (or didn't),
// and any internal error the pipeline itself hit along the way.
package result

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// Result accumulates everything a run needs to report before the process
// exits. Create it with New: the zero value has no output path, so its Exit
// writes nothing.
type Result struct {
	path string

	internalError string
	childTimedOut bool
	childExitCode *int
	childStdout   []byte
	childStderr   []byte
}

// New returns a Result that writes to path when Exit is called.
func New(path string) *Result {
	return &Result{path: path}
}

// SetInternalError records a failure in the pipeline itself (as opposed to
// a failure of the child), appending the OS's own description of cause.
func (r *Result) SetInternalError(message string, cause error) {
	if cause != nil {
		r.internalError = fmt.Sprintf("%s: %v", message, cause)
	} else {
		r.internalError = message
	}
}

// MarkChildTimedOut records that the child was force-terminated after its
// wall-clock budget expired.
func (r *Result) MarkChildTimedOut() {
	r.childTimedOut = true
}

// SetChildExitCode records the child's own exit code, when one was
// successfully collected.
func (r *Result) SetChildExitCode(code int) {
	r.childExitCode = &code
}

// SetChildStdout records the child's captured standard output.
func (r *Result) SetChildStdout(contents []byte) {
	r.childStdout = contents
}

// SetChildStderr records the child's captured standard error.
func (r *Result) SetChildStderr(contents []byte) {
	r.childStderr = contents
}

// document is the exact on-disk JSON shape: six keys, always present.
type document struct {
	InternalError  string `json:"internal_error"`
	ChildTimedOut  bool   `json:"child_timed_out"`
	ChildExitCode  *int   `json:"child_exit_code"`
	ChildStdout    string `json:"child_stdout"`
	ChildStderr    string `json:"child_stderr"`
	ExitCode       int    `json:"exit_code"`
}

// Exit serializes the accumulated result to disk and returns exitCode
// unchanged, so callers can write `os.Exit(result.Exit(code))` as their
// final line.
func (r *Result) Exit(exitCode int) int {
	doc := document{
		InternalError: r.internalError,
		ChildTimedOut: r.childTimedOut,
		ChildExitCode: r.childExitCode,
		ChildStdout:   base64.StdEncoding.EncodeToString(r.childStdout),
		ChildStderr:   base64.StdEncoding.EncodeToString(r.childStderr),
		ExitCode:      exitCode,
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// Marshaling a plain struct of strings/bools/ints cannot fail; if it
		// ever does, there is nothing sensible left to report to the result
		// file itself.
		return exitCode
	}

	if err := os.WriteFile(r.path, encoded, 0o644); err != nil {
		return exitCode
	}

	return exitCode
}

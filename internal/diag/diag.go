package diag

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact names match what operators already grep for after a bad run.
const (
	errorFileName   = "bterror.log"
	payloadFileName = "btresultpacket.json"
)

// Recorder preserves the most recent malformed feed payload next to the
// decode error that rejected it. Each failure overwrites the previous pair,
// so the artifacts always describe the latest incident.
type Recorder struct {
	dir string
}

// NewRecorder ensures dir exists and returns a recorder writing into it.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create diagnostics dir: %w", err)
	}
	return &Recorder{dir: dir}, nil
}

// RecordDecodeFailure writes the decode error and the offending payload.
func (r *Recorder) RecordDecodeFailure(payload []byte, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	if err := os.WriteFile(r.ErrorPath(), []byte(message), 0o644); err != nil {
		return fmt.Errorf("write decode error artifact: %w", err)
	}
	if err := os.WriteFile(r.PayloadPath(), payload, 0o644); err != nil {
		return fmt.Errorf("write payload artifact: %w", err)
	}
	return nil
}

func (r *Recorder) ErrorPath() string {
	return filepath.Join(r.dir, errorFileName)
}

func (r *Recorder) PayloadPath() string {
	return filepath.Join(r.dir, payloadFileName)
}

// Package receipt writes JSON records of terminal deployment results.
package receipt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avense/inkdeploy/deploy"
)

// Receipt is the on-disk record of one deployment attempt.
type Receipt struct {
	AttemptID   string    `json:"attempt_id"`
	Contract    string    `json:"contract"`
	Constructor string    `json:"constructor"`
	CodeHash    string    `json:"code_hash"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	Success   bool   `json:"success"`
	Address   string `json:"address,omitempty"`
	BlockHash string `json:"block_hash,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Writer persists receipts into a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a receipt writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// FromResult assembles a Receipt from a terminal deployment result.
func FromResult(attemptID, contract, constructor, codeHash string, started, finished time.Time, res deploy.Result) Receipt {
	r := Receipt{
		AttemptID:   attemptID,
		Contract:    contract,
		Constructor: constructor,
		CodeHash:    codeHash,
		StartedAt:   started.UTC(),
		FinishedAt:  finished.UTC(),
		Success:     res.Successful(),
	}
	if res.Successful() {
		r.Address = res.Address.Hex()
		r.BlockHash = res.BlockHash.Hex()
	} else {
		r.ErrorKind = res.Kind.String()
		if res.Err != nil {
			r.Error = res.Err.Error()
		}
	}
	return r
}

// Write persists the receipt as receipt-<attempt id>.json under the
// writer's directory, creating it if needed.
func (w *Writer) Write(r Receipt) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal receipt: %w", err)
	}

	path := filepath.Join(w.dir, "receipt-"+r.AttemptID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}

	w.logger.Info("receipt written", slog.String("path", path))
	return path, nil
}

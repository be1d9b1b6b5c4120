package scancache

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
)

// Summary is the cross-machine status of the last conflict scan. The
// full findings list stays in the API response; the file holds just
// enough for another machine to see how fresh the last scan is.
type Summary struct {
	ScanID      string `json:"scan_id"`
	LastChecked string `json:"last_checked"`
	DateRange   string `json:"date_range"`
	Count       int    `json:"count"`
}

var (
	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewScanID returns a time-sortable id for one detector run
func NewScanID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Stamp formats timestamps the way the cache file records them
func Stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// Write persists the summary under an exclusive file lock, through a
// temp file and rename so a reader never sees a partial file. The
// server and the CLI may both scan; last writer wins, neither corrupts.
func Write(path string, s Summary) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking scan cache: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing scan cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing scan cache: %w", err)
	}
	return nil
}

// Read returns the last recorded summary, or the zero value when no
// scan has run yet
func Read(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("reading scan cache: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("parsing scan cache: %w", err)
	}
	return s, nil
}

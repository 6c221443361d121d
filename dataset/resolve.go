// ABOUTME: Snapshot file resolution for the lead dataset
// ABOUTME: Picks the newest FinalDataForDashboard CSV by embedded timestamp, then mtime
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// ErrSourceNotFound means no usable snapshot file matched the expected
// naming pattern. Fatal to a load; callers must not default silently.
var ErrSourceNotFound = errors.New("no usable snapshot file found")

var snapshotNameRe = regexp.MustCompile(`^FinalDataForDashboard_(\d{8})_(\d{6})\.csv$`)

// embeddedTimestamp extracts the YYYYMMDDHHMMSS value from a snapshot
// filename, or 0 when the name carries no timestamp.
func embeddedTimestamp(path string) int64 {
	m := snapshotNameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	ts, err := strconv.ParseInt(m[1]+m[2], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// Resolve returns the snapshot file to load. A path that is an existing file
// is used verbatim. A directory is scanned for FinalDataForDashboard CSVs;
// the greatest (embedded timestamp, mtime) tuple wins, so a stale file
// touched recently cannot shadow a newer snapshot.
func Resolve(pathOrDir string) (string, error) {
	if pathOrDir != "" {
		if info, err := os.Stat(pathOrDir); err == nil && !info.IsDir() {
			return pathOrDir, nil
		}
	}

	dir := pathOrDir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = "data"
	}

	matches, err := filepath.Glob(filepath.Join(dir, "FinalDataForDashboard*.csv"))
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	best := ""
	var bestTS int64
	var bestMtime int64
	for _, p := range matches {
		// Drop broken symlinks or files moved since the glob
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		ts := embeddedTimestamp(p)
		mtime := info.ModTime().Unix()
		if best == "" || ts > bestTS || (ts == bestTS && mtime > bestMtime) {
			best, bestTS, bestMtime = p, ts, mtime
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w in %s", ErrSourceNotFound, dir)
	}
	return best, nil
}

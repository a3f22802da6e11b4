package duckdb

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. Path is made
// absolute so a cache keyed by role still tells two source files apart.
func StatFile(path string) (FileFingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (f FileFingerprint) metaLines() []string {
	return []string{
		"path=" + f.Path,
		"size=" + strconv.FormatInt(f.Size, 10),
		"modtime=" + f.ModTime.UTC().Format(time.RFC3339Nano),
	}
}

// matches reports whether a meta file written for f still describes it.
func (f FileFingerprint) matches(meta map[string]string) bool {
	for _, line := range f.metaLines() {
		k, v, _ := strings.Cut(line, "=")
		if meta[k] != v {
			return false
		}
	}
	return true
}

func writeMeta(path string, f FileFingerprint) error {
	lines := append(f.metaLines(), "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func readMeta(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}

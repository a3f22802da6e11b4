package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// TranscriptomeCache manages gob-serialized transcriptomes on disk, one
// pair of files per named annotation:
//
//	{dir}/{name}.gob       (verified transcripts)
//	{dir}/{name}.gob.meta  (source GTF fingerprint)
type TranscriptomeCache struct {
	dir string
}

// NewTranscriptomeCache creates a transcriptome cache in the given directory.
func NewTranscriptomeCache(dir string) *TranscriptomeCache {
	return &TranscriptomeCache{dir: dir}
}

func (tc *TranscriptomeCache) gobPath(name string) string {
	return filepath.Join(tc.dir, name+".gob")
}

func (tc *TranscriptomeCache) metaPath(name string) string {
	return filepath.Join(tc.dir, name+".gob.meta")
}

// Valid checks whether the cached transcriptome still matches its source GTF.
func (tc *TranscriptomeCache) Valid(name string, gtf FileFingerprint) bool {
	meta, err := readMeta(tc.metaPath(name))
	if err != nil {
		return false
	}
	if !gtf.matches(meta) {
		return false
	}

	if _, err := os.Stat(tc.gobPath(name)); err != nil {
		return false
	}
	return true
}

// Load reads a serialized transcriptome from disk.
func (tc *TranscriptomeCache) Load(name string) (*transcriptome.Transcriptome, error) {
	f, err := os.Open(tc.gobPath(name))
	if err != nil {
		return nil, fmt.Errorf("open transcriptome cache: %w", err)
	}
	defer f.Close()

	var data map[string]*transcriptome.Transcript
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode transcriptome cache: %w", err)
	}

	tr := transcriptome.New()
	for _, t := range data {
		// gob drops empty maps
		if t.Exons == nil {
			t.Exons = make(map[transcriptome.ExonID]*transcriptome.Exon)
		}
		if t.Codons == nil {
			t.Codons = make(map[transcriptome.CodonKey]*transcriptome.Codon)
		}
		tr.Add(t)
	}
	return tr, nil
}

// Write serializes a transcriptome to disk together with the fingerprint
// of the GTF it was parsed from.
func (tc *TranscriptomeCache) Write(name string, tr *transcriptome.Transcriptome, gtf FileFingerprint) error {
	if err := os.MkdirAll(tc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.Create(tc.gobPath(name))
	if err != nil {
		return fmt.Errorf("create transcriptome cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(tr.Transcripts); err != nil {
		f.Close()
		os.Remove(tc.gobPath(name))
		return fmt.Errorf("encode transcriptome cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transcriptome cache: %w", err)
	}

	return writeMeta(tc.metaPath(name), gtf)
}

// Clear removes the cached files for a name.
func (tc *TranscriptomeCache) Clear(name string) {
	os.Remove(tc.gobPath(name))
	os.Remove(tc.metaPath(name))
}

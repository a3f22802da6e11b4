// Package output provides writers for inferred transcripts.
package output

import (
	"errors"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// Record is an inferred transcript with its translated protein.
type Record struct {
	Transcript *transcriptome.Transcript
	Protein    string
}

// TranscriptWriter defines the interface for writing inferred transcripts.
type TranscriptWriter interface {
	WriteHeader() error
	Write(r *Record) error
	Flush() error
}

// MultiWriter writes every record to each of its writers in turn.
type MultiWriter []TranscriptWriter

func (m MultiWriter) WriteHeader() error {
	for _, w := range m {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiWriter) Write(r *Record) error {
	for _, w := range m {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer and returns the joined errors.
func (m MultiWriter) Flush() error {
	var errs []error
	for _, w := range m {
		errs = append(errs, w.Flush())
	}
	return errors.Join(errs...)
}

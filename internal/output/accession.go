package output

import (
	"bufio"
	"fmt"
	"io"
)

// AccessionWriter writes one "<id> <id> <id>" line per transcript.
type AccessionWriter struct {
	w *bufio.Writer
}

// NewAccessionWriter creates a new accession list writer.
func NewAccessionWriter(w io.Writer) *AccessionWriter {
	return &AccessionWriter{w: bufio.NewWriter(w)}
}

// WriteHeader is a no-op; the accession list has no header.
func (aw *AccessionWriter) WriteHeader() error {
	return nil
}

// Write writes a single accession line.
func (aw *AccessionWriter) Write(r *Record) error {
	id := r.Transcript.ID
	_, err := fmt.Fprintf(aw.w, "%s %s %s\n", id, id, id)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (aw *AccessionWriter) Flush() error {
	return aw.w.Flush()
}

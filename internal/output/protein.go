package output

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"
)

// FASTALineLength is the number of residues per protein FASTA line.
const FASTALineLength = 60

// ProteinWriter writes translated transcripts as protein FASTA.
type ProteinWriter struct {
	w        *bufio.Writer
	database string
	logger   *zap.Logger
}

// NewProteinWriter creates a protein FASTA writer. Headers take the form
// >gn1|<database>|<transcript id>.
func NewProteinWriter(w io.Writer, database string) *ProteinWriter {
	return &ProteinWriter{
		w:        bufio.NewWriter(w),
		database: database,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for proteins missing a leading M or trailing stop.
func (pw *ProteinWriter) SetLogger(logger *zap.Logger) {
	pw.logger = logger
}

// WriteHeader is a no-op; FASTA has no file header.
func (pw *ProteinWriter) WriteHeader() error {
	return nil
}

// Write writes a single protein record.
func (pw *ProteinWriter) Write(r *Record) error {
	id := r.Transcript.ID

	if !strings.HasPrefix(r.Protein, "M") {
		pw.logger.Warn("amino acid sequence does not start with M", zap.String("transcript", id))
	}
	if !strings.HasSuffix(r.Protein, "*") {
		pw.logger.Warn("amino acid sequence does not end with *", zap.String("transcript", id))
	}

	var b strings.Builder
	b.WriteString(">gn1|")
	b.WriteString(pw.database)
	b.WriteString("|")
	b.WriteString(id)
	b.WriteString("\n")

	for i := 0; i < len(r.Protein); i += FASTALineLength {
		end := min(i+FASTALineLength, len(r.Protein))
		b.WriteString(r.Protein[i:end])
		b.WriteString("\n")
	}

	_, err := pw.w.WriteString(b.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (pw *ProteinWriter) Flush() error {
	return pw.w.Flush()
}

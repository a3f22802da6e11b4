package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/aidantay/TranscriptCoder/internal/output"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// Result is one row of the inferred_transcripts table.
type Result struct {
	TranscriptID    string
	Database        string
	Chrom           string
	Start           int64
	Stop            int64
	Strand          string
	ExonCount       int64
	Exons           string
	StartCodonStart int64
	StartCodonStop  int64
	StopCodonStart  int64
	StopCodonStop   int64
	Protein         string
}

// NewResult flattens an inferred transcript record into a table row.
// Exons are rendered as "id:start-stop" in transcript order, comma separated.
func NewResult(database string, r *output.Record) Result {
	t := r.Transcript
	exons := t.OrderedExons()

	parts := make([]string, len(exons))
	for i, e := range exons {
		parts[i] = fmt.Sprintf("%s:%d-%d", e.ID, e.Start, e.Stop)
	}

	res := Result{
		TranscriptID: t.ID,
		Database:     database,
		Chrom:        t.Chrom,
		Start:        t.Start,
		Stop:         t.Stop,
		Strand:       transcriptome.StrandString(t.Strand),
		ExonCount:    int64(len(exons)),
		Exons:        strings.Join(parts, ","),
		Protein:      r.Protein,
	}
	if c := t.StartCodon(); c != nil {
		res.StartCodonStart, res.StartCodonStop = c.Start, c.Stop
	}
	if c := t.StopCodon(); c != nil {
		res.StopCodonStart, res.StopCodonStop = c.Start, c.Stop
	}
	return res
}

// WriteResults batch-inserts results using the Appender API.
// Duplicate (database, transcript id) entries are deduplicated before writing.
func (s *Store) WriteResults(results []Result) error {
	if len(results) == 0 {
		return nil
	}

	type key struct{ database, id string }
	seen := make(map[key]bool, len(results))
	deduped := make([]Result, 0, len(results))
	for _, r := range results {
		k := key{r.Database, r.TranscriptID}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "inferred_transcripts")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			r.TranscriptID, r.Database, r.Chrom, r.Start, r.Stop, r.Strand,
			r.ExonCount, r.Exons,
			r.StartCodonStart, r.StartCodonStop, r.StopCodonStart, r.StopCodonStop,
			r.Protein,
		); err != nil {
			return fmt.Errorf("append result %s: %w", r.TranscriptID, err)
		}
	}

	return appender.Flush()
}

// ClearResults removes all stored results.
func (s *Store) ClearResults() error {
	_, err := s.db.Exec("DELETE FROM inferred_transcripts")
	return err
}

// ClearDatabase removes the stored results of one database label.
func (s *Store) ClearDatabase(database string) error {
	_, err := s.db.Exec("DELETE FROM inferred_transcripts WHERE database_name=?", database)
	return err
}

// LookupTranscript returns every stored result for a transcript id across databases.
func (s *Store) LookupTranscript(id string) ([]Result, error) {
	rows, err := s.db.Query(selectResults+` WHERE transcript_id=? ORDER BY database_name`, id)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// SearchByChromosome returns the stored results on a chromosome in genomic order.
func (s *Store) SearchByChromosome(chrom string) ([]Result, error) {
	rows, err := s.db.Query(selectResults+` WHERE chrom=? ORDER BY tx_start, transcript_id`, chrom)
	if err != nil {
		return nil, fmt.Errorf("query by chromosome: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

const selectResults = `SELECT
	transcript_id, database_name, chrom, tx_start, tx_stop, strand,
	exon_count, exons,
	start_codon_start, start_codon_stop, stop_codon_start, stop_codon_stop,
	protein
	FROM inferred_transcripts`

func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.TranscriptID, &r.Database, &r.Chrom, &r.Start, &r.Stop, &r.Strand,
			&r.ExonCount, &r.Exons,
			&r.StartCodonStart, &r.StartCodonStop, &r.StopCodonStart, &r.StopCodonStop,
			&r.Protein,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// ResultWriter adapts a Store to output.TranscriptWriter. Records are
// buffered and appended in one batch on Flush.
type ResultWriter struct {
	store    *Store
	database string
	pending  []Result
}

// NewResultWriter creates a writer that stores records under the database label.
func NewResultWriter(store *Store, database string) *ResultWriter {
	return &ResultWriter{store: store, database: database}
}

// WriteHeader drops earlier results stored under the same database label,
// so a rerun replaces them.
func (rw *ResultWriter) WriteHeader() error {
	return rw.store.ClearDatabase(rw.database)
}

// Write buffers a record.
func (rw *ResultWriter) Write(r *output.Record) error {
	rw.pending = append(rw.pending, NewResult(rw.database, r))
	return nil
}

// Flush appends the buffered records.
func (rw *ResultWriter) Flush() error {
	err := rw.store.WriteResults(rw.pending)
	rw.pending = rw.pending[:0]
	return err
}

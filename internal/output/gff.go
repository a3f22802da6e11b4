package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// GFFSource is written in the source column of every GFF line.
const GFFSource = "TranscriptCoder"

// GFF feature types.
const (
	featureGene       = "gene"
	featureIntron     = "intron"
	featureCDS        = "CDS"
	featureFivePrime  = "five_prime_UTR_intron"
	featureThreePrime = "three_prime_UTR_intron"
)

// GFFWriter writes inferred transcript structures in GFF3 format.
type GFFWriter struct {
	w *bufio.Writer
}

// NewGFFWriter creates a new GFF3 writer.
func NewGFFWriter(w io.Writer) *GFFWriter {
	return &GFFWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the GFF version line.
func (gw *GFFWriter) WriteHeader() error {
	_, err := gw.w.WriteString("##gff-version 3\n")
	return err
}

// Write writes the gene line of a transcript followed by one line per
// exon and per intron between consecutive exons.
func (gw *GFFWriter) Write(r *Record) error {
	t := r.Transcript

	if err := gw.line(t.Chrom, featureGene, t.Start, t.Stop, t.Strand, fmt.Sprintf("Name=%s;ID=%s;", t.ID, t.ID)); err != nil {
		return err
	}

	startCodon, stopCodon := t.StartCodon(), t.StopCodon()
	if startCodon == nil || stopCodon == nil {
		return nil
	}

	attrs := fmt.Sprintf("Name=%s;Parent=%s;", t.ID, t.ID)

	var prev *transcriptome.Exon
	for _, e := range t.OrderedExons() {
		if prev != nil {
			start, stop := prev.Stop+1, e.Start-1
			if !e.IsForward() {
				start, stop = e.Stop+1, prev.Start-1
			}
			if err := gw.line(t.Chrom, featureIntron, start, stop, e.Strand, attrs); err != nil {
				return err
			}
		}

		feature := featureCDS
		switch {
		case e.ID < startCodon.ExonID:
			feature = featureFivePrime
		case e.ID > stopCodon.ExonID:
			feature = featureThreePrime
		}
		if err := gw.line(t.Chrom, feature, e.Start, e.Stop, e.Strand, attrs); err != nil {
			return err
		}
		prev = e
	}
	return nil
}

func (gw *GFFWriter) line(chrom, feature string, start, stop int64, strand int8, attrs string) error {
	_, err := fmt.Fprintf(gw.w, "%s\t%s\t%s\t%d\t%d\t0\t%s\t0\t%s\n",
		chrom, GFFSource, feature, start, stop, transcriptome.StrandString(strand), attrs)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GFFWriter) Flush() error {
	return gw.w.Flush()
}

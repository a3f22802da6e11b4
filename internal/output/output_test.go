package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// inferredRecord is a forward transcript split into a 5' UTR exon (0.1),
// two coding exons and a 3' UTR exon (2.1).
func inferredRecord() *Record {
	t := transcriptome.NewTranscript("TX_1", "chr1", "HAVANA", 1, 70, transcriptome.Forward)
	t.AddExon(transcriptome.NewExon("TX_1", 0.1, "chr1", 1, 9, transcriptome.Forward))
	t.AddExon(transcriptome.NewExon("TX_1", 1, "chr1", 10, 30, transcriptome.Forward))
	t.AddExon(transcriptome.NewExon("TX_1", 2, "chr1", 41, 52, transcriptome.Forward))
	t.AddExon(transcriptome.NewExon("TX_1", 2.1, "chr1", 53, 70, transcriptome.Forward))
	t.AddCodon(&transcriptome.Codon{TranscriptID: "TX_1", ExonID: 1, Kind: transcriptome.StartCodon, Chrom: "chr1", Start: 10, Stop: 12, Strand: transcriptome.Forward})
	t.AddCodon(&transcriptome.Codon{TranscriptID: "TX_1", ExonID: 2, Kind: transcriptome.StopCodon, Chrom: "chr1", Start: 50, Stop: 52, Strand: transcriptome.Forward})
	return &Record{Transcript: t, Protein: "MPPPPPPPPP*"}
}

func TestProteinWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewProteinWriter(&buf, "ensembl")

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(inferredRecord()))
	require.NoError(t, w.Flush())

	assert.Equal(t, ">gn1|ensembl|TX_1\nMPPPPPPPPP*\n", buf.String())
}

func TestProteinWriter_WrapsLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewProteinWriter(&buf, "db")

	r := inferredRecord()
	r.Protein = "M" + strings.Repeat("A", 118) + "*"
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ">gn1|db|TX_1", lines[0])
	assert.Len(t, lines[1], FASTALineLength)
	assert.Len(t, lines[2], FASTALineLength)
}

func TestProteinWriter_WarnsOnIncompleteProtein(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	var buf bytes.Buffer
	w := NewProteinWriter(&buf, "db")
	w.SetLogger(zap.New(core))

	r := inferredRecord()
	r.Protein = "PPPP"
	require.NoError(t, w.Write(r))
	assert.Equal(t, 2, logs.Len())

	r.Protein = "MPPP*"
	require.NoError(t, w.Write(r))
	assert.Equal(t, 2, logs.Len())
}

func TestGFFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewGFFWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(inferredRecord()))
	require.NoError(t, w.Flush())

	attrs := "Name=TX_1;Parent=TX_1;"
	expected := []string{
		"##gff-version 3",
		"chr1\tTranscriptCoder\tgene\t1\t70\t0\t+\t0\tName=TX_1;ID=TX_1;",
		"chr1\tTranscriptCoder\tfive_prime_UTR_intron\t1\t9\t0\t+\t0\t" + attrs,
		"chr1\tTranscriptCoder\tintron\t10\t9\t0\t+\t0\t" + attrs,
		"chr1\tTranscriptCoder\tCDS\t10\t30\t0\t+\t0\t" + attrs,
		"chr1\tTranscriptCoder\tintron\t31\t40\t0\t+\t0\t" + attrs,
		"chr1\tTranscriptCoder\tCDS\t41\t52\t0\t+\t0\t" + attrs,
		"chr1\tTranscriptCoder\tintron\t53\t52\t0\t+\t0\t" + attrs,
		"chr1\tTranscriptCoder\tthree_prime_UTR_intron\t53\t70\t0\t+\t0\t" + attrs,
	}
	assert.Equal(t, strings.Join(expected, "\n")+"\n", buf.String())
}

func TestGFFWriter_ReverseIntron(t *testing.T) {
	tx := transcriptome.NewTranscript("TX_1", "chr2", "", 1, 50, transcriptome.Reverse)
	tx.AddExon(transcriptome.NewExon("TX_1", 1, "chr2", 41, 50, transcriptome.Reverse))
	tx.AddExon(transcriptome.NewExon("TX_1", 2, "chr2", 1, 20, transcriptome.Reverse))
	tx.AddCodon(&transcriptome.Codon{ExonID: 1, Kind: transcriptome.StartCodon, Start: 48, Stop: 50})
	tx.AddCodon(&transcriptome.Codon{ExonID: 2, Kind: transcriptome.StopCodon, Start: 1, Stop: 3})

	var buf bytes.Buffer
	w := NewGFFWriter(&buf)
	require.NoError(t, w.Write(&Record{Transcript: tx}))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "chr2\tTranscriptCoder\tintron\t21\t40\t0\t-\t0\t")
}

func TestGFFWriter_NonCodingWritesGeneOnly(t *testing.T) {
	tx := transcriptome.NewTranscript("TX", "chr1", "", 1, 50, transcriptome.Forward)
	tx.AddExon(transcriptome.NewExon("TX", 1, "chr1", 1, 50, transcriptome.Forward))

	var buf bytes.Buffer
	w := NewGFFWriter(&buf)
	require.NoError(t, w.Write(&Record{Transcript: tx}))
	require.NoError(t, w.Flush())

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestAccessionWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewAccessionWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(inferredRecord()))
	require.NoError(t, w.Flush())

	assert.Equal(t, "TX_1 TX_1 TX_1\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriter(t *testing.T) {
	var protein, accession bytes.Buffer
	m := MultiWriter{NewProteinWriter(&protein, "db"), NewAccessionWriter(&accession)}

	require.NoError(t, m.WriteHeader())
	require.NoError(t, m.Write(inferredRecord()))
	require.NoError(t, m.Flush())

	assert.Contains(t, protein.String(), ">gn1|db|TX_1")
	assert.Equal(t, "TX_1 TX_1 TX_1\n", accession.String())

	broken := MultiWriter{NewAccessionWriter(failingWriter{}), NewAccessionWriter(&accession)}
	require.NoError(t, broken.Write(inferredRecord()))
	assert.Error(t, broken.Flush())
}

package transcriptome

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func gtfLine(chrom, feature string, start, end int, strand, attrs string) string {
	return strings.Join([]string{
		chrom, "HAVANA", feature, fmt.Sprint(start), fmt.Sprint(end), ".", strand, ".", attrs,
	}, "\t")
}

func sampleGTF() string {
	lines := []string{
		"##description: test annotation",
		gtfLine("10", "gene", 1, 70, "+", `gene_id "G1";`),
		gtfLine("10", "transcript", 1, 70, "+", `gene_id "G1"; transcript_id "TX1.2";`),
		gtfLine("10", "exon", 1, 10, "+", `gene_id "G1"; transcript_id "TX1.2"; exon_number "1";`),
		gtfLine("10", "exon", 21, 30, "+", `gene_id "G1"; transcript_id "TX1.2"; exon_number "2";`),
		gtfLine("10", "exon", 41, 50, "+", `gene_id "G1"; transcript_id "TX1.2"; exon_number "3";`),
		gtfLine("10", "CDS", 5, 10, "+", `gene_id "G1"; transcript_id "TX1.2"; exon_number "1";`),
		gtfLine("10", "start_codon", 5, 7, "+", `gene_id "G1"; transcript_id "TX1.2"; exon_number "1";`),
		gtfLine("10", "stop_codon", 44, 46, "+", `gene_id "G1"; transcript_id "TX1.2"; exon_number "3";`),
		"",
		gtfLine("chr10", "transcript", 100, 200, "-", `transcript_id "TX2";`),
		gtfLine("chr10", "exon", 100, 200, "-", `transcript_id "TX2"; exon_number "1";`),
		gtfLine("chr10", "start_codon", 198, 200, "-", `transcript_id "TX2"; exon_number "1";`),
		gtfLine("chr11", "transcript", 1, 30, "+", `transcript_id "TX3";`),
		gtfLine("chr11", "exon", 1, 30, "+", `transcript_id "TX3"; exon_number "1";`),
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestParseGTF(t *testing.T) {
	l := NewGTFLoader("")
	tr, err := l.parseGTF(strings.NewReader(sampleGTF()), "")
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())

	tx := tr.Get("TX1.2")
	require.NotNil(t, tx, "version suffix is kept")
	assert.Equal(t, "chr10", tx.Chrom)
	assert.Equal(t, "HAVANA", tx.Origin)
	assert.Equal(t, Forward, tx.Strand)
	assert.Len(t, tx.Exons, 3)
	assert.Len(t, tx.Codons, 2)
	assert.Equal(t, "TX1.2", tx.Exon(2).TranscriptID)

	assert.Equal(t, Reverse, tr.Get("TX2").Strand)
	assert.Equal(t, []string{"chr10", "chr11"}, tr.Chromosomes())
}

func TestParseGTF_FilterChromosome(t *testing.T) {
	l := NewGTFLoader("")
	tr, err := l.parseGTF(strings.NewReader(sampleGTF()), "11")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len())
	assert.NotNil(t, tr.Get("TX3"))
}

func TestParseGTF_Malformed(t *testing.T) {
	header := gtfLine("1", "transcript", 1, 30, "+", `transcript_id "TX1";`)
	exon := gtfLine("1", "exon", 1, 30, "+", `transcript_id "TX1"; exon_number "1";`)

	tests := []struct {
		name  string
		lines []string
		line  int
	}{
		{"too few columns", []string{"chr1\tHAVANA\texon\t1\t30"}, 1},
		{"bad start", []string{strings.Replace(header, "\t1\t", "\tx\t", 1)}, 1},
		{"missing strand", []string{gtfLine("1", "transcript", 1, 30, ".", `transcript_id "TX1";`)}, 1},
		{"missing transcript id", []string{gtfLine("1", "transcript", 1, 30, "+", `gene_id "G1";`)}, 1},
		{"missing exon number", []string{header, gtfLine("1", "exon", 1, 30, "+", `transcript_id "TX1";`)}, 2},
		{"unknown transcript", []string{gtfLine("1", "exon", 1, 30, "+", `transcript_id "TX9"; exon_number "1";`)}, 1},
		{"duplicate exon", []string{header, exon, exon}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewGTFLoader("")
			_, err := l.parseGTF(strings.NewReader(strings.Join(tt.lines, "\n")), "")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedGTF)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestGTFLoader_LoadVerifies(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	path := filepath.Join(t.TempDir(), "annotation.gtf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleGTF()))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	l := NewGTFLoader(path)
	l.SetLogger(zap.New(core))

	tr, err := l.Load()
	require.NoError(t, err)

	// TX2 has a start codon but no stop codon
	assert.Nil(t, tr.Get("TX2"))
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 1, logs.FilterField(zap.String("transcript", "TX2")).Len())

	// Coding transcripts are updated, non-coding ones are not
	assert.Equal(t, int64(5), tr.Get("TX1.2").Exon(1).StartAnchor)
	assert.False(t, tr.Get("TX3").Exon(1).HasScore())

	byChrom := tr.ByChromosome()
	assert.Len(t, byChrom["chr10"], 1)
	assert.Len(t, byChrom["chr11"], 1)
}

func TestGTFLoader_ParseErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gtf")
	require.NoError(t, os.WriteFile(path, []byte("chr1\tx\n"), 0o644))

	_, err := NewGTFLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), path+":1:")

	_, err = NewGTFLoader(filepath.Join(t.TempDir(), "missing.gtf")).Load()
	assert.Error(t, err)
}

package geneticcode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ncbiStandard = `  AAs  = FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG
Starts = ---M------**--*----M---------------M----------------------------
Base1  = TTTTTTTTTTTTTTTTCCCCCCCCCCCCCCCCAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGG
Base2  = TTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGG
Base3  = TCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAG
`

func TestTranslate(t *testing.T) {
	table := Standard()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"start and stop", "ATGTAA", "M*"},
		{"KRAS start", "ATGACTGAATATAAACTTGTG", "MTEYKLV"},
		{"trailing partial codon ignored", "ATGGC", "M"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Translate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	table := Standard()
	seq := "ATGGCCAAATTTGGGCCCTAG"

	first, err := table.Translate(seq)
	require.NoError(t, err)
	second, err := table.Translate(seq)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTranslate_UnknownCodon(t *testing.T) {
	table := Standard()

	_, err := table.Translate("ATGNNNTAA")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCodon)

	var codonErr *UnknownCodonError
	require.ErrorAs(t, err, &codonErr)
	assert.Equal(t, "NNN", codonErr.Codon)
	assert.Equal(t, 3, codonErr.Offset)

	// Lookups are case-sensitive
	_, err = table.Translate("atg")
	assert.ErrorIs(t, err, ErrUnknownCodon)
}

func TestParse_NCBI(t *testing.T) {
	table, err := Parse(strings.NewReader(ncbiStandard))
	require.NoError(t, err)
	assert.Equal(t, 64, table.Len())

	for codon, want := range standardCode {
		got, ok := table.Lookup(codon)
		require.True(t, ok, "missing codon %s", codon)
		assert.Equal(t, string(want), string(got), "codon %s", codon)
	}
}

func TestParse_Pairs(t *testing.T) {
	content := `# minimal table
ATG M
TAA *
GCC A
`
	table, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	got, err := table.Translate("ATGGCCTAA")
	require.NoError(t, err)
	assert.Equal(t, "MA*", got)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad pair", "ATGG M\n"},
		{"missing base row", "AAs = FF\nBase1 = TT\nBase2 = TT\n"},
		{"row length mismatch", "AAs = FF\nBase1 = T\nBase2 = TT\nBase3 = TC\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standard_code_translation_table.txt")
	require.NoError(t, os.WriteFile(path, []byte(ncbiStandard), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, table.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

package geneticcode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a translation table file.
//
// Two layouts are accepted. The NCBI layout lists the amino acids and the
// three codon positions as rows:
//
//	  AAs  = FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG
//	Starts = ---M------**--*----M---------------M----------------------------
//	Base1  = TTTTTTTTTTTTTTTTCCCCCCCCCCCCCCCCAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGG
//	Base2  = TTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGG
//	Base3  = TCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAG
//
// The pair layout has one "CODON AA" entry per line.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open translation table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse translation table %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a translation table in either supported layout.
func Parse(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)

	rows := make(map[string]string)
	codons := make(map[string]byte)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if key, value, ok := strings.Cut(line, "="); ok {
			rows[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) != BasesPerCodon || len(fields[1]) != 1 {
			return nil, fmt.Errorf("line %d: expected \"CODON AA\", got %q", lineNum, line)
		}
		codons[fields[0]] = fields[1][0]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan translation table: %w", err)
	}

	if len(rows) > 0 {
		if err := addNCBIRows(codons, rows); err != nil {
			return nil, err
		}
	}

	if len(codons) == 0 {
		return nil, fmt.Errorf("translation table has no codons")
	}

	return New(codons), nil
}

// addNCBIRows expands the AAs/Base1/Base2/Base3 rows into codon entries.
func addNCBIRows(codons map[string]byte, rows map[string]string) error {
	aas := rows["AAs"]
	bases := [BasesPerCodon]string{rows["Base1"], rows["Base2"], rows["Base3"]}

	for i, b := range bases {
		if b == "" {
			return fmt.Errorf("NCBI table missing Base%d row", i+1)
		}
		if len(b) != len(aas) {
			return fmt.Errorf("NCBI table Base%d row has %d entries, AAs row has %d", i+1, len(b), len(aas))
		}
	}
	if aas == "" {
		return fmt.Errorf("NCBI table missing AAs row")
	}

	for i := 0; i < len(aas); i++ {
		codon := string([]byte{bases[0][i], bases[1][i], bases[2][i]})
		codons[codon] = aas[i]
	}
	return nil
}

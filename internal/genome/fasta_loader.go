package genome

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrChromosomeNotFound is returned when no sequence exists for a chromosome.
var ErrChromosomeNotFound = errors.New("chromosome sequence not found")

// Source provides the sequence of a chromosome by name.
type Source interface {
	Load(chrom string) (*Sequence, error)
}

// fastaExtensions are tried, in order, when resolving a chromosome file in a directory.
var fastaExtensions = []string{".fa", ".fasta", ".fna", ".fa.gz", ".fasta.gz", ".fna.gz"}

// FASTALoader loads chromosome sequences from FASTA files.
// The path is either a directory holding one file per chromosome
// (e.g. chr10.fa) or a single multi-record FASTA file.
type FASTALoader struct {
	path string
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{path: path}
}

// Load reads the sequence of the given chromosome.
func (l *FASTALoader) Load(chrom string) (*Sequence, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("stat genome path: %w", err)
	}

	path := l.path
	if info.IsDir() {
		path, err = l.chromPath(chrom)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	// A per-chromosome file holds exactly the requested record.
	filter := chrom
	if info.IsDir() {
		filter = ""
	}

	bases, found, err := parseFASTA(reader, filter)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !found {
		return nil, fmt.Errorf("%s in %s: %w", chrom, path, ErrChromosomeNotFound)
	}
	return NewSequence(chrom, bases), nil
}

// chromPath resolves the per-chromosome file inside the genome directory.
func (l *FASTALoader) chromPath(chrom string) (string, error) {
	names := []string{chrom}
	if alt := toggleChromPrefix(chrom); alt != chrom {
		names = append(names, alt)
	}
	for _, name := range names {
		for _, ext := range fastaExtensions {
			candidate := filepath.Join(l.path, name+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%s in %s: %w", chrom, l.path, ErrChromosomeNotFound)
}

// parseFASTA concatenates the sequence lines of the record named chrom.
// An empty chrom selects the first record.
func parseFASTA(reader io.Reader, chrom string) (string, bool, error) {
	scanner := bufio.NewScanner(reader)
	// Whole chromosomes may be stored on a single line
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 512*1024*1024)

	var (
		seq       strings.Builder
		inRecord  bool
		found     bool
		seenFirst bool
	)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, ">") {
			if found {
				// Requested record is complete
				break
			}
			id := parseHeader(line)
			if chrom == "" {
				inRecord = !seenFirst
			} else {
				inRecord = sameChrom(id, chrom)
			}
			seenFirst = true
			found = inRecord
			continue
		}

		if inRecord {
			seq.WriteString(strings.ToUpper(strings.TrimSpace(line)))
		}
	}

	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("scan FASTA: %w", err)
	}

	return seq.String(), found, nil
}

// parseHeader extracts the record name from a FASTA header line.
// e.g. ">chr10 AC:CM000672.2 gi:568336014" -> "chr10"
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// sameChrom compares chromosome names ignoring a "chr" prefix.
func sameChrom(a, b string) bool {
	return strings.TrimPrefix(a, "chr") == strings.TrimPrefix(b, "chr")
}

func toggleChromPrefix(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom[3:]
	}
	return "chr" + chrom
}

package transcriptome

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrMalformedGTF is wrapped by every ParseError.
var ErrMalformedGTF = errors.New("malformed GTF")

// ParseError reports a malformed line in an annotation file.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedGTF
}

// GTF feature types used to build transcripts.
const (
	featureTranscript = "transcript"
	featureExon       = "exon"
	featureStartCodon = "start_codon"
	featureStopCodon  = "stop_codon"
)

// GTFLoader loads a transcriptome from a GTF file.
type GTFLoader struct {
	path   string
	logger *zap.Logger
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for warnings about skipped lines and removed transcripts.
func (l *GTFLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load parses every transcript in the file and verifies the result.
func (l *GTFLoader) Load() (*Transcriptome, error) {
	return l.loadGTF("")
}

// LoadChromosome parses the transcripts of a single chromosome.
func (l *GTFLoader) LoadChromosome(chrom string) (*Transcriptome, error) {
	return l.loadGTF(chrom)
}

func (l *GTFLoader) loadGTF(filterChrom string) (*Transcriptome, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	tr, err := l.parseGTF(reader, filterChrom)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.File = l.path
		}
		return nil, err
	}

	tr.Verify(l.logger)
	return tr, nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	source      string
	featureType string
	start       int64
	end         int64
	strand      int8
	attributes  map[string]string
}

// parseGTF parses GTF content into an unverified transcriptome.
// If filterChrom is non-empty, only that chromosome is kept.
func (l *GTFLoader) parseGTF(reader io.Reader, filterChrom string) (*Transcriptome, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	if filterChrom != "" {
		filterChrom = normalizeChrom(filterChrom)
	}

	tr := New()

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Msg: err.Error()}
		}

		if filterChrom != "" && feat.chrom != filterChrom {
			continue
		}

		switch feat.featureType {
		case featureTranscript, featureExon, featureStartCodon, featureStopCodon:
		default:
			l.logger.Debug("skipping unsupported feature type",
				zap.Int("line", lineNum),
				zap.String("type", feat.featureType))
			continue
		}

		transcriptID := feat.attributes["transcript_id"]
		if transcriptID == "" {
			return nil, &ParseError{Line: lineNum, Msg: "attribute transcript_id not found"}
		}

		if feat.featureType == featureTranscript {
			tr.Add(NewTranscript(transcriptID, feat.chrom, feat.source, feat.start, feat.end, feat.strand))
			continue
		}

		t := tr.Get(transcriptID)
		if t == nil {
			return nil, &ParseError{Line: lineNum, Msg: fmt.Sprintf("%s for unknown transcript %s", feat.featureType, transcriptID)}
		}

		exonNumber, ok := feat.attributes["exon_number"]
		if !ok {
			return nil, &ParseError{Line: lineNum, Msg: "attribute exon_number not found"}
		}
		exonID, err := ParseExonID(exonNumber)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Msg: err.Error()}
		}

		if feat.featureType == featureExon {
			if t.HasExon(exonID) {
				return nil, &ParseError{Line: lineNum, Msg: fmt.Sprintf("transcript %s already contains exon %s", transcriptID, exonID)}
			}
			t.AddExon(NewExon(transcriptID, exonID, feat.chrom, feat.start, feat.end, feat.strand))
			continue
		}

		kind := StartCodon
		if feat.featureType == featureStopCodon {
			kind = StopCodon
		}
		codon := &Codon{
			TranscriptID: transcriptID,
			ExonID:       exonID,
			Kind:         kind,
			Chrom:        feat.chrom,
			Start:        feat.start,
			Stop:         feat.end,
			Strand:       feat.strand,
		}
		if _, dup := t.Codons[codon.Key()]; dup {
			return nil, &ParseError{Line: lineNum, Msg: fmt.Sprintf("transcript %s already contains %s in exon %s", transcriptID, kind, exonID)}
		}
		t.AddCodon(codon)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	return tr, nil
}

// parseLine parses a single GTF line.
func parseLine(line string) (*gtfFeature, error) {
	fields := strings.SplitN(line, "\t", 9)
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	strand, err := parseStrand(fields[6])
	if err != nil {
		return nil, err
	}

	return &gtfFeature{
		chrom:       normalizeChrom(fields[0]),
		source:      fields[1],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      strand,
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}

		// First occurrence wins for repeated keys such as tag
		if _, seen := attrs[key]; seen {
			continue
		}
		attrs[key] = strings.Trim(strings.TrimSpace(value), "\"")
	}

	return attrs
}

// parseStrand converts the strand column to +1 or -1.
func parseStrand(s string) (int8, error) {
	switch s {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	default:
		return 0, fmt.Errorf("strand not specified: %q", s)
	}
}

// normalizeChrom adds the "chr" prefix used throughout the annotation.
// e.g. "10" -> "chr10"
func normalizeChrom(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom
	}
	return "chr" + chrom
}

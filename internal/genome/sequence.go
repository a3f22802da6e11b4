// Package genome provides read-only chromosome sequences and their loaders.
package genome

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a requested interval falls outside a sequence.
var ErrOutOfRange = errors.New("interval out of range")

// Sequence is the nucleotide sequence of a single chromosome.
// It is immutable once loaded and can be shared between goroutines.
type Sequence struct {
	Name  string
	bases string
}

// NewSequence wraps bases as the sequence of the named chromosome.
func NewSequence(name, bases string) *Sequence {
	return &Sequence{Name: name, bases: bases}
}

// Len returns the number of bases in the sequence.
func (s *Sequence) Len() int64 {
	return int64(len(s.bases))
}

// Slice returns the bases between start and stop (1-based, inclusive).
func (s *Sequence) Slice(start, stop int64) (string, error) {
	if start < 1 || stop < start-1 || stop > s.Len() {
		return "", fmt.Errorf("%s:%d-%d (length %d): %w", s.Name, start, stop, s.Len(), ErrOutOfRange)
	}
	return s.bases[start-1 : stop], nil
}

// Stranded returns the bases between start and stop as read on the given strand.
// Reverse-strand intervals are reverse complemented.
func (s *Sequence) Stranded(start, stop int64, strand int8) (string, error) {
	seq, err := s.Slice(start, stop)
	if err != nil {
		return "", err
	}
	if strand == -1 {
		return ReverseComplement(seq), nil
	}
	return seq, nil
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}

// Complement returns the complement of a single base.
// Bases other than A, C, G and T are returned unchanged.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	default:
		return base
	}
}

package qvalue

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	separator  = ":"
	nanLiteral = "nan"
	precision  = 16
)

var (
	ErrInvalidKey    = errors.New("state key cannot be persisted")
	ErrMalformedLine = errors.New("malformed q value line")
)

// Encode writes one "<key>:<v1>:...:<vN>:" line per state, in key order.
func Encode(w io.Writer, store *Store) error {
	bw := bufio.NewWriter(w)

	for _, key := range store.Keys() {
		if strings.ContainsAny(key, separator+"\r\n") || key == "" {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}

		values, _ := store.Get(key)
		if _, err := bw.WriteString(key + separator + EncodeValues(values) + "\n"); err != nil {
			return fmt.Errorf("failed to write q values: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush q values: %w", err)
	}

	return nil
}

// Decode reads lines written by Encode. Missing trailing values are left unset.
func Decode(r io.Reader, numActions int) (*Store, error) {
	store := NewStore(numActions)
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		key, rest, ok := strings.Cut(text, separator)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: line %d", ErrMalformedLine, line)
		}

		values, err := DecodeValues(rest, numActions)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		store.values[key] = values
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read q values: %w", err)
	}

	return store, nil
}

// EncodeValues renders a vector as "<v1>:...:<vN>:".
func EncodeValues(values []float64) string {
	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(formatValue(v))
		sb.WriteString(separator)
	}

	return sb.String()
}

// DecodeValues parses the output of EncodeValues into a vector of numActions entries.
func DecodeValues(s string, numActions int) ([]float64, error) {
	values := Unset(numActions)

	fields := strings.Split(s, separator)
	for i, field := range fields {
		if field == "" {
			continue
		}

		if i >= numActions {
			return nil, fmt.Errorf("%w: more than %d values", ErrMalformedLine, numActions)
		}

		v, err := parseValue(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		values[i] = v
	}

	return values, nil
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return nanLiteral
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

func parseValue(s string) (float64, error) {
	if s == nanLiteral {
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}

	return v, nil
}

func SaveFile(path string, store *Store) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create q values file: %w", err)
	}

	if err = Encode(file, store); err != nil {
		_ = file.Close()
		return err
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close q values file: %w", err)
	}

	return nil
}

func LoadFile(path string, numActions int) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open q values file: %w", err)
	}
	defer file.Close()

	return Decode(file, numActions)
}

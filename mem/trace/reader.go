// Package trace reads memory traces and reports what a paging simulation
// does with them.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/pagesim/mem/vm/paging"
)

// ErrMalformedLine is wrapped by every error about the content of a trace
// line.
var ErrMalformedLine = errors.New("malformed trace line")

// A Reader turns a text trace into accesses, one line at a time. Each line
// holds an access kind (R or W) and a hexadecimal address, in either order.
// Blank lines and lines starting with # are skipped.
type Reader struct {
	scanner     *bufio.Scanner
	offsetBits  uint
	addressBits uint
	line        int
}

// ReaderBuilder can build Readers.
type ReaderBuilder struct {
	offsetBits  uint
	addressBits uint
}

// MakeReaderBuilder returns a builder for 4 KiB pages in a 32-bit address
// space.
func MakeReaderBuilder() ReaderBuilder {
	return ReaderBuilder{
		offsetBits:  12,
		addressBits: 32,
	}
}

// WithOffsetBits sets the number of low address bits that select a byte
// within a page.
func (b ReaderBuilder) WithOffsetBits(offsetBits uint) ReaderBuilder {
	b.offsetBits = offsetBits
	return b
}

// WithAddressBits sets the width of the virtual address space.
func (b ReaderBuilder) WithAddressBits(addressBits uint) ReaderBuilder {
	b.addressBits = addressBits
	return b
}

// Build creates a Reader that consumes r.
func (b ReaderBuilder) Build(r io.Reader) (*Reader, error) {
	if b.addressBits == 0 || b.addressBits > 64 {
		return nil, fmt.Errorf("trace: address bits must be in 1..64, got %d",
			b.addressBits)
	}

	if b.offsetBits >= b.addressBits {
		return nil, fmt.Errorf(
			"trace: offset bits (%d) must be fewer than address bits (%d)",
			b.offsetBits, b.addressBits)
	}

	reader := &Reader{
		scanner:     bufio.NewScanner(r),
		offsetBits:  b.offsetBits,
		addressBits: b.addressBits,
	}

	return reader, nil
}

// Line returns the number of the last line read, starting from 1.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next access, or io.EOF at the end of the trace.
func (r *Reader) Next() (paging.Access, error) {
	for r.scanner.Scan() {
		r.line++

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		access, err := r.parse(line)
		if err != nil {
			return paging.Access{}, fmt.Errorf("trace: line %d: %w", r.line, err)
		}

		return access, nil
	}

	err := r.scanner.Err()
	if err != nil {
		return paging.Access{}, fmt.Errorf("trace: %w", err)
	}

	return paging.Access{}, io.EOF
}

func (r *Reader) parse(line string) (paging.Access, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return paging.Access{}, fmt.Errorf(
			"%w: want an access kind and an address, got %q",
			ErrMalformedLine, line)
	}

	kindField, addrField := fields[0], fields[1]

	kind, ok := parseKind(kindField)
	if !ok {
		kindField, addrField = addrField, kindField

		kind, ok = parseKind(kindField)
		if !ok {
			return paging.Access{}, fmt.Errorf(
				"%w: no access kind (R or W) in %q", ErrMalformedLine, line)
		}
	}

	addr, err := r.parseAddress(addrField)
	if err != nil {
		return paging.Access{}, err
	}

	page := paging.PageNumber(addr >> r.offsetBits)
	if page == paging.NoPage {
		return paging.Access{}, fmt.Errorf(
			"%w: address %s maps to a reserved page number",
			ErrMalformedLine, addrField)
	}

	access := paging.Access{
		Page: page,
		Kind: kind,
	}

	return access, nil
}

func parseKind(s string) (paging.AccessKind, bool) {
	switch s {
	case "R", "r":
		return paging.AccessRead, true
	case "W", "w":
		return paging.AccessWrite, true
	default:
		return 0, false
	}
}

func (r *Reader) parseAddress(s string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	addr, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad address %q", ErrMalformedLine, s)
	}

	if r.addressBits < 64 && addr>>r.addressBits != 0 {
		return 0, fmt.Errorf("%w: address %s does not fit in %d bits",
			ErrMalformedLine, s, r.addressBits)
	}

	return addr, nil
}

// Package arfield parses and formats the fixed-width, space-padded
// ASCII integer fields found in ar(1) headers. Every member-info field
// in the archive meta parser is decoded through this package; a bug
// here corrupts every subsequent read.
package arfield

import "fmt"

// ErrInvalidHeader is returned when a field contains a byte that is
// neither a valid digit (in the requested base) nor trailing padding.
var ErrInvalidHeader = fmt.Errorf("invalid header")

// ReadDecimal strips trailing ASCII spaces from b, then parses the
// remaining bytes as an unsigned base-10 integer.
func ReadDecimal(b []byte) (uint64, error) {
	return readBase(b, 10)
}

// ReadOctal strips trailing ASCII spaces from b, then parses the
// remaining bytes as an unsigned base-8 integer.
func ReadOctal(b []byte) (uint64, error) {
	return readBase(b, 8)
}

func readBase(b []byte, base uint64) (uint64, error) {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	if end == 0 {
		return 0, nil
	}

	var v uint64
	for _, c := range b[:end] {
		d, ok := digit(c, base)
		if !ok {
			return 0, ErrInvalidHeader
		}
		v = v*base + d
	}
	return v, nil
}

func digit(c byte, base uint64) (uint64, bool) {
	var d uint64
	switch {
	case c >= '0' && c <= '9':
		d = uint64(c - '0')
	default:
		return 0, false
	}
	if d >= base {
		return 0, false
	}
	return d, true
}

// FormatDecimal renders v as a left-justified base-10 field padded
// with trailing spaces to width bytes. ReadDecimal(FormatDecimal(v,
// width)) == v for every 0 <= v < 10^width.
func FormatDecimal(v uint64, width int) string {
	return formatBase(v, width, 10)
}

// FormatOctal renders v as a left-justified base-8 field padded with
// trailing spaces to width bytes.
func FormatOctal(v uint64, width int) string {
	return formatBase(v, width, 8)
}

func formatBase(v uint64, width int, base uint64) string {
	digits := []byte(nil)
	if v == 0 {
		digits = []byte{'0'}
	}
	for v > 0 {
		d := v % base
		digits = append([]byte{"0123456789"[d]}, digits...)
		v /= base
	}
	if len(digits) > width {
		// Caller asked for a value wider than the field; drop the
		// high-order digits and keep the low-order ones rather than panic, mirroring how a fixed
		// ar header silently drops precision it cannot express.
		digits = digits[len(digits)-width:]
	}
	out := make([]byte, width)
	copy(out, digits)
	for i := len(digits); i < width; i++ {
		out[i] = ' '
	}
	return string(out)
}

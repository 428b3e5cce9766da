package parse

import (
	"bytes"
	"strings"
	"unicode/utf16"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/safemath"
)

// String parsers decode with repair: invalid UTF-8 sequences and unpaired
// UTF-16 surrogates become U+FFFD. Use Cursor.SliceUTF8 for strict
// validation instead.

// repairUTF8 decodes b as UTF-8, substituting U+FFFD for invalid sequences.
func repairUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// StringRemaining decodes all remaining bytes as UTF-8 and advances the
// cursor to empty. It does not fail.
func StringRemaining(c *Cursor) string {
	s := repairUTF8(c.Bytes())
	c.start = c.end
	return s
}

// StringCount decodes exactly n bytes as UTF-8. Fails with invalid_value for
// negative n and insufficient_data when fewer than n bytes remain; the cursor
// is unchanged on failure.
func StringCount(c *Cursor, n int) (string, error) {
	if n < 0 {
		return "", fault.InvalidValuef(int64(c.start), "negative string length %d", n)
	}
	window, err := c.take(n)
	if err != nil {
		return "", err
	}
	s := repairUTF8(window)
	c.start += n
	return s, nil
}

// StringNulTerminated locates the first 0x00 in the remaining bytes, decodes
// the prefix as UTF-8, and consumes the prefix plus the terminator. Fails
// with invalid_value when no terminator is present; the cursor is unchanged
// on failure.
func StringNulTerminated(c *Cursor) (string, error) {
	i := bytes.IndexByte(c.Bytes(), 0x00)
	if i < 0 {
		return "", fault.InvalidValue(int64(c.start), "missing NUL terminator")
	}
	s := repairUTF8(c.region[c.start : c.start+i])
	c.start += i + 1
	return s, nil
}

// String16Remaining decodes all remaining bytes as UTF-16 code units in the
// given byte order. Fails with invalid_value when an odd number of bytes
// remains; the cursor is unchanged on failure.
func String16Remaining(c *Cursor, bo ByteOrder) (string, error) {
	n := c.Remaining()
	if n%2 != 0 {
		return "", fault.InvalidValuef(int64(c.start), "UTF-16 region has odd length %d", n)
	}
	return decodeUTF16(c, n/2, bo)
}

// String16Count decodes exactly codeUnits 16-bit code units as UTF-16. Fails
// with invalid_value for a negative count or when codeUnits * 2 overflows,
// insufficient_data when too few bytes remain; the cursor is unchanged on
// failure.
func String16Count(c *Cursor, codeUnits int, bo ByteOrder) (string, error) {
	if codeUnits < 0 {
		return "", fault.InvalidValuef(int64(c.start), "negative code unit count %d", codeUnits)
	}
	if _, ok := safemath.Mul(codeUnits, 2); !ok {
		return "", fault.InvalidValuef(int64(c.start), "code unit count %d overflows", codeUnits)
	}
	return decodeUTF16(c, codeUnits, bo)
}

func decodeUTF16(c *Cursor, codeUnits int, bo ByteOrder) (string, error) {
	window, err := c.take(codeUnits * 2)
	if err != nil {
		return "", err
	}
	units := make([]uint16, codeUnits)
	for i := range units {
		if bo == BigEndian {
			units[i] = uint16(window[2*i])<<8 | uint16(window[2*i+1])
		} else {
			units[i] = uint16(window[2*i]) | uint16(window[2*i+1])<<8
		}
	}
	s := string(utf16.Decode(units))
	c.start += codeUnits * 2
	return s, nil
}

package parse

import (
	"errors"
	"testing"

	"github.com/parsekit-io/parsekit/fault"
)

func u16be(c *Cursor) (uint16, error) {
	return U16(c, BigEndian)
}

// Scenario: four big-endian 16-bit values parse exactly; asking for five
// fails with insufficient_data.
func TestSequenceCounted(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}

	c := newCursor(data)
	vs, err := Sequence(&c, 4, u16be)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	want := []uint16{1, 2, 3, 4}
	for i := range want {
		if vs[i] != want[i] {
			t.Errorf("vs[%d] = %d, want %d", i, vs[i], want[i])
		}
	}
	if !c.IsEmpty() {
		t.Errorf("remaining = %d, want 0", c.Remaining())
	}

	c = newCursor(data)
	if _, err := Sequence(&c, 5, u16be); fault.KindOf(err) != fault.KindInsufficientData {
		t.Errorf("five elements: got %v", err)
	}
}

func TestSequenceNegativeCount(t *testing.T) {
	c := newCursor([]byte{1, 2})
	if _, err := Sequence(&c, -1, u16be); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("negative count: got %v", err)
	}
}

func TestSequenceUserError(t *testing.T) {
	boom := errors.New("boom")
	c := newCursor([]byte{1, 2, 3})

	_, err := Sequence(&c, 3, func(c *Cursor) (uint8, error) {
		v, err := U8(c)
		if err != nil {
			return 0, err
		}
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	if fault.KindOf(err) != fault.KindUserError {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("user cause should be preserved")
	}
	if fault.LocationOf(err) != 1 {
		t.Errorf("location = %d, want 1 (parser entry)", fault.LocationOf(err))
	}
}

func TestSequenceRemaining(t *testing.T) {
	c := newCursor([]byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03})
	vs, err := SequenceRemaining(&c, u16be)
	if err != nil || len(vs) != 3 {
		t.Fatalf("got (%v, %v)", vs, err)
	}
	if !c.IsEmpty() {
		t.Error("cursor should be empty")
	}

	empty := newCursor(nil)
	vs, err = SequenceRemaining(&empty, u16be)
	if err != nil || len(vs) != 0 {
		t.Errorf("empty region: (%v, %v)", vs, err)
	}
}

func TestSequenceRemainingProgress(t *testing.T) {
	c := newCursor([]byte{1, 2, 3})
	_, err := SequenceRemaining(&c, func(c *Cursor) (int, error) {
		return 0, nil // consumes nothing
	})
	if fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("zero-progress parser: got %v", err)
	}
}

func TestSequenceRemainingTrailingFailure(t *testing.T) {
	// 5 bytes cannot hold a whole number of 16-bit values.
	c := newCursor([]byte{0, 1, 0, 2, 9})
	if _, err := SequenceRemaining(&c, u16be); fault.KindOf(err) != fault.KindInsufficientData {
		t.Errorf("trailing byte: got %v", err)
	}
}

func TestRangeStartCount(t *testing.T) {
	c := newCursor([]byte{0x00, 0x10, 0x00, 0x04})
	iv, err := RangeStartCount(&c, func(c *Cursor) (int64, error) {
		v, err := U16(c, BigEndian)
		return int64(v), err
	})
	if err != nil || iv.Lower != 0x10 || iv.Upper != 0x14 {
		t.Fatalf("got (%+v, %v)", iv, err)
	}

	// Overflowing start + count.
	c = newCursor([]byte{0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xF0,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20})
	_, err = RangeStartCount(&c, func(c *Cursor) (int64, error) {
		return I64(c, BigEndian)
	})
	if fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("overflowing start+count: got %v", err)
	}

	// Negative count.
	c = newCursor([]byte{0x00, 0x00, 0xFF, 0xFE})
	_, err = RangeStartCount(&c, func(c *Cursor) (int64, error) {
		v, err := I16(c, BigEndian)
		return int64(v), err
	})
	if fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("negative count: got %v", err)
	}
}

func TestRangeStartEnd(t *testing.T) {
	c := newCursor([]byte{0x00, 0x02, 0x00, 0x08})
	iv, err := RangeStartEnd(&c, func(c *Cursor) (uint16, error) {
		return U16(c, BigEndian)
	})
	if err != nil || iv.Lower != 2 || iv.Upper != 8 {
		t.Fatalf("got (%+v, %v)", iv, err)
	}

	c = newCursor([]byte{0x00, 0x08, 0x00, 0x02})
	_, err = RangeStartEnd(&c, func(c *Cursor) (uint16, error) {
		return U16(c, BigEndian)
	})
	if fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("start > end: got %v", err)
	}
}

func TestRangeStartEndClosed(t *testing.T) {
	c := newCursor([]byte{0x02, 0x02})
	iv, err := RangeStartEndClosed(&c, func(c *Cursor) (uint8, error) {
		return U8(c)
	})
	if err != nil || iv.Lower != 2 || iv.Upper != 2 {
		t.Fatalf("got (%+v, %v)", iv, err)
	}
	if !iv.Contains(2) {
		t.Error("closed interval should contain its bound")
	}
}

package safemath

import (
	"math"
	"testing"

	"github.com/parsekit-io/parsekit/fault"
)

func TestAddUint32(t *testing.T) {
	tests := []struct {
		a, b   uint32
		result uint32
		ok     bool
	}{
		{0, 0, 0, true},
		{1, 1, 2, true},
		{math.MaxUint32, 0, math.MaxUint32, true},
		{math.MaxUint32, 1, 0, false},
		{1 << 31, 1 << 31, 0, false},
		{math.MaxUint32 - 1, 1, math.MaxUint32, true},
	}

	for _, tc := range tests {
		result, ok := Add(tc.a, tc.b)
		if ok != tc.ok {
			t.Errorf("Add(%d, %d): got ok=%v, want %v", tc.a, tc.b, ok, tc.ok)
		}
		if ok && result != tc.result {
			t.Errorf("Add(%d, %d): got %d, want %d", tc.a, tc.b, result, tc.result)
		}
	}
}

func TestAddInt8(t *testing.T) {
	tests := []struct {
		a, b   int8
		result int8
		ok     bool
	}{
		{0, 0, 0, true},
		{127, 0, 127, true},
		{127, 1, 0, false},
		{-128, -1, 0, false},
		{-128, 127, -1, true},
		{-1, -127, -128, true},
		{100, 27, 127, true},
		{100, 28, 0, false},
	}

	for _, tc := range tests {
		result, ok := Add(tc.a, tc.b)
		if ok != tc.ok {
			t.Errorf("Add(%d, %d): got ok=%v, want %v", tc.a, tc.b, ok, tc.ok)
		}
		if ok && result != tc.result {
			t.Errorf("Add(%d, %d): got %d, want %d", tc.a, tc.b, result, tc.result)
		}
	}
}

func TestSub(t *testing.T) {
	if _, ok := Sub(uint16(0), uint16(1)); ok {
		t.Error("0 - 1 should overflow for uint16")
	}
	if v, ok := Sub(int16(-32768), int16(0)); !ok || v != -32768 {
		t.Errorf("min - 0: got (%d, %v)", v, ok)
	}
	if _, ok := Sub(int16(-32768), int16(1)); ok {
		t.Error("min - 1 should overflow for int16")
	}
	if _, ok := Sub(int16(32767), int16(-1)); ok {
		t.Error("max - (-1) should overflow for int16")
	}
	if v, ok := Sub(uint64(10), uint64(3)); !ok || v != 7 {
		t.Errorf("10 - 3: got (%d, %v)", v, ok)
	}
}

func TestMul(t *testing.T) {
	tests := []struct {
		a, b   int64
		result int64
		ok     bool
	}{
		{0, 0, 0, true},
		{1, 1, 1, true},
		{-1, math.MinInt64, 0, false},
		{math.MinInt64, -1, 0, false},
		{-1, math.MaxInt64, -math.MaxInt64, true},
		{math.MaxInt64, 1, math.MaxInt64, true},
		{math.MaxInt64, 2, 0, false},
		{1 << 32, 1 << 32, 0, false},
		{1 << 31, 1 << 31, 1 << 62, true},
		{-(1 << 32), 1 << 31, math.MinInt64, true},
	}

	for _, tc := range tests {
		result, ok := Mul(tc.a, tc.b)
		if ok != tc.ok {
			t.Errorf("Mul(%d, %d): got ok=%v, want %v", tc.a, tc.b, ok, tc.ok)
		}
		if ok && result != tc.result {
			t.Errorf("Mul(%d, %d): got %d, want %d", tc.a, tc.b, result, tc.result)
		}
	}

	if _, ok := Mul(uint32(1<<16), uint32(1<<16)); ok {
		t.Error("2^16 * 2^16 should overflow uint32")
	}
	if v, ok := Mul(uint32(1<<10), uint32(1<<10)); !ok || v != 1<<20 {
		t.Errorf("2^10 * 2^10: got (%d, %v)", v, ok)
	}
}

func TestDivMod(t *testing.T) {
	if _, ok := Div(int32(1), int32(0)); ok {
		t.Error("division by zero should fail")
	}
	if _, ok := Mod(int32(1), int32(0)); ok {
		t.Error("modulo by zero should fail")
	}
	if _, ok := Div(int32(math.MinInt32), int32(-1)); ok {
		t.Error("min / -1 should overflow")
	}
	if _, ok := Mod(int32(math.MinInt32), int32(-1)); ok {
		t.Error("min % -1 should overflow")
	}
	if v, ok := Div(int32(-7), int32(2)); !ok || v != -3 {
		t.Errorf("-7 / 2: got (%d, %v)", v, ok)
	}
	if v, ok := Mod(uint8(7), uint8(4)); !ok || v != 3 {
		t.Errorf("7 %% 4: got (%d, %v)", v, ok)
	}
}

func TestNeg(t *testing.T) {
	if v, ok := Neg(uint16(0)); !ok || v != 0 {
		t.Errorf("Neg(0): got (%d, %v)", v, ok)
	}
	if _, ok := Neg(uint16(1)); ok {
		t.Error("negating a nonzero unsigned should fail")
	}
	if v, ok := Neg(int8(5)); !ok || v != -5 {
		t.Errorf("Neg(5): got (%d, %v)", v, ok)
	}
	if _, ok := Neg(int8(-128)); ok {
		t.Error("negating int8 min should fail")
	}
}

func TestConvert(t *testing.T) {
	if v, ok := Convert[int8](int64(-2)); !ok || v != -2 {
		t.Errorf("int64(-2) -> int8: got (%d, %v)", v, ok)
	}
	if _, ok := Convert[int8](int64(128)); ok {
		t.Error("128 should not fit int8")
	}
	if _, ok := Convert[uint8](int16(-1)); ok {
		t.Error("-1 should not fit uint8")
	}
	if _, ok := Convert[int8](uint8(255)); ok {
		t.Error("255 should not fit int8")
	}
	if v, ok := Convert[uint64](int32(7)); !ok || v != 7 {
		t.Errorf("int32(7) -> uint64: got (%d, %v)", v, ok)
	}
	if _, ok := Convert[int32](uint64(math.MaxUint64)); ok {
		t.Error("MaxUint64 should not fit int32")
	}
	if v, ok := Convert[int64](uint64(math.MaxInt64)); !ok || v != math.MaxInt64 {
		t.Errorf("MaxInt64 round-trip: got (%d, %v)", v, ok)
	}
	if _, ok := Convert[int64](uint64(math.MaxInt64) + 1); ok {
		t.Error("MaxInt64+1 should not fit int64")
	}
}

func TestOrFaultSurface(t *testing.T) {
	if _, err := AddOrFault(uint8(255), uint8(1)); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("AddOrFault overflow: got %v", err)
	}
	if v, err := MulOrFault(int64(6), int64(7)); err != nil || v != 42 {
		t.Errorf("MulOrFault(6, 7): got (%d, %v)", v, err)
	}
	if _, err := DivOrFault(int32(1), int32(0)); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("DivOrFault by zero: got %v", err)
	}
	if _, err := ConvertOrFault[uint8](int32(-5)); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("ConvertOrFault(-5): got %v", err)
	}
}

func TestIntervals(t *testing.T) {
	iv, ok := HalfOpen(int64(2), int64(5))
	if !ok || iv.Len() != 3 || !iv.Contains(2) || iv.Contains(5) {
		t.Errorf("HalfOpen(2, 5): got (%+v, %v)", iv, ok)
	}
	if _, ok := HalfOpen(int64(5), int64(2)); ok {
		t.Error("HalfOpen(5, 2) should fail")
	}
	if iv, ok := HalfOpen(uint32(7), uint32(7)); !ok || iv.Len() != 0 {
		t.Error("empty half-open interval should be allowed")
	}

	civ, ok := Closed(uint8(0), uint8(255))
	if !ok || !civ.Contains(255) {
		t.Errorf("Closed(0, 255): got (%+v, %v)", civ, ok)
	}
	if _, ok := Closed(uint8(1), uint8(0)); ok {
		t.Error("Closed(1, 0) should fail")
	}

	if _, err := HalfOpenOrFault(int8(3), int8(-3)); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("HalfOpenOrFault(3, -3): got %v", err)
	}
}

func TestBoundedIndexing(t *testing.T) {
	s := []uint16{10, 20, 30}

	if v, ok := Index(s, 0); !ok || v != 10 {
		t.Errorf("Index(s, 0): got (%d, %v)", v, ok)
	}
	if v, ok := Index(s, uint64(2)); !ok || v != 30 {
		t.Errorf("Index(s, 2): got (%d, %v)", v, ok)
	}
	if _, ok := Index(s, 3); ok {
		t.Error("Index(s, 3) should fail")
	}
	if _, ok := Index(s, int8(-1)); ok {
		t.Error("Index(s, -1) should fail")
	}
	if _, ok := Index(s, uint64(math.MaxUint64)); ok {
		t.Error("huge index should fail, not wrap")
	}

	if sub, ok := Slice(s, 1, 3); !ok || len(sub) != 2 || sub[0] != 20 {
		t.Errorf("Slice(s, 1, 3): got (%v, %v)", sub, ok)
	}
	if sub, ok := Slice(s, 3, 3); !ok || len(sub) != 0 {
		t.Errorf("Slice(s, 3, 3): got (%v, %v)", sub, ok)
	}
	if _, ok := Slice(s, 2, 1); ok {
		t.Error("Slice(s, 2, 1) should fail")
	}
	if _, ok := Slice(s, 0, 4); ok {
		t.Error("Slice(s, 0, 4) should fail")
	}

	if _, err := IndexOrFault(s, 9); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("IndexOrFault(s, 9): got %v", err)
	}
	if _, err := SliceOrFault(s, 0, 9); fault.KindOf(err) != fault.KindInvalidValue {
		t.Errorf("SliceOrFault(s, 0, 9): got %v", err)
	}
}

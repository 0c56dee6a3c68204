package sequence

import (
	"math"
	"testing"
)

func TestEncodeDecodeSequence_RoundTrip(t *testing.T) {
	orig := []int{math.MinInt, -2, 0, 3, 77, math.MaxInt}

	b, err := EncodeSequence(orig)
	if err != nil {
		t.Fatalf("EncodeSequence failed: %v", err)
	}
	if len(b) != len(orig)*8 {
		t.Fatalf("blob length = %d, want %d", len(b), len(orig)*8)
	}

	decoded, err := DecodeSequence(b)
	if err != nil {
		t.Fatalf("DecodeSequence failed: %v", err)
	}
	if len(decoded) != len(orig) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(orig))
	}
	for i := range orig {
		if got, want := decoded[i], orig[i]; got != want {
			t.Fatalf("decoded[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestEncodeDecodeSequence_Empty(t *testing.T) {
	b, err := EncodeSequence(nil)
	if err != nil {
		t.Fatalf("EncodeSequence(nil) failed: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty blob for nil slice, got len=%d", len(b))
	}

	values, err := DecodeSequence(nil)
	if err != nil {
		t.Fatalf("DecodeSequence(nil) failed: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty slice for nil blob, got len=%d", len(values))
	}
}

func TestDecodeSequence_InvalidLength(t *testing.T) {
	if _, err := DecodeSequence([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for truncated blob")
	}
}

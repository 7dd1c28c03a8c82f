package snapshot

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected float64
		ok       bool
	}{
		{name: "float64", value: 1.5, expected: 1.5, ok: true},
		{name: "int", value: 7, expected: 7, ok: true},
		{name: "int64", value: int64(-3), expected: -3, ok: true},
		{name: "json number", value: json.Number("2.25"), expected: 2.25, ok: true},
		{name: "numeric string", value: " 12.5 ", expected: 12.5, ok: true},
		{name: "thousands separator", value: "1,000", expected: 1000, ok: true},
		{name: "bytes", value: []byte("4"), expected: 4, ok: true},
		{name: "empty string", value: "", ok: false},
		{name: "text", value: "abc", ok: false},
		{name: "bool", value: true, ok: false},
		{name: "nil", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toFloat(tt.value)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	if n, ok := toInt("12"); !ok || n != 12 {
		t.Errorf("expected 12, got %d (%v)", n, ok)
	}
	if _, ok := toInt(1.5); ok {
		t.Error("expected fractional value to be rejected")
	}
}

func TestIsNull(t *testing.T) {
	if !isNull(nil) || !isNull(math.NaN()) {
		t.Error("nil and NaN should be null")
	}
	if isNull(0.0) || isNull("") {
		t.Error("zero and empty string are values")
	}
}

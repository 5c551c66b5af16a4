package upred

import (
	"fmt"
	"testing"
)

func TestValidEmail(t *testing.T) {
	for _, tc := range []struct {
		email string
		want  float64
	}{
		{"test@example.com", 1},
		{"user@sub.domain.org", 1},
		{"@example.com", 1},
		{"invalid.email", 0},
		{"user@com", 0},
		{"a@b@c.d", 0},
		{"", 0},
	} {
		t.Run(tc.email, func(t *testing.T) {
			got, ok := ValidEmail(Record{Email: tc.email})
			if !ok {
				t.Fatalf("feature does not apply")
			}
			if got != tc.want {
				t.Fatalf("expected %g; got %g", tc.want, got)
			}
		})
	}
}

func TestFieldSum(t *testing.T) {
	for _, tc := range []struct {
		fields map[string]float64
		want   float64
	}{
		{map[string]float64{"a": 1, "b": 2, "c": 3}, 6},
		{map[string]float64{"a": 10}, 10},
		{map[string]float64{}, 0},
		{nil, 0},
	} {
		t.Run(fmt.Sprintf("sum %g", tc.want), func(t *testing.T) {
			got, ok := FieldSum(Record{Fields: tc.fields})
			if !ok {
				t.Fatalf("feature does not apply")
			}
			if got != tc.want {
				t.Fatalf("expected %g; got %g", tc.want, got)
			}
		})
	}
}

func TestFieldMax(t *testing.T) {
	for _, tc := range []struct {
		fields map[string]float64
		want   float64
		ok     bool
	}{
		{map[string]float64{"a": 1, "b": 5, "c": 3, "d": 2}, 5, true},
		{map[string]float64{"a": 10}, 10, true},
		{map[string]float64{"a": -1, "b": -5, "c": -3}, -1, true},
		{map[string]float64{}, 0, false},
		{nil, 0, false},
	} {
		t.Run(fmt.Sprintf("max %g", tc.want), func(t *testing.T) {
			got, ok := FieldMax(Record{Fields: tc.fields})
			if ok != tc.ok {
				t.Fatalf("expected ok=%t; got ok=%t", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("expected %g; got %g", tc.want, got)
			}
		})
	}
}

func TestBias(t *testing.T) {
	got, ok := Bias(Record{})
	if !ok {
		t.Fatalf("feature does not apply")
	}
	if got != 1 {
		t.Fatalf("expected 1; got %g", got)
	}
}

func TestField(t *testing.T) {
	r := Record{Fields: map[string]float64{"clicks": 8}}
	for _, tc := range []struct {
		name string
		want float64
		ok   bool
	}{
		{"clicks", 8, true},
		{"Clicks", 8, true},
		{"visits", 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Field(tc.name)(r)
			if ok != tc.ok {
				t.Fatalf("expected ok=%t; got ok=%t", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("expected %g; got %g", tc.want, got)
			}
		})
	}
}

func TestNewFeatureSet(t *testing.T) {
	fs, err := NewFeatureSet("Bias", "ValidEmail", "clicks")
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if len(fs) != 3 {
		t.Fatalf("expected 3 features; got %d", len(fs))
	}
	if _, err := NewFeatureSet("Bias", ""); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestCalculate(t *testing.T) {
	fs, err := NewFeatureSet("Bias", "FieldMax")
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	xs := fs.Calculate(nil, Record{Fields: map[string]float64{"a": 3}})
	xs = fs.Calculate(xs, Record{Fields: map[string]float64{"a": 4, "b": 7}})
	want := []float64{1, 3, 1, 7}
	if !floatArrayEqual(xs, want) {
		t.Fatalf("expected %v; got %v", want, xs)
	}
	// FieldMax does not apply to records without fields, so the
	// feature vector comes up short.
	if xs := fs.Calculate(nil, Record{}); len(xs) != 1 {
		t.Fatalf("expected 1 feature; got %d", len(xs))
	}
	if !fs.Applies(Record{Fields: map[string]float64{"a": 1}}) {
		t.Fatalf("feature set does not apply")
	}
	if fs.Applies(Record{}) {
		t.Fatalf("feature set applies")
	}
}

func floatArrayEqual(xs, ys []float64) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if xs[i] != ys[i] {
			return false
		}
	}
	return true
}

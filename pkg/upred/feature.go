package upred

import (
	"fmt"
	"strings"

	"git.sr.ht/~mkern/upred/pkg/upred/ml"
)

// registered names for feature functions
var register = map[string]FeatureFunc{
	"Bias":       Bias,
	"ValidEmail": ValidEmail,
	"FieldSum":   FieldSum,
	"FieldMax":   FieldMax,
}

// FeatureFunc defines the function a feature needs to implement.  A
// feature func gets a record and returns the feature value for the
// record and whether the feature applies to it.
type FeatureFunc func(r Record) (float64, bool)

// FeatureSet is just a list of feature funcs.
type FeatureSet []FeatureFunc

// NewFeatureSet creates a new feature set from the list of feature
// function names.  Names that do not name a registered feature
// function are resolved to accessors for the named record field.
func NewFeatureSet(names ...string) (FeatureSet, error) {
	funcs := make([]FeatureFunc, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("newFeatureSet: empty feature name")
		}
		if f, ok := register[name]; ok {
			funcs[i] = f
			continue
		}
		funcs[i] = Field(name)
	}
	return funcs, nil
}

// Calculate appends the feature values for the given record to xs and
// returns the updated slice.  Feature functions that do not apply to
// the record are omitted from the resulting feature vector.
func (fs FeatureSet) Calculate(xs []float64, r Record) []float64 {
	for _, f := range fs {
		if val, ok := f(r); ok {
			xs = append(xs, val)
		}
	}
	return xs
}

// Applies returns whether all feature functions of the set apply to
// the given record.
func (fs FeatureSet) Applies(r Record) bool {
	for _, f := range fs {
		if _, ok := f(r); !ok {
			return false
		}
	}
	return true
}

// Field returns a feature function that reads the named numeric field
// of a record.  It applies only to records that contain the field.
func Field(name string) FeatureFunc {
	name = strings.ToLower(name)
	return func(r Record) (float64, bool) {
		val, ok := r.Fields[name]
		return val, ok
	}
}

// Bias returns the constant bias feature.  It applies to every
// record.
func Bias(r Record) (float64, bool) {
	return 1, true
}

// ValidEmail returns whether the record's email address looks valid:
// it must contain an '@' and the domain segment following the first
// '@' (up to a possible second '@') must contain a '.'.  It applies
// to every record.
func ValidEmail(r Record) (float64, bool) {
	parts := strings.Split(r.Email, "@")
	if len(parts) < 2 {
		return ml.False, true
	}
	return ml.Bool(strings.Contains(parts[1], ".")), true
}

// FieldSum returns the sum over the numeric fields of the record.  It
// applies to every record; the sum of no fields is 0.
func FieldSum(r Record) (float64, bool) {
	var sum float64
	for _, val := range r.Fields {
		sum += val
	}
	return sum, true
}

// FieldMax returns the maximum over the numeric fields of the record.
// It does not apply to records without numeric fields.
func FieldMax(r Record) (float64, bool) {
	var max float64
	var ok bool
	for _, val := range r.Fields {
		if !ok || val > max {
			max, ok = val, true
		}
	}
	return max, ok
}

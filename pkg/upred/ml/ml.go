package ml

import (
	"gonum.org/v1/gonum/mat"
)

// Predefined values for true and false.
const (
	False = float64(0)
	True  = float64(1)
)

// Bool converts a bool to a value representing false or true.
func Bool(t bool) float64 {
	if t {
		return True
	}
	return False
}

// Fitter is implemented by trainable models.  Fit trains the model on
// the given feature vectors and labels and returns the final training
// error.
type Fitter interface {
	Fit(x *mat.Dense, y *mat.VecDense) (float64, error)
}

// Predictor is implemented by models that predict class labels and
// class probabilities for feature vectors.
type Predictor interface {
	Predict(x *mat.Dense) (*mat.VecDense, error)
	PredictProb(x *mat.Dense) (*mat.Dense, error)
}

// Scorer is implemented by models that calculate their mean accuracy
// over labeled feature vectors.
type Scorer interface {
	Score(x *mat.Dense, y *mat.VecDense) (float64, error)
}

// Classifier combines fitting, prediction and scoring.
type Classifier interface {
	Fitter
	Predictor
	Scorer
}

// ApplyThreshold converts the given probabilities to class labels.
// Values greater than t become True, all other values False.
func ApplyThreshold(ys *mat.VecDense, t float64) {
	for i := 0; i < ys.Len(); i++ {
		ys.SetVec(i, Bool(ys.AtVec(i) > t))
	}
}

func accuracy(p, y *mat.VecDense) float64 {
	var correct int
	for i := 0; i < y.Len(); i++ {
		if p.AtVec(i) == y.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(y.Len())
}

package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LR implements a logistic regression classifier fitted with batch
// gradient descent.
type LR struct {
	weights      *mat.VecDense
	Progress     func(iter int, err float64)
	LearningRate float64
	Ntrain       int
}

func (lr *LR) gradient(x *mat.Dense, y, p, out *mat.VecDense) float64 {
	r, _ := x.Dims()
	p.SubVec(p, y)
	err := averageError(p)
	out.MulVec(x.T(), p)
	out.ScaleVec(1.0/float64(r), out)
	return err
}

func averageError(dif *mat.VecDense) float64 {
	sum := 0.0
	for i := 0; i < dif.Len(); i++ {
		sum += dif.AtVec(i) * dif.AtVec(i)
	}
	return math.Sqrt(sum) / float64(dif.Len())
}

func (lr *LR) sigmoid(x *mat.VecDense) *mat.VecDense {
	for i := 0; i < x.Len(); i++ {
		x.SetVec(i, 1.0/(1.0+math.Exp(-x.AtVec(i))))
	}
	return x
}

// Weights returns the weights of the logistic regression model.
func (lr *LR) Weights() []float64 {
	return lr.weights.RawVector().Data
}

func (lr *LR) predictVec(x *mat.Dense, out *mat.VecDense) {
	out.MulVec(x, lr.weights)
	lr.sigmoid(out)
}

func (lr *LR) check(x *mat.Dense) error {
	if lr.weights == nil {
		return fmt.Errorf("model not fitted")
	}
	_, c := x.Dims()
	if c != lr.weights.Len() {
		return fmt.Errorf("%d features, want %d", c, lr.weights.Len())
	}
	return nil
}

// PredictProb calculates the class probabilities for the given
// feature vectors.  The returned matrix contains one row per feature
// vector with the probabilities for the negative and the positive
// class at index 0 and 1.
func (lr *LR) PredictProb(x *mat.Dense) (*mat.Dense, error) {
	if err := lr.check(x); err != nil {
		return nil, fmt.Errorf("predictProb: %v", err)
	}
	var tmp mat.VecDense
	lr.predictVec(x, &tmp)
	probs := mat.NewDense(tmp.Len(), 2, nil)
	for i := 0; i < tmp.Len(); i++ {
		probs.Set(i, 0, 1-tmp.AtVec(i))
		probs.Set(i, 1, tmp.AtVec(i))
	}
	return probs, nil
}

// Predict calculates the class labels for the given feature vectors
// using a probability threshold of 0.5.
func (lr *LR) Predict(x *mat.Dense) (*mat.VecDense, error) {
	if err := lr.check(x); err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}
	var tmp mat.VecDense
	lr.predictVec(x, &tmp)
	ApplyThreshold(&tmp, 0.5)
	return &tmp, nil
}

// Score calculates the mean accuracy of the model's predictions on
// the given labeled feature vectors.
func (lr *LR) Score(x *mat.Dense, y *mat.VecDense) (float64, error) {
	p, err := lr.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("score: %v", err)
	}
	if p.Len() != y.Len() {
		return 0, fmt.Errorf("score: %d predictions, %d labels", p.Len(), y.Len())
	}
	return accuracy(p, y), nil
}

// Fit fits the logistic regression model and returns its final error.
// Fitting stops early if the error starts to rise.  Refitting a model
// resets its weights.
func (lr *LR) Fit(x *mat.Dense, y *mat.VecDense) (float64, error) {
	r, c := x.Dims()
	if y.Len() != r {
		return 0, fmt.Errorf("fit: %d feature vectors, %d labels", r, y.Len())
	}
	lr.weights = mat.NewVecDense(c, nil)
	errb := math.MaxFloat64
	var pred, gradient mat.VecDense
	for i := 0; i < lr.Ntrain; i++ {
		lr.predictVec(x, &pred)
		err := lr.gradient(x, y, &pred, &gradient)
		if errb < err {
			return errb, nil
		}
		gradient.ScaleVec(lr.LearningRate, &gradient)
		lr.weights.SubVec(lr.weights, &gradient)
		if lr.Progress != nil {
			lr.Progress(i, err)
		}
		errb = err
	}
	return errb, nil
}

// Normalize normalizes the given feature vectors.
func Normalize(xs *mat.Dense) error {
	return meanNormalization(xs)
}

func meanNormalization(xs *mat.Dense) error {
	r, c := xs.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("normalize: zero length")
	}
	means := make([]float64, c)
	diff := make([]float64, c)
	for j := 0; j < c; j++ {
		max := -math.MaxFloat64
		min := math.MaxFloat64
		var sum float64
		for i := 0; i < r; i++ {
			val := xs.At(i, j)
			if max < val {
				max = val
			}
			if min > val {
				min = val
			}
			sum += val
		}
		// Specifically handle values that are clearly between
		// [0,1] and have a diff of 0.
		if max-min == 0 && max >= 0 && max <= 1 && min >= 0 && min <= 1 {
			min = 0
			max = 1
		} else if max-min == 0 {
			return fmt.Errorf("normalize[%d]: max - min = %f - %f cannot be 0", j, max, min)
		}
		means[j] = sum / float64(r)
		diff[j] = max - min
		for i := 0; i < r; i++ {
			val := (xs.At(i, j) - means[j]) / diff[j]
			xs.Set(i, j, val)
		}
	}
	return nil
}

var _ Classifier = &LR{}

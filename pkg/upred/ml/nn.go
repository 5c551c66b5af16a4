package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NN implements a simple feed-forward neural network classifier with
// one hidden layer and two output classes.
type NN struct {
	wh, wo              mat.Dense
	hiddenIn, hiddenOut mat.Dense
	finalIn, finalOut   mat.Dense
	Progress            func(epoch int, err float64)
	lr                  float64
	inputs              int
	hiddens             int
	outputs             int
	epochs              int
}

// CreateNetwork creates a new network for the given number of input
// features and hidden nodes.  The weights are initialized randomly.
func CreateNetwork(input, hidden int, lr float64, epochs int) *NN {
	nn := NN{
		inputs:  input,
		hiddens: hidden,
		outputs: 2, // Fixed to 2 classes True/False
		lr:      lr,
		epochs:  epochs,
	}
	nn.wh.ReuseAs(nn.hiddens, nn.inputs)
	randomInit(&nn.wh, float64(nn.inputs))
	nn.wo.ReuseAs(nn.outputs, nn.hiddens)
	randomInit(&nn.wo, float64(nn.hiddens))
	return &nn
}

func (nn *NN) check(x *mat.Dense) error {
	if nn.inputs == 0 {
		return fmt.Errorf("network not initialized")
	}
	_, c := x.Dims()
	if c != nn.inputs {
		return fmt.Errorf("%d features, want %d", c, nn.inputs)
	}
	return nil
}

func (nn *NN) targets(y *mat.VecDense) (*mat.Dense, error) {
	ys := make([]float64, 0, y.Len()*nn.outputs)
	for i := 0; i < y.Len(); i++ {
		switch y.AtVec(i) {
		case True:
			ys = append(ys, .01)
			ys = append(ys, .99)
		case False:
			ys = append(ys, .99)
			ys = append(ys, .01)
		default:
			return nil, fmt.Errorf("bad label %g", y.AtVec(i))
		}
	}
	return mat.NewDense(y.Len(), nn.outputs, ys), nil
}

func (nn *NN) forward(inputs mat.Matrix) {
	nn.hiddenIn.Product(&nn.wh, inputs)
	nn.hiddenOut.Apply(sigmoid, &nn.hiddenIn)
	nn.finalIn.Product(&nn.wo, &nn.hiddenOut)
	nn.finalOut.Apply(sigmoid, &nn.finalIn)
}

// Predict calculates the class labels for the given feature vectors.
func (nn *NN) Predict(x *mat.Dense) (*mat.VecDense, error) {
	if err := nn.check(x); err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}
	r, _ := x.Dims()
	ys := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		nn.forward(x.RowView(i))
		ys.SetVec(i, Bool(nn.finalOut.At(1, 0) > nn.finalOut.At(0, 0)))
	}
	return ys, nil
}

// PredictProb calculates the class probabilities for the given
// feature vectors.  The two output activations of the network are
// scaled to sum to 1 for each feature vector.
func (nn *NN) PredictProb(x *mat.Dense) (*mat.Dense, error) {
	if err := nn.check(x); err != nil {
		return nil, fmt.Errorf("predictProb: %v", err)
	}
	r, _ := x.Dims()
	probs := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		nn.forward(x.RowView(i))
		p0, p1 := nn.finalOut.At(0, 0), nn.finalOut.At(1, 0)
		probs.Set(i, 0, p0/(p0+p1))
		probs.Set(i, 1, p1/(p0+p1))
	}
	return probs, nil
}

// Score calculates the mean accuracy of the network's predictions on
// the given labeled feature vectors.
func (nn *NN) Score(x *mat.Dense, y *mat.VecDense) (float64, error) {
	p, err := nn.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("score: %v", err)
	}
	if p.Len() != y.Len() {
		return 0, fmt.Errorf("score: %d predictions, %d labels", p.Len(), y.Len())
	}
	return accuracy(p, y), nil
}

// Fit trains the neural network on the given data and returns the
// average output error of the last epoch.
func (nn *NN) Fit(x *mat.Dense, y *mat.VecDense) (float64, error) {
	if err := nn.check(x); err != nil {
		return 0, fmt.Errorf("fit: %v", err)
	}
	r, _ := x.Dims()
	if y.Len() != r {
		return 0, fmt.Errorf("fit: %d feature vectors, %d labels", r, y.Len())
	}
	ys, err := nn.targets(y)
	if err != nil {
		return 0, fmt.Errorf("fit: %v", err)
	}
	var errt float64
	for epoch := 0; epoch < nn.epochs; epoch++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += nn.train(x.RowView(i), ys.RowView(i))
		}
		errt = math.Sqrt(sum) / float64(r)
		if nn.Progress != nil {
			nn.Progress(epoch, errt)
		}
	}
	return errt, nil
}

func (nn *NN) train(inputs, targets mat.Matrix) float64 {
	// Forward propagation.
	hiddenIn := dot(&nn.wh, inputs)
	hiddenOut := apply(sigmoid, hiddenIn)
	finalIn := dot(&nn.wo, hiddenOut)
	finalOut := apply(sigmoid, finalIn)

	// Calculate errors.
	outErr := sub(targets, finalOut)
	hiddenErr := dot(nn.wo.T(), outErr)

	// Backward propagation.
	nn.wo.Add(&nn.wo, scale(nn.lr,
		dot(multiply(outErr, sigmoidp(finalOut)), hiddenOut.T())))
	nn.wh.Add(&nn.wh, scale(nn.lr,
		dot(multiply(hiddenErr, sigmoidp(hiddenOut)), inputs.T())))

	var sum float64
	r, c := outErr.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += outErr.At(i, j) * outErr.At(i, j)
		}
	}
	return sum
}

func dot(m, n mat.Matrix) mat.Matrix {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Product(m, n)
	return o
}

func apply(fn func(i, j int, v float64) float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

func scale(s float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

func multiply(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.MulElem(m, n)
	return o
}

func sub(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Sub(m, n)
	return o
}

func sigmoid(r, c int, z float64) float64 {
	return 1.0 / (1 + math.Exp(-1*z))
}

func sigmoidp(m mat.Matrix) mat.Matrix {
	rows, _ := m.Dims()
	o := make([]float64, rows)
	for i := range o {
		o[i] = 1
	}
	ones := mat.NewDense(rows, 1, o)
	return multiply(m, sub(ones, m))
}

func randomInit(m *mat.Dense, v float64) {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(v),
		Max: 1 / math.Sqrt(v),
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, dist.Rand())
		}
	}
}

var _ Classifier = &NN{}

package upred

import (
	"errors"

	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"gonum.org/v1/gonum/mat"
)

// ErrNotTrained is returned by Predict and PredictProb if the
// predictor's model has not been trained yet.
var ErrNotTrained = errors.New("model must be trained before making predictions")

// Predictor wraps a binary classification model and keeps track of
// whether the model has been trained.  Predictions are rejected with
// ErrNotTrained until a call to Train has succeeded.  A predictor is
// not safe for concurrent use.
type Predictor struct {
	clf     ml.Classifier
	trained bool
}

// NewPredictor creates a new predictor for the given classification
// model.
func NewPredictor(clf ml.Classifier) *Predictor {
	return &Predictor{clf: clf}
}

// Train fits the underlying model on the given feature vectors and
// labels and marks the predictor as trained.  Errors of the
// underlying model are returned unchanged.  A predictor once trained
// stays trained even if a later call to Train fails.
func (p *Predictor) Train(x *mat.Dense, y *mat.VecDense) error {
	if _, err := p.clf.Fit(x, y); err != nil {
		return err
	}
	p.trained = true
	return nil
}

// Predict returns the predicted labels for the given feature vectors
// in the order of the rows of x.  If the predictor has not been
// trained, ErrNotTrained is returned and the underlying model is not
// consulted.
func (p *Predictor) Predict(x *mat.Dense) (*mat.VecDense, error) {
	if !p.trained {
		return nil, ErrNotTrained
	}
	return p.clf.Predict(x)
}

// PredictProb returns the class probabilities for the given feature
// vectors, one row per feature vector.  If the predictor has not
// been trained, ErrNotTrained is returned and the underlying model is
// not consulted.
func (p *Predictor) PredictProb(x *mat.Dense) (*mat.Dense, error) {
	if !p.trained {
		return nil, ErrNotTrained
	}
	return p.clf.PredictProb(x)
}

// Score returns the model's mean accuracy on the given labeled
// feature vectors.  Unlike Predict and PredictProb, Score does not
// check whether the predictor has been trained; scoring an untrained
// model is left to the underlying model.
func (p *Predictor) Score(x *mat.Dense, y *mat.VecDense) (float64, error) {
	return p.clf.Score(x, y)
}

// Trained returns whether the predictor has been trained.
func (p *Predictor) Trained() bool {
	return p.trained
}

package internal

import (
	"fmt"

	"git.sr.ht/~mkern/upred/pkg/upred"
	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// upred version
const Version = "v0.0.1"

// Flags is used to define the standard command-line parameters for
// upred sub commands.
type Flags struct {
	Params    string   // Path to the configuration file
	Overrides []string // Configuration overrides
}

// Init initializes the standard commandline arguments for the given
// subcommand.
func (flags *Flags) Init(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.Params, "parameters", "P", "", "set path to configuration file")
	cmd.Flags().StringArrayVarP(&flags.Overrides, "set", "s", nil, "override configuration values (key=value)")
}

// ReadConfig reads the configuration file, applies the command-line
// overrides and fills in default values for unset entries.
func (flags *Flags) ReadConfig() (*Config, error) {
	c, err := ReadConfig(flags.Params)
	if err != nil {
		return nil, err
	}
	for _, kv := range flags.Overrides {
		if err := c.Set(kv); err != nil {
			return nil, err
		}
	}
	c.setDefaults()
	return c, nil
}

// Matrices builds the feature matrix and the label vector for the
// given records.
func Matrices(fs upred.FeatureSet, records []upred.T) (*mat.Dense, *mat.VecDense, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("matrices: no records")
	}
	xs := make([]float64, 0, len(records)*len(fs))
	ys := make([]float64, 0, len(records))
	for _, r := range records {
		xs = fs.Calculate(xs, r)
		ys = append(ys, r.Label)
	}
	if len(xs) == 0 || len(xs)%len(records) != 0 {
		return nil, nil, fmt.Errorf("matrices: ragged feature vectors")
	}
	x := mat.NewDense(len(records), len(xs)/len(records), xs)
	y := mat.NewVecDense(len(records), ys)
	return x, y, nil
}

// NewClassifier creates the configured classifier.  Cols is the
// number of input features; the progress callback (may be nil) is
// called after each training iteration.
func NewClassifier(c *Config, cols int, progress func(int, float64)) (ml.Classifier, error) {
	switch c.Classifier {
	case "lr":
		return &ml.LR{
			LearningRate: c.LearningRate,
			Ntrain:       c.Ntrain,
			Progress:     progress,
		}, nil
	case "nn":
		nn := ml.CreateNetwork(cols, c.Hidden, c.LearningRate, c.Epochs)
		nn.Progress = progress
		return nn, nil
	default:
		return nil, fmt.Errorf("newClassifier %s: no such classifier", c.Classifier)
	}
}

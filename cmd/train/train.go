package train

import (
	"context"
	"fmt"
	"log"

	"git.sr.ht/~mkern/upred/cmd/internal"
	"git.sr.ht/~mkern/upred/pkg/upred"
	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
)

// CMD defines the upred train command.
var CMD = &cobra.Command{
	Use:   "train [FILES...]",
	Short: "Train a prediction model",
	Run:   run,
}

var flags = struct {
	internal.Flags
	classifier string
	ntrain     int
	normalize  bool
}{}

func init() {
	flags.Init(CMD)
	CMD.Flags().StringVarP(&flags.classifier, "classifier", "c", "",
		"set the classifier (overwrites the setting in the configuration file)")
	CMD.Flags().IntVarP(&flags.ntrain, "ntrain", "n", 0,
		"set the number of training iterations (overwrites the setting in the configuration file)")
	CMD.Flags().BoolVarP(&flags.normalize, "normalize", "N", false,
		"normalize the feature matrix (overwrites the setting in the configuration file)")
}

func run(_ *cobra.Command, args []string) {
	c, err := flags.ReadConfig()
	chk(err)
	internal.UpdateInConfig(&c.Classifier, flags.classifier)
	internal.UpdateInConfig(&c.Ntrain, flags.ntrain)
	internal.UpdateInConfig(&c.Normalize, flags.normalize)
	fs, err := upred.NewFeatureSet(c.Features...)
	chk(err)
	records, err := internal.ReadRecords(context.Background(), fs, args, true)
	chk(err)
	x, y, err := internal.Matrices(fs, records)
	chk(err)
	if c.Normalize {
		chk(ml.Normalize(x))
	}
	rows, cols := x.Dims()
	upred.Log("train: fitting %d records, %d features, classifier=%s",
		rows, cols, c.Classifier)
	var ferr float64
	bar := pb.StartNew(c.Iterations())
	clf, err := internal.NewClassifier(c, cols, func(_ int, err float64) {
		ferr = err
		bar.Increment()
	})
	chk(err)
	p := upred.NewPredictor(clf)
	chk(p.Train(x, y))
	bar.Finish()
	acc, err := p.Score(x, y)
	chk(err)
	fmt.Printf("train/%s err %g\n", c.Classifier, ferr)
	fmt.Printf("train/%s acc %f\n", c.Classifier, acc)
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

package predict

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"git.sr.ht/~mkern/upred/cmd/internal"
	"git.sr.ht/~mkern/upred/pkg/upred"
	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"github.com/spf13/cobra"
)

// CMD defines the upred predict command.
var CMD = &cobra.Command{
	Use:   "predict [FILES...]",
	Short: "Predict labels for activity records",
	Run:   run,
}

var flags = struct {
	internal.Flags
	train     []string
	out       string
	batch     int
	normalize bool
}{}

const bufs = 64 * 1024

func init() {
	flags.Init(CMD)
	CMD.Flags().StringSliceVarP(&flags.train, "train", "t", nil,
		"set the training record files")
	CMD.Flags().StringVarP(&flags.out, "out", "o", "",
		"set the output file (default stdout)")
	CMD.Flags().IntVarP(&flags.batch, "batch", "b", 0,
		"set the prediction batch size (overwrites the setting in the configuration file)")
	CMD.Flags().BoolVarP(&flags.normalize, "normalize", "N", false,
		"normalize the feature matrices (overwrites the setting in the configuration file)")
}

func run(_ *cobra.Command, args []string) {
	c, err := flags.ReadConfig()
	chk(err)
	internal.UpdateInConfig(&c.Batch, flags.batch)
	internal.UpdateInConfig(&c.Normalize, flags.normalize)
	fs, err := upred.NewFeatureSet(c.Features...)
	chk(err)
	ctx := context.Background()
	p, err := train(ctx, c, fs)
	chk(err)
	piper := internal.Piper{Files: args}
	chk(piper.Pipe(ctx,
		upred.Normalize,
		upred.FilterBad(fs),
		upred.ConnectPredictions(p, fs, c.Batch, c.Normalize),
		write(flags.out),
	))
}

func train(ctx context.Context, c *internal.Config, fs upred.FeatureSet) (*upred.Predictor, error) {
	records, err := internal.ReadRecords(ctx, fs, flags.train, true)
	if err != nil {
		return nil, fmt.Errorf("train: %v", err)
	}
	x, y, err := internal.Matrices(fs, records)
	if err != nil {
		return nil, fmt.Errorf("train: %v", err)
	}
	if c.Normalize {
		if err := ml.Normalize(x); err != nil {
			return nil, fmt.Errorf("train: %v", err)
		}
	}
	_, cols := x.Dims()
	clf, err := internal.NewClassifier(c, cols, nil)
	if err != nil {
		return nil, fmt.Errorf("train: %v", err)
	}
	upred.Log("predict: fitting %d records, %d features, classifier=%s",
		len(records), cols, c.Classifier)
	p := upred.NewPredictor(clf)
	if err := p.Train(x, y); err != nil {
		return nil, fmt.Errorf("train: %v", err)
	}
	return p, nil
}

func write(name string) upred.StreamFunc {
	return func(ctx context.Context, in <-chan upred.T, _ chan<- upred.T) error {
		fail := func(err error) error {
			return fmt.Errorf("write: %v", err)
		}
		out := os.Stdout
		if name != "" {
			f, err := os.Create(name)
			if err != nil {
				return fail(err)
			}
			defer f.Close()
			out = f
		}
		w := bufio.NewWriterSize(out, bufs)
		if _, err := fmt.Fprintln(w, "file,line,email,label,conf"); err != nil {
			return fail(err)
		}
		err := upred.EachRecord(ctx, in, func(r upred.T) error {
			pred, ok := r.Payload.(upred.Prediction)
			if !ok {
				return fmt.Errorf("record %s: missing prediction", r)
			}
			_, err := fmt.Fprintf(w, "%s,%d,%s,%g,%g\n",
				r.File, r.Line, r.Email, pred.Label, pred.Conf)
			return err
		})
		if err != nil {
			return fail(err)
		}
		if err := w.Flush(); err != nil {
			return fail(err)
		}
		return nil
	}
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

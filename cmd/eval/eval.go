package eval

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"git.sr.ht/~mkern/upred/cmd/internal"
	"git.sr.ht/~mkern/upred/pkg/upred"
	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"github.com/spf13/cobra"
)

// CMD defines the upred eval command.
var CMD = &cobra.Command{
	Use:   "eval [FILES...]",
	Short: "Evaluate prediction models",
	Run:   run,
}

var flags = struct {
	internal.Flags
	train      []string
	classifier string
	seed       int
	normalize  bool
}{}

func init() {
	flags.Init(CMD)
	CMD.Flags().StringSliceVarP(&flags.train, "train", "t", nil,
		"set the training record files")
	CMD.Flags().StringVarP(&flags.classifier, "classifier", "c", "",
		"set the classifier (overwrites the setting in the configuration file)")
	CMD.Flags().IntVarP(&flags.seed, "seed", "r", 0,
		"set the random seed for the training/test split (overwrites the setting in the configuration file)")
	CMD.Flags().BoolVarP(&flags.normalize, "normalize", "N", false,
		"normalize the feature matrices (overwrites the setting in the configuration file)")
}

func run(_ *cobra.Command, args []string) {
	c, err := flags.ReadConfig()
	chk(err)
	internal.UpdateInConfig(&c.Classifier, flags.classifier)
	internal.UpdateInConfig(&c.Seed, flags.seed)
	internal.UpdateInConfig(&c.Normalize, flags.normalize)
	fs, err := upred.NewFeatureSet(c.Features...)
	chk(err)
	ctx := context.Background()
	train, err := internal.ReadRecords(ctx, fs, flags.train, true)
	chk(err)
	// Evaluate on the given test files or split off a test set from
	// the training records.
	var test []upred.T
	if len(args) > 0 {
		test, err = internal.ReadRecords(ctx, fs, args, true)
		chk(err)
	} else {
		rng := rand.New(rand.NewSource(int64(c.Seed)))
		train, test = upred.Split(train, c.Split, rng)
	}
	chk(eval(c, fs, train, test))
}

func eval(c *internal.Config, fs upred.FeatureSet, train, test []upred.T) error {
	x, y, err := internal.Matrices(fs, train)
	if err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	xt, yt, err := internal.Matrices(fs, test)
	if err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	if c.Normalize {
		if err := ml.Normalize(x); err != nil {
			return fmt.Errorf("eval: %v", err)
		}
		if err := ml.Normalize(xt); err != nil {
			return fmt.Errorf("eval: %v", err)
		}
	}
	_, cols := x.Dims()
	clf, err := internal.NewClassifier(c, cols, nil)
	if err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	upred.Log("eval: %d training records, %d test records, %d features",
		len(train), len(test), cols)
	p := upred.NewPredictor(clf)
	if err := p.Train(x, y); err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	ps, err := p.Predict(xt)
	if err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	var s stats
	for i := 0; i < yt.Len(); i++ {
		s.add(yt.AtVec(i), ps.AtVec(i))
	}
	acc, err := p.Score(xt, yt)
	if err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	return s.print(os.Stdout, c.Classifier, acc)
}

type stats struct {
	tn, tp, fn, fp int
}

func (s *stats) add(y, p float64) {
	if y == ml.True {
		if y == p {
			s.tp++
		} else {
			s.fn++
		}
	} else {
		if y == p {
			s.tn++
		} else {
			s.fp++
		}
	}
}

func (s *stats) recall() float64 {
	if s.tp == 0 && s.fn == 0 {
		return 0
	}
	return float64(s.tp) / float64(s.tp+s.fn)
}

func (s *stats) precision() float64 {
	if s.tp == 0 && s.fp == 0 {
		return 0
	}
	return float64(s.tp) / float64(s.tp+s.fp)
}

func (s *stats) f1() float64 {
	p, r := s.precision(), s.recall()
	if p == 0 && r == 0 {
		return 0
	}
	return (2 * p * r) / (p + r)
}

func (s *stats) print(out io.Writer, typ string, ac float64) error {
	f := formater{out: out}
	f.printf("%s tp %d\n", typ, s.tp)
	f.printf("%s fp %d\n", typ, s.fp)
	f.printf("%s tn %d\n", typ, s.tn)
	f.printf("%s fn %d\n", typ, s.fn)
	f.printf("%s pr %f\n", typ, s.precision())
	f.printf("%s re %f\n", typ, s.recall())
	f.printf("%s f1 %f\n", typ, s.f1())
	f.printf("%s ac %f\n", typ, ac)
	return f.err
}

type formater struct {
	out io.Writer
	err error
}

func (f *formater) printf(format string, args ...interface{}) {
	if f.err != nil {
		return
	}
	_, err := fmt.Fprintf(f.out, format, args...)
	f.err = err
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

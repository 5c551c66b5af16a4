package upred

import (
	"context"
	"fmt"
	"strings"

	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// StreamFunc is a type def for stream functions.  A stream function
// reads records from its input channel and writes records to its
// output channel.  The first stream function in a pipe is called with
// a nil input channel; output channels are closed by the pipe after
// the according stream function has returned.
type StreamFunc func(context.Context, <-chan Record, chan<- Record) error

// Pipe connects the given stream functions with channels and runs
// them concurrently.  It returns the first error encountered by any
// of the stream functions.
func Pipe(ctx context.Context, fns ...StreamFunc) error {
	if len(fns) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	var in chan Record
	for _, fn := range fns {
		fn := fn
		fnin := in
		fnout := make(chan Record)
		g.Go(func() error {
			defer close(fnout)
			return fn(gctx, fnin, fnout)
		})
		in = fnout
	}
	g.Go(func() error {
		for range in {
		}
		return nil
	})
	return g.Wait()
}

// Combine combines multiple stream functions into one single stream
// function.
func Combine(ctx context.Context, fns ...StreamFunc) StreamFunc {
	return func(_ context.Context, in <-chan Record, out chan<- Record) error {
		g, gctx := errgroup.WithContext(ctx)
		for _, fn := range fns[:len(fns)-1] {
			fn := fn
			fnin := in
			fnout := make(chan Record)
			g.Go(func() error {
				defer close(fnout)
				return fn(gctx, fnin, fnout)
			})
			in = fnout
		}
		last, lastin := fns[len(fns)-1], in
		g.Go(func() error {
			return last(gctx, lastin, out)
		})
		return g.Wait()
	}
}

// EachRecord iterates over the records in the input channel and calls
// the callback function for each record.
func EachRecord(ctx context.Context, in <-chan Record, f func(Record) error) error {
	for {
		record, ok, err := ReadRecord(ctx, in)
		if err != nil {
			return fmt.Errorf("eachRecord: %v", err)
		}
		if !ok {
			return nil
		}
		if err := f(record); err != nil {
			return fmt.Errorf("eachRecord: %v", err)
		}
	}
}

// ReadRecord reads one record from the given channel.
func ReadRecord(ctx context.Context, in <-chan Record) (Record, bool, error) {
	select {
	case record, ok := <-in:
		if !ok {
			return record, false, nil
		}
		return record, true, nil
	case <-ctx.Done():
		return Record{}, false, fmt.Errorf("readRecord: %v", ctx.Err())
	}
}

// SendRecords writes records into the given output channel.
func SendRecords(ctx context.Context, out chan<- Record, records ...Record) error {
	for _, r := range records {
		select {
		case out <- r:
		case <-ctx.Done():
			return fmt.Errorf("sendRecords: %v", ctx.Err())
		}
	}
	return nil
}

// Normalize trims leading and trailing whitespace from the records'
// email addresses and converts them to lower case.
func Normalize(ctx context.Context, in <-chan Record, out chan<- Record) error {
	return EachRecord(ctx, in, func(r Record) error {
		r.Email = strings.ToLower(strings.TrimSpace(r.Email))
		if err := SendRecords(ctx, out, r); err != nil {
			return fmt.Errorf("normalize: %v", err)
		}
		return nil
	})
}

// FilterBad returns a stream function that filters all records from
// the stream that the given feature set does not apply to.
func FilterBad(fs FeatureSet) StreamFunc {
	return func(ctx context.Context, in <-chan Record, out chan<- Record) error {
		return EachRecord(ctx, in, func(r Record) error {
			if !fs.Applies(r) {
				return nil
			}
			if err := SendRecords(ctx, out, r); err != nil {
				return fmt.Errorf("filterBad: %v", err)
			}
			return nil
		})
	}
}

// FilterUnlabeled filters all records without a ground-truth label
// from the stream.
func FilterUnlabeled(ctx context.Context, in <-chan Record, out chan<- Record) error {
	return EachRecord(ctx, in, func(r Record) error {
		if !r.HasGT {
			return nil
		}
		if err := SendRecords(ctx, out, r); err != nil {
			return fmt.Errorf("filterUnlabeled: %v", err)
		}
		return nil
	})
}

// ConnectPredictions returns a stream function that attaches the
// predictor's predictions to the records of the stream.  The records
// are predicted in batches of the given size; batch sizes smaller
// than 1 default to 1024.  Each record's payload is set to its
// Prediction.
func ConnectPredictions(p *Predictor, fs FeatureSet, batch int, norm bool) StreamFunc {
	return func(ctx context.Context, in <-chan Record, out chan<- Record) error {
		if batch < 1 {
			batch = 1024
		}
		buf := make([]Record, 0, batch)
		err := EachRecord(ctx, in, func(r Record) error {
			if len(buf) >= batch {
				if err := connectPredictions(p, fs, norm, buf); err != nil {
					return fmt.Errorf("connectPredictions: %v", err)
				}
				if err := SendRecords(ctx, out, buf...); err != nil {
					return fmt.Errorf("connectPredictions: %v", err)
				}
				buf = buf[0:0]
			}
			buf = append(buf, r)
			return nil
		})
		if err != nil {
			return fmt.Errorf("connectPredictions: %v", err)
		}
		if len(buf) > 0 {
			if err := connectPredictions(p, fs, norm, buf); err != nil {
				return fmt.Errorf("connectPredictions: %v", err)
			}
			if err := SendRecords(ctx, out, buf...); err != nil {
				return fmt.Errorf("connectPredictions: %v", err)
			}
		}
		return nil
	}
}

func connectPredictions(p *Predictor, fs FeatureSet, norm bool, records []Record) error {
	xs := make([]float64, 0, len(records)*len(fs))
	for _, r := range records {
		xs = fs.Calculate(xs, r)
	}
	x := mat.NewDense(len(records), len(xs)/len(records), xs)
	if norm {
		if err := ml.Normalize(x); err != nil {
			return err
		}
	}
	probs, err := p.PredictProb(x)
	if err != nil {
		return err
	}
	for i := range records {
		p0, p1 := probs.At(i, 0), probs.At(i, 1)
		if p1 > p0 {
			records[i].Payload = Prediction{Label: ml.True, Conf: p1}
		} else {
			records[i].Payload = Prediction{Label: ml.False, Conf: p0}
		}
	}
	return nil
}

package internal

import (
	"context"
	"fmt"

	"git.sr.ht/~mkern/upred/pkg/upred"
	"git.sr.ht/~mkern/upred/pkg/upred/csvio"
)

type Piper struct {
	Files []string
}

func (p Piper) Pipe(ctx context.Context, fns ...upred.StreamFunc) error {
	return upred.Pipe(
		ctx,
		append([]upred.StreamFunc{csvio.Read(p.Files...)}, fns...)...,
	)
}

// Collect returns a stream function that gathers all records of the
// stream into the given slice.
func Collect(records *[]upred.T) upred.StreamFunc {
	return func(ctx context.Context, in <-chan upred.T, out chan<- upred.T) error {
		return upred.EachRecord(ctx, in, func(r upred.T) error {
			*records = append(*records, r)
			return nil
		})
	}
}

// ReadRecords reads the records from the given files, normalizes the
// email addresses and filters records that the feature set does not
// apply to.  If gt is set, records without a ground-truth label are
// filtered as well.
func ReadRecords(ctx context.Context, fs upred.FeatureSet, files []string, gt bool) ([]upred.T, error) {
	fns := []upred.StreamFunc{upred.Normalize, upred.FilterBad(fs)}
	if gt {
		fns = append(fns, upred.FilterUnlabeled)
	}
	var records []upred.T
	fns = append(fns, Collect(&records))
	if err := (Piper{Files: files}).Pipe(ctx, fns...); err != nil {
		return nil, fmt.Errorf("readRecords: %v", err)
	}
	return records, nil
}

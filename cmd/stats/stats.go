package stats

import (
	"context"
	"fmt"
	"log"
	"sort"

	"git.sr.ht/~mkern/upred/cmd/internal"
	"git.sr.ht/~mkern/upred/pkg/upred"
	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func init() {
	CMD.Flags().BoolVarP(&flags.csv, "csv", "c", false, "output csv data")
}

var flags = struct {
	csv bool
}{}

// CMD runs the upred stats command.
var CMD = &cobra.Command{
	Use:   "stats [FILES...]",
	Short: "Extract record stats",
	Run:   run,
}

func run(_ *cobra.Command, args []string) {
	var s stats
	p := internal.Piper{Files: args}
	noerr(p.Pipe(context.Background(), upred.Normalize, collect(&s)))
	if flags.csv {
		s.writeCSV()
	} else {
		s.write()
	}
}

func collect(s *stats) upred.StreamFunc {
	return func(ctx context.Context, in <-chan upred.T, _ chan<- upred.T) error {
		return upred.EachRecord(ctx, in, s.stat)
	}
}

type stats struct {
	fields                          map[string][]float64
	total, labeled, positive, valid int
}

func (s *stats) stat(r upred.T) error {
	if s.fields == nil {
		s.fields = make(map[string][]float64)
	}
	s.total++
	if r.HasGT {
		s.labeled++
		if r.Label == ml.True {
			s.positive++
		}
	}
	if valid, _ := upred.ValidEmail(r); valid == ml.True {
		s.valid++
	}
	for name, val := range r.Fields {
		s.fields[name] = append(s.fields[name], val)
	}
	return nil
}

func (s *stats) names() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *stats) write() {
	fmt.Printf("total records  = %d\n", s.total)
	fmt.Printf("├ labeled      = %d\n", s.labeled)
	fmt.Printf("│ └ positive   = %d\n", s.positive)
	fmt.Printf("├ valid emails = %d\n", s.valid)
	fmt.Printf("└ fields\n")
	names := s.names()
	for i, name := range names {
		branch := "├"
		if i == len(names)-1 {
			branch = "└"
		}
		xs := s.fields[name]
		fmt.Printf("  %s %s: n=%d min=%g max=%g mean=%g sum=%g\n",
			branch, name, len(xs), floats.Min(xs), floats.Max(xs),
			stat.Mean(xs, nil), floats.Sum(xs))
	}
}

func (s *stats) writeCSV() {
	fmt.Printf("# name,n,min,max,mean,sum\n")
	for _, name := range s.names() {
		xs := s.fields[name]
		fmt.Printf("%s,%d,%g,%g,%g,%g\n",
			name, len(xs), floats.Min(xs), floats.Max(xs),
			stat.Mean(xs, nil), floats.Sum(xs))
	}
}

func noerr(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

package csv

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"git.sr.ht/~mkern/upred/cmd/internal"
	"git.sr.ht/~mkern/upred/pkg/upred"
	"github.com/spf13/cobra"
)

// CMD defines the upred csv command.
var CMD = &cobra.Command{
	Use:   "csv [FILES...]",
	Short: "Extract training features to csv",
	Run:   run,
}

var flags = struct {
	internal.Flags
	out string
}{}

const bufs int = 64 * 1024

func init() {
	flags.Init(CMD)
	CMD.Flags().StringVarP(&flags.out, "out", "o", "out.csv", "set output file")
}

func run(_ *cobra.Command, args []string) {
	c, err := flags.ReadConfig()
	chk(err)
	fs, err := upred.NewFeatureSet(c.Features...)
	chk(err)
	p := internal.Piper{Files: args}
	chk(p.Pipe(context.Background(),
		upred.Normalize,
		upred.FilterBad(fs),
		upred.FilterUnlabeled,
		csv(fs)))
}

func csv(fs upred.FeatureSet) upred.StreamFunc {
	return func(ctx context.Context, in <-chan upred.T, _ chan<- upred.T) error {
		fail := func(err error) error {
			return fmt.Errorf("csv: %v", err)
		}

		// Open buffered output file writer.
		f, err := os.Create(flags.out)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		w := bufio.NewWriterSize(f, bufs)

		// Write feature values and ground-truth to the file.
		data := make([]float64, 0, len(fs)+1)
		err = upred.EachRecord(ctx, in, func(r upred.T) error {
			data = fs.Calculate(data, r)
			data = append(data, r.Label)
			if err := write(w, data); err != nil {
				return err
			}
			data = data[0:0]
			return nil
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

func write(w io.Writer, xs []float64) error {
	var buf []byte
	for i := range xs {
		if i != 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, xs[i], 'g', -1, 64)
	}
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

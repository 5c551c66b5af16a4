package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"git.sr.ht/~mkern/upred/pkg/upred"
	"golang.org/x/sync/errgroup"
)

// Read returns a stream function that reads activity records from the
// given CSV files and writes them into the stream.  Arguments that
// name directories are searched recursively for files with a `.csv`
// extension.  The files are read concurrently; the order of records
// from different files is unspecified.
func Read(paths ...string) upred.StreamFunc {
	return func(ctx context.Context, _ <-chan upred.T, out chan<- upred.T) error {
		if len(paths) == 0 {
			return nil
		}
		g, gctx := errgroup.WithContext(ctx)
		in := make(chan []upred.T)
		var wg sync.WaitGroup
		for _, path := range paths {
			path := path
			wg.Add(1)
			g.Go(func() error {
				defer wg.Done()
				records, err := readPath(path)
				if err != nil {
					return err
				}
				select {
				case in <- records:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		g.Go(func() error {
			wg.Wait()
			close(in)
			return nil
		})
		g.Go(func() error {
			for {
				select {
				case records, ok := <-in:
					if !ok {
						return nil
					}
					if err := upred.SendRecords(gctx, out, records...); err != nil {
						return err
					}
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
		return g.Wait()
	}
}

func readPath(path string) ([]upred.T, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("readPath %s: %v", path, err)
	}
	if !fi.IsDir() {
		return readFile(path)
	}
	// Use a dir path stack to iterate over all dirs in the tree.
	stack := []string{path}
	var records []upred.T
	for len(stack) != 0 {
		dir := stack[len(stack)-1]
		stack = stack[0 : len(stack)-1]
		fis, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("readPath %s: %v", dir, err)
		}
		for i := range fis {
			if fis[i].IsDir() {
				stack = append(stack, filepath.Join(dir, fis[i].Name()))
				continue
			}
			if !strings.HasSuffix(fis[i].Name(), ".csv") {
				continue
			}
			rs, err := readFile(filepath.Join(dir, fis[i].Name()))
			if err != nil {
				return nil, err
			}
			records = append(records, rs...)
		}
	}
	return records, nil
}

func readFile(path string) ([]upred.T, error) {
	is, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("readFile %s: %v", path, err)
	}
	defer is.Close()
	records, err := readCSV(is, path)
	if err != nil {
		return nil, fmt.Errorf("readFile %s: %v", path, err)
	}
	upred.Log("read %d records from %s", len(records), path)
	return records, nil
}

// readCSV reads records from a CSV file with a header line.  The
// columns named `email` and `label` (in any case) hold the record's
// email address and its ground-truth label; all other columns are
// read as numeric fields.  Empty cells are skipped.
func readCSV(is io.Reader, path string) ([]upred.T, error) {
	r := csv.NewReader(is)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("readCSV: %v", err)
	}
	var records []upred.T
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("readCSV: %v", err)
		}
		record, err := makeRecord(header, row)
		if err != nil {
			return nil, fmt.Errorf("readCSV line %d: %v", line, err)
		}
		record.File = path
		record.Line = line
		records = append(records, record)
	}
}

func makeRecord(header, row []string) (upred.T, error) {
	record := upred.T{Fields: make(map[string]float64)}
	for i, name := range header {
		name = strings.TrimSpace(name)
		val := strings.TrimSpace(row[i])
		switch {
		case strings.EqualFold(name, "email"):
			record.Email = val
		case strings.EqualFold(name, "label"):
			if val == "" {
				continue
			}
			label, err := strconv.ParseFloat(val, 64)
			if err != nil || (label != 0 && label != 1) {
				return upred.T{}, fmt.Errorf("bad label %q: must be 0 or 1", val)
			}
			record.Label = label
			record.HasGT = true
		default:
			if val == "" {
				continue
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return upred.T{}, fmt.Errorf("bad field %s=%q: %v", name, val, err)
			}
			record.Fields[strings.ToLower(name)] = f
		}
	}
	return record, nil
}

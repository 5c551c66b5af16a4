package csvio

import (
	"context"
	"path/filepath"
	"testing"

	"git.sr.ht/~mkern/upred/pkg/upred"
)

const testDir = "testdata/dir"

func collect(records *[]upred.T) upred.StreamFunc {
	return func(ctx context.Context, in <-chan upred.T, out chan<- upred.T) error {
		return upred.EachRecord(ctx, in, func(r upred.T) error {
			*records = append(*records, r)
			return nil
		})
	}
}

func read(t *testing.T, paths ...string) []upred.T {
	t.Helper()
	var records []upred.T
	err := upred.Pipe(context.Background(), Read(paths...), collect(&records))
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	return records
}

func TestReadFile(t *testing.T) {
	records := read(t, "testdata/records.csv")
	if len(records) != 2 {
		t.Fatalf("expected 2 records; got %d", len(records))
	}
	r := records[0]
	if r.Email != "user@example.com" {
		t.Fatalf("expected user@example.com; got %s", r.Email)
	}
	if r.Fields["clicks"] != 3 {
		t.Fatalf("expected clicks=3; got %g", r.Fields["clicks"])
	}
	if !r.HasGT || r.Label != 1 {
		t.Fatalf("expected label 1; got %g (gt=%t)", r.Label, r.HasGT)
	}
	if r.File != "testdata/records.csv" || r.Line != 2 {
		t.Fatalf("bad source: %s:%d", r.File, r.Line)
	}
	if records[1].Line != 3 || records[1].Label != 0 {
		t.Fatalf("bad record: %s", records[1])
	}
}

func TestReadDir(t *testing.T) {
	records := read(t, testDir)
	if len(records) != 4 {
		t.Fatalf("expected 4 records; got %d", len(records))
	}
	byEmail := make(map[string]upred.T)
	for _, r := range records {
		byEmail[r.Email] = r
	}
	alice, ok := byEmail["Alice@Example.COM"]
	if !ok {
		t.Fatalf("missing record for Alice@Example.COM")
	}
	if alice.File != filepath.Join(testDir, "a.csv") || alice.Line != 2 {
		t.Fatalf("bad source: %s:%d", alice.File, alice.Line)
	}
	if alice.Fields["visits"] != 7 {
		t.Fatalf("expected visits=7; got %g", alice.Fields["visits"])
	}
	// Empty cells are skipped.
	if _, ok := byEmail["bob@mail.net"].Fields["visits"]; ok {
		t.Fatalf("unexpected visits field")
	}
	if byEmail["carol@web.org"].HasGT {
		t.Fatalf("unexpected ground-truth label")
	}
	// Headers match in any case.
	dave := byEmail["dave@site.io"]
	if dave.Fields["clicks"] != 4 || !dave.HasGT || dave.Label != 0 {
		t.Fatalf("bad record: %s", dave)
	}
}

func TestReadMultiple(t *testing.T) {
	records := read(t, "testdata/records.csv", testDir)
	if len(records) != 6 {
		t.Fatalf("expected 6 records; got %d", len(records))
	}
}

func TestReadEmpty(t *testing.T) {
	if records := read(t, "testdata/empty.csv"); len(records) != 0 {
		t.Fatalf("expected 0 records; got %d", len(records))
	}
}

func TestReadErrors(t *testing.T) {
	for _, tc := range []string{
		"testdata/badlabel.csv",
		"testdata/badfield.csv",
		"testdata/nosuchfile.csv",
	} {
		t.Run(tc, func(t *testing.T) {
			var records []upred.T
			err := upred.Pipe(context.Background(), Read(tc), collect(&records))
			if err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

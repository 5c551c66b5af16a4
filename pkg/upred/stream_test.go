package upred

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"git.sr.ht/~mkern/upred/pkg/upred/ml"
	"gonum.org/v1/gonum/mat"
)

func sendrecs(rs ...Record) StreamFunc {
	return func(ctx context.Context, in <-chan Record, out chan<- Record) error {
		return SendRecords(ctx, out, rs...)
	}
}

func readrecs(rs *[]Record) StreamFunc {
	return func(ctx context.Context, in <-chan Record, out chan<- Record) error {
		return EachRecord(ctx, in, func(r Record) error {
			*rs = append(*rs, r)
			return nil
		})
	}
}

func countrecs(cnt *int) StreamFunc {
	return func(ctx context.Context, in <-chan Record, out chan<- Record) error {
		return EachRecord(ctx, in, func(_ Record) error {
			*cnt++
			return nil
		})
	}
}

func mkrecs(rs ...string) []Record {
	ret := make([]Record, len(rs))
	for i, r := range rs {
		if pos := strings.Index(r, ":"); pos != -1 {
			label, err := strconv.ParseFloat(r[pos+1:], 64)
			if err != nil {
				panic(err)
			}
			ret[i] = Record{Email: r[:pos], Label: label, HasGT: true}
		} else {
			ret[i] = Record{Email: r}
		}
	}
	return ret
}

func fmtrecs(rs ...Record) string {
	strs := make([]string, len(rs))
	for i, r := range rs {
		strs[i] = r.String()
	}
	return strings.Join(strs, " ")
}

func TestCountRecords(t *testing.T) {
	for _, tc := range []struct {
		records []Record
		want    int
	}{
		{nil, 0},
		{make([]Record, 100), 100},
		{make([]Record, 10), 10},
	} {
		t.Run(fmt.Sprintf("count %d", tc.want), func(t *testing.T) {
			var count int
			err := Pipe(context.Background(),
				sendrecs(tc.records...), countrecs(&count))
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if count != tc.want {
				t.Fatalf("expected %d; got %d", tc.want, count)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		test []Record
		want string
	}{
		{mkrecs(" A@X.Com "), "a@x.com"},
		{mkrecs("B@Y.org:1", "c@z.net"), "b@y.org c@z.net"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			var got []Record
			err := Pipe(context.Background(),
				sendrecs(tc.test...), Normalize, readrecs(&got))
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := fmtrecs(got...); got != tc.want {
				t.Fatalf("expected %s; got %s", tc.want, got)
			}
		})
	}
}

func TestFilterBad(t *testing.T) {
	fs, err := NewFeatureSet("clicks")
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	for _, tc := range []struct {
		test []Record
		want string
	}{
		{
			[]Record{
				{Email: "a@x.com", Fields: map[string]float64{"clicks": 1}},
				{Email: "b@x.com"},
			},
			"a@x.com",
		},
		{
			[]Record{
				{Email: "a@x.com"},
				{Email: "b@x.com", Fields: map[string]float64{"clicks": 2}},
				{Email: "c@x.com", Fields: map[string]float64{"clicks": 3}},
			},
			"b@x.com c@x.com",
		},
	} {
		t.Run(tc.want, func(t *testing.T) {
			var got []Record
			err := Pipe(context.Background(),
				sendrecs(tc.test...), FilterBad(fs), readrecs(&got))
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := fmtrecs(got...); got != tc.want {
				t.Fatalf("expected %s; got %s", tc.want, got)
			}
		})
	}
}

func TestFilterUnlabeled(t *testing.T) {
	for _, tc := range []struct {
		test []Record
		want string
	}{
		{mkrecs("a@x.com:1", "b@x.com"), "a@x.com"},
		{mkrecs("a@x.com", "b@x.com:0", "c@x.com:1"), "b@x.com c@x.com"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			var got []Record
			err := Pipe(context.Background(),
				sendrecs(tc.test...), FilterUnlabeled, readrecs(&got))
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := fmtrecs(got...); got != tc.want {
				t.Fatalf("expected %s; got %s", tc.want, got)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	for _, tc := range []struct {
		test []Record
		want string
	}{
		{mkrecs(" A@X.Com :1", "b@y.org", "C@Z.net:0"), "a@x.com c@z.net"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			var got []Record
			ctx := context.Background()
			err := Pipe(
				ctx,
				sendrecs(tc.test...),
				Combine(ctx, FilterUnlabeled, Normalize),
				readrecs(&got))
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := fmtrecs(got...); got != tc.want {
				t.Fatalf("expected %s; got %s", tc.want, got)
			}
		})
	}
}

func predrec(email string, x, y float64) Record {
	return Record{Email: email, Fields: map[string]float64{"x": x, "y": y}}
}

func TestConnectPredictions(t *testing.T) {
	fs, err := NewFeatureSet("x", "y")
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	x := mat.NewDense(4, 2, []float64{2, 1, 1, 2, 3, 1, 1, 3})
	y := mat.NewVecDense(4, []float64{0, 1, 0, 1})
	p := NewPredictor(&ml.LR{LearningRate: 0.1, Ntrain: 100})
	if err := p.Train(x, y); err != nil {
		t.Fatalf("got error: %v", err)
	}
	records := []Record{
		predrec("a@x.com", 2, 1),
		predrec("b@x.com", 1, 2),
		predrec("c@x.com", 4, 1),
		predrec("d@x.com", 1, 4),
		predrec("e@x.com", 5, 1),
	}
	var got []Record
	err = Pipe(context.Background(),
		sendrecs(records...),
		ConnectPredictions(p, fs, 2, false),
		readrecs(&got))
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if want := "a@x.com b@x.com c@x.com d@x.com e@x.com"; fmtrecs(got...) != want {
		t.Fatalf("expected %s; got %s", want, fmtrecs(got...))
	}
	want := []float64{0, 1, 0, 1, 0}
	for i, r := range got {
		pred, ok := r.Payload.(Prediction)
		if !ok {
			t.Fatalf("record %s: missing prediction", r)
		}
		if pred.Label != want[i] {
			t.Fatalf("record %s: expected label %g; got %g", r, want[i], pred.Label)
		}
		if pred.Conf < 0.5 || pred.Conf > 1 {
			t.Fatalf("record %s: bad confidence %g", r, pred.Conf)
		}
	}
}

func TestConnectPredictionsUntrained(t *testing.T) {
	fs, err := NewFeatureSet("x", "y")
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	p := NewPredictor(&ml.LR{LearningRate: 0.1, Ntrain: 100})
	err = Pipe(context.Background(),
		sendrecs(predrec("a@x.com", 2, 1)),
		ConnectPredictions(p, fs, 0, false),
		readrecs(&[]Record{}))
	if err == nil {
		t.Fatalf("expected an error")
	}
}

package paginate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/pagewave/pagewave/internal/testutil"
	"github.com/pagewave/pagewave/pkg/batch"
	"github.com/rs/zerolog"
)

// offsetFetcher answers descriptors offset-style and records waves,
// declaring the dataset's total under the "max_line" field.
type offsetFetcher struct {
	waves [][]batch.Descriptor
	items []string
}

func (f *offsetFetcher) Wave(ctx context.Context, wave []batch.Descriptor) ([]batch.Outcome, error) {
	f.waves = append(f.waves, wave)
	outcomes := make([]batch.Outcome, len(wave))
	for i, d := range wave {
		start, _ := strconv.Atoi(paramValue(d.Params, "start"))
		size, _ := strconv.Atoi(paramValue(d.Params, "limit"))
		end := start + size
		if start > len(f.items) {
			start = len(f.items)
		}
		if end > len(f.items) {
			end = len(f.items)
		}
		body := fmt.Sprintf(`{"lines": [%s], "max_line": %d}`,
			strings.Join(f.items[start:end], ","), len(f.items))
		outcomes[i] = batch.Outcome{Result: batch.Result{
			Descriptor: d,
			Status:     200,
			Output:     []byte(body),
		}}
	}
	return outcomes, nil
}

func TestBounded_ComputesExactOffsets(t *testing.T) {
	fetcher := &offsetFetcher{items: quoted(10)}
	pager := NewBounded(fetcher, BoundedConfig{
		StartParam: "start",
		SizeParam:  "limit",
		PageSize:   3,
		TotalField: "max_line",
	}, zerolog.Nop())

	seed := batch.Descriptor{URL: "https://api.example.com/log", ArrayName: "lines"}
	var results []batch.Result
	if err := pager.Run(context.Background(), seed, collect(&results)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(fetcher.waves) != 2 {
		t.Fatalf("got %d waves, want probe plus one remaining wave", len(fetcher.waves))
	}

	// Probe at offset 0 returns 3 of 10 elements; the remaining span
	// is exactly {3, 6, 9}.
	var offsets []string
	for _, d := range fetcher.waves[1] {
		offsets = append(offsets, paramValue(d.Params, "start"))
	}
	want := []string{"3", "6", "9"}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offset %d = %s, want %s", i, offsets[i], want[i])
		}
	}

	if len(results) != 4 {
		t.Errorf("emitted %d results, want 4", len(results))
	}
}

func TestBounded_NoRemainingWaveWhenProbeCoversAll(t *testing.T) {
	fetcher := &offsetFetcher{items: quoted(3)}
	pager := NewBounded(fetcher, BoundedConfig{PageSize: 10, TotalField: "max_line"}, zerolog.Nop())

	seed := batch.Descriptor{URL: "https://api.example.com/log", ArrayName: "lines"}
	var results []batch.Result
	if err := pager.Run(context.Background(), seed, collect(&results)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(fetcher.waves) != 1 {
		t.Errorf("probe covering the whole resource should issue no second wave, got %d waves", len(fetcher.waves))
	}
	if len(results) != 1 {
		t.Errorf("emitted %d results, want 1", len(results))
	}
}

func TestBounded_MissingTotalField(t *testing.T) {
	fetcher := &fakeFetcher{items: quoted(5)}
	pager := NewBounded(fetcher, BoundedConfig{PageSize: 2, TotalField: "max_line"}, zerolog.Nop())

	// fakeFetcher answers bare arrays with no total field.
	err := pager.Run(context.Background(), batch.Descriptor{URL: "https://api.example.com/log"}, func(batch.Result) error { return nil })
	if err == nil {
		t.Fatal("a response without the declared-total field must fail the run")
	}
	if !strings.Contains(err.Error(), "max_line") {
		t.Errorf("error should name the missing field: %v", err)
	}
}

func TestBounded_ProbeServerError(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResource("/log", testutil.PagedResource{
		Items:      []string{`"l0"`},
		ArrayName:  "lines",
		TotalField: "max_line",
		StartParam: "start",
		FailAt:     map[int]int{0: 503},
	})

	exec := batch.New(batch.DefaultConfig(), zerolog.Nop())
	pager := NewBounded(exec, DefaultBoundedConfig(), zerolog.Nop())

	err := pager.Run(context.Background(), batch.Descriptor{URL: mock.URL() + "/log", ArrayName: "lines"}, func(batch.Result) error { return nil })
	if err == nil {
		t.Fatal("probe server error must fail the run")
	}
	se := batch.AsStatusError(err)
	if se == nil || se.Status != 503 {
		t.Errorf("error should carry the 503, got %v", err)
	}
}

func TestBounded_EndToEnd(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	items := make([]string, 10)
	for i := range items {
		items[i] = fmt.Sprintf(`"line-%d"`, i)
	}
	mock.SetResource("/log", testutil.PagedResource{
		Items:      items,
		ArrayName:  "lines",
		TotalField: "max_line",
		StartParam: "start",
	})

	exec := batch.New(batch.DefaultConfig(), zerolog.Nop())
	pager := NewBounded(exec, BoundedConfig{
		StartParam: "start",
		SizeParam:  "limit",
		PageSize:   3,
		TotalField: "max_line",
	}, zerolog.Nop())

	seed := batch.Descriptor{URL: mock.URL() + "/log", ArrayName: "lines"}
	var results []batch.Result
	if err := pager.Run(context.Background(), seed, collect(&results)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if mock.RequestCount != 4 {
		t.Errorf("physical requests = %d, want 4 (probe + 3 offsets)", mock.RequestCount)
	}

	starts := mock.PagesRequested("/log", "start")
	want := []string{"0", "3", "6", "9"}
	if len(starts) != len(want) {
		t.Fatalf("starts = %v, want %v", starts, want)
	}
	seen := map[string]bool{}
	for _, s := range starts {
		if seen[s] {
			t.Errorf("offset %s requested twice", s)
		}
		seen[s] = true
	}
	for _, w := range want {
		if !seen[w] {
			t.Errorf("offset %s never requested", w)
		}
	}

	total := 0
	for _, res := range results {
		count, err := elementCount(res.Output, "lines")
		if err != nil {
			t.Fatalf("result unparseable: %v", err)
		}
		total += count
	}
	if total != 10 {
		t.Errorf("total elements fetched = %d, want 10", total)
	}
}

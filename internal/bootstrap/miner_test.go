package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dspygo/optimizer/internal/primitives"
)

type fakeTeacher struct {
	outputs map[string]map[string]interface{}
	fail    map[string]bool
	delay   time.Duration
}

func (f *fakeTeacher) Forward(ctx context.Context, inputs map[string]interface{}) (*primitives.Prediction, error) {
	key, _ := inputs["id"].(string)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail[key] {
		return nil, errors.New("teacher unavailable")
	}
	out, ok := f.outputs[key]
	if !ok {
		return nil, errors.New("no output configured")
	}
	return primitives.NewPrediction(out), nil
}

func (f *fakeTeacher) Copy() primitives.Program { return f }

func exactMatchMetric(example *primitives.Example, prediction *primitives.Prediction) float64 {
	for field, want := range example.Outputs() {
		got, ok := prediction.Get(field)
		if !ok || got != want {
			return 0.0
		}
	}
	return 1.0
}

func newExample(id string, answer interface{}) *primitives.Example {
	return primitives.NewExample(
		map[string]interface{}{"id": id},
		map[string]interface{}{"answer": answer},
	)
}

func TestMine_KeepsOnlyDemosAboveThreshold(t *testing.T) {
	teacher := &fakeTeacher{outputs: map[string]map[string]interface{}{
		"a": {"answer": "wrong"},
		"b": {"answer": "right"},
		"c": {"answer": "right"},
	}}
	trainset := []*primitives.Example{
		newExample("a", "right"),
		newExample("b", "right"),
		newExample("c", "right"),
	}

	opts := DefaultOptions()
	opts.QualityThreshold = 0.5
	demos := Mine(context.Background(), teacher, trainset, exactMatchMetric, opts)

	if len(demos) != 2 {
		t.Fatalf("expected 2 demos above threshold, got %d", len(demos))
	}
	for _, d := range demos {
		if d.QualityScore() != 1.0 {
			t.Errorf("expected quality 1.0, got %v", d.QualityScore())
		}
	}
}

func TestMine_DropsFailuresWithoutError(t *testing.T) {
	teacher := &fakeTeacher{
		outputs: map[string]map[string]interface{}{"a": {"answer": "right"}},
		fail:    map[string]bool{"b": true},
	}
	trainset := []*primitives.Example{newExample("a", "right"), newExample("b", "right")}

	demos := Mine(context.Background(), teacher, trainset, exactMatchMetric, DefaultOptions())
	if len(demos) != 1 {
		t.Fatalf("expected 1 demo, got %d", len(demos))
	}
}

func TestMine_AllFailuresReturnsEmptyPool(t *testing.T) {
	teacher := &fakeTeacher{fail: map[string]bool{"a": true, "b": true}}
	trainset := []*primitives.Example{newExample("a", "x"), newExample("b", "y")}

	demos := Mine(context.Background(), teacher, trainset, exactMatchMetric, DefaultOptions())
	if demos == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(demos) != 0 {
		t.Fatalf("expected empty pool, got %d", len(demos))
	}
}

func TestMine_MalformedOutputTreatedAsZeroQuality(t *testing.T) {
	teacher := &fakeTeacher{outputs: map[string]map[string]interface{}{
		"a": {"wrong_field": "x"},
	}}
	trainset := []*primitives.Example{newExample("a", "right")}

	opts := DefaultOptions()
	opts.QualityThreshold = 0.0
	demos := Mine(context.Background(), teacher, trainset, exactMatchMetric, opts)
	if len(demos) != 0 {
		t.Fatalf("expected missing output field to be discarded, got %d demos", len(demos))
	}
}

func TestMine_RespectsMaxDemos(t *testing.T) {
	teacher := &fakeTeacher{outputs: map[string]map[string]interface{}{
		"a": {"answer": "right"},
		"b": {"answer": "right"},
		"c": {"answer": "right"},
	}}
	trainset := []*primitives.Example{
		newExample("a", "right"),
		newExample("b", "right"),
		newExample("c", "right"),
	}

	opts := DefaultOptions()
	opts.MaxDemos = 2
	demos := Mine(context.Background(), teacher, trainset, exactMatchMetric, opts)
	if len(demos) != 2 {
		t.Fatalf("expected max_demos to cap pool at 2, got %d", len(demos))
	}
}

func TestMine_PerExampleTimeout(t *testing.T) {
	teacher := &fakeTeacher{
		outputs: map[string]map[string]interface{}{"a": {"answer": "right"}},
		delay:   50 * time.Millisecond,
	}
	trainset := []*primitives.Example{newExample("a", "right")}

	opts := DefaultOptions()
	opts.PerExampleTimeout = 5 * time.Millisecond
	demos := Mine(context.Background(), teacher, trainset, exactMatchMetric, opts)
	if len(demos) != 0 {
		t.Fatalf("expected timeout to drop the example, got %d demos", len(demos))
	}
}

package netvalue

import "testing"

func TestConstantEvaluatorReturnsSameValue(t *testing.T) {
	ev := ConstantEvaluator{Value: 0.7}
	batch := [][]float32{{1, 2}, {3, 4}, {5, 6}}
	out, err := ev.Evaluate(batch)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(batch) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(batch))
	}
	for i, v := range out {
		if v != 0.7 {
			t.Errorf("out[%d] = %v, want 0.7", i, v)
		}
	}
}

func TestMaterialHeuristicEvaluatorBounded(t *testing.T) {
	ev := MaterialHeuristicEvaluator{}
	batch := [][]float32{
		{0, 0, 0},
		{100, 100, 100},
		{-100, -50, -1},
	}
	out, err := ev.Evaluate(batch)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v <= -1 || v >= 1 {
			t.Errorf("out[%d] = %v, want strictly within (-1, 1)", i, v)
		}
	}
	if out[0] != 0 {
		t.Errorf("all-zero row should evaluate to 0, got %v", out[0])
	}
	if out[1] <= 0 {
		t.Errorf("positive-weighted row should evaluate positive, got %v", out[1])
	}
	if out[2] >= 0 {
		t.Errorf("negative-weighted row should evaluate negative, got %v", out[2])
	}
}

func TestFlattenRows(t *testing.T) {
	rows := [][]float32{{1, 2}, {3, 4}}
	flat := FlattenRows(rows)
	want := []float32{1, 2, 3, 4}
	if len(flat) != len(want) {
		t.Fatalf("len(flat) = %d, want %d", len(flat), len(want))
	}
	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("flat[%d] = %v, want %v", i, flat[i], want[i])
		}
	}
}

func TestFlattenRowsEmpty(t *testing.T) {
	if got := FlattenRows(nil); got != nil {
		t.Errorf("FlattenRows(nil) = %v, want nil", got)
	}
}

func TestFlattenRowsPanicsOnRaggedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on ragged rows")
		}
	}()
	FlattenRows([][]float32{{1, 2}, {3}})
}

package value

import (
	"context"
	"errors"
	"testing"
)

func drain(t *testing.T, it AsyncIterable) ([]any, any, error) {
	t.Helper()
	var items []any
	for {
		res, err := it.Next(context.Background())
		if err != nil {
			return items, nil, err
		}
		if res.Done {
			return items, res.Value, nil
		}
		items = append(items, res.Value)
	}
}

func TestStream(t *testing.T) {
	s := NewStream()
	s.Push("a")
	s.Push("b")
	if got := s.Buffered(); len(got) != 2 {
		t.Fatalf("Buffered() = %v", got)
	}
	s.Close("ret")
	if s.Push("late") {
		t.Error("Push after Close should fail")
	}

	items, ret, err := drain(t, s)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Errorf("items = %v", items)
	}
	if ret != "ret" {
		t.Errorf("return = %v", ret)
	}
}

func TestStream_Fail(t *testing.T) {
	s := NewStream()
	s.Push(1)
	s.Fail("broken")

	items, _, err := drain(t, s)
	if len(items) != 1 {
		t.Errorf("buffered items should be delivered first, got %v", items)
	}
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Reason != "broken" {
		t.Errorf("err = %v", err)
	}
}

func TestStream_WaitsForPush(t *testing.T) {
	s := NewStream()
	got := make(chan any)
	go func() {
		res, _ := s.Next(context.Background())
		got <- res.Value
	}()
	s.Push("x")
	if v := <-got; v != "x" {
		t.Errorf("Next = %v", v)
	}
}

func TestStream_NextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStream().Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestGenerator(t *testing.T) {
	started := false
	g := Generate(func(ctx context.Context, yield func(any) error) (any, error) {
		started = true
		for _, v := range []any{"one", Resolved("two"), "three"} {
			if err := yield(v); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if started {
		t.Fatal("generator should not start before Next")
	}

	items, ret, err := drain(t, g)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(items) != 3 || items[1] != "two" {
		t.Errorf("items = %v", items)
	}
	if ret != Undefined {
		t.Errorf("return = %v, want undefined", ret)
	}

	res, err := g.Next(context.Background())
	if err != nil || !res.Done {
		t.Error("finished generator should keep reporting done")
	}
}

func TestGenerator_Throw(t *testing.T) {
	g := Generate(func(ctx context.Context, yield func(any) error) (any, error) {
		if err := yield(1); err != nil {
			return nil, err
		}
		return nil, NewError("Error", "midway")
	})
	items, _, err := drain(t, g)
	if len(items) != 1 {
		t.Errorf("items = %v", items)
	}
	e, ok := ReasonOf(err).(*Error)
	if !ok || e.Message != "midway" {
		t.Errorf("err = %v", err)
	}
}

func TestGenerator_YieldRejectedPromise(t *testing.T) {
	g := Generate(func(ctx context.Context, yield func(any) error) (any, error) {
		return nil, yield(Rejected("nope"))
	})
	_, _, err := drain(t, g)
	if ReasonOf(err) != "nope" {
		t.Errorf("err = %v", err)
	}
}

package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

func TestRecordAndGet(t *testing.T) {
	s := New(10)

	ok := s.Record("api", "{1} + {1}", "{2}", nil)
	if ok.State != EvaluationSucceeded || ok.Result != "{2}" || ok.Error != nil {
		t.Errorf("unexpected success record: %+v", ok)
	}
	if ok.ID == "" {
		t.Error("expected an id")
	}

	failed := s.Record("api", "{1} / {0}", "", types.NewArithmeticError("could not divide"))
	if failed.State != EvaluationFailed {
		t.Errorf("expected FAILED, got %s", failed.State)
	}
	if failed.Error.Kind != types.KindArithmeticError || failed.Error.Position != nil {
		t.Errorf("unexpected error record: %+v", failed.Error)
	}

	got, err := s.Get(ok.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != ok {
		t.Errorf("get returned a different record")
	}

	if _, err := s.Get("missing"); err == nil {
		t.Error("expected not found error")
	}
}

func TestRecordKeepsPosition(t *testing.T) {
	s := New(1)
	ev := s.Record("api", "{1", "", types.NewTokenizeError("unterminated", 0))
	if ev.Error.Position == nil || *ev.Error.Position != 0 {
		t.Errorf("expected position 0, got %+v", ev.Error)
	}

	ev = s.Record("api", "x", "", errors.New("plain"))
	if ev.Error.Kind != "" || ev.Error.Position != nil {
		t.Errorf("expected a bare error, got %+v", ev.Error)
	}
}

func TestListNewestFirstAndEviction(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.Record("cli", fmt.Sprintf("{%d}", i), fmt.Sprintf("{%d}", i), nil)
	}

	if s.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", s.Len())
	}

	all := s.List(0)
	want := []string{"{4}", "{3}", "{2}"}
	for i, ev := range all {
		if ev.Expression != want[i] {
			t.Errorf("record %d: got %s, want %s", i, ev.Expression, want[i])
		}
	}

	if got := s.List(2); len(got) != 2 || got[0].Expression != "{4}" {
		t.Errorf("limited list: got %d records", len(got))
	}
}

func TestDefaultCapacity(t *testing.T) {
	s := New(0)
	for i := 0; i < DefaultCapacity+1; i++ {
		s.Record("cli", "{1}", "{1}", nil)
	}
	if s.Len() != DefaultCapacity {
		t.Errorf("expected %d records, got %d", DefaultCapacity, s.Len())
	}
}

func TestConcurrentRecord(t *testing.T) {
	s := New(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.Record("api", "{1}", "{1}", nil)
				s.List(5)
			}
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Errorf("expected 50 records, got %d", s.Len())
	}
}

package stream

import (
	"fmt"
	"testing"
)

type outcome struct {
	seq uint64
	ok  bool
	val int
	msg string
}

func apply(s *State[int], o outcome) bool {
	if o.ok {
		return s.ResolveSuccess(o.seq, o.val)
	}
	return s.ResolveFailure(o.seq, o.msg)
}

func permutations(in []outcome) [][]outcome {
	if len(in) <= 1 {
		return [][]outcome{append([]outcome(nil), in...)}
	}
	var out [][]outcome
	for i := range in {
		rest := make([]outcome, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]outcome{in[i]}, p...))
		}
	}
	return out
}

func TestState_InitialLifecycle(t *testing.T) {
	s := New[int]()
	if s.Phase() != PhaseNeverLoaded {
		t.Fatalf("phase=%s", s.Phase())
	}
	if v := s.View(); v.Display != DisplayLoading || v.HasData() {
		t.Fatalf("unexpected view before dispatch: %+v", v)
	}

	if !s.Dispatch(1) {
		t.Fatalf("first dispatch rejected")
	}
	if s.Phase() != PhaseInitialLoading {
		t.Fatalf("phase=%s, want INITIAL_LOADING", s.Phase())
	}
	if !s.ResolveSuccess(1, 42) {
		t.Fatalf("current response not applied")
	}
	v := s.View()
	if v.Phase != PhaseReady || v.Data == nil || *v.Data != 42 || v.Error != "" || v.Display != DisplayContent {
		t.Fatalf("unexpected view: %+v", v)
	}

	s.Dispatch(2)
	if s.Phase() != PhaseRefreshing {
		t.Fatalf("phase=%s, want REFRESHING", s.Phase())
	}
}

func TestState_FirstFailureIsHard(t *testing.T) {
	s := New[int]()
	s.Dispatch(1)
	if !s.ResolveFailure(1, "failed to fetch status") {
		t.Fatalf("failure not applied")
	}
	v := s.View()
	if v.Phase != PhaseFailed || v.Error != "failed to fetch status" || v.HasData() || v.Display != DisplayError {
		t.Fatalf("unexpected view: %+v", v)
	}

	// the next tick does not re-show the loading indicator
	s.Dispatch(2)
	if s.Phase() != PhaseFailed || s.View().Display != DisplayError {
		t.Fatalf("retry after hard failure went to %s", s.Phase())
	}
	s.ResolveSuccess(2, 5)
	if v := s.View(); v.Phase != PhaseReady || v.Error != "" || *v.Data != 5 {
		t.Fatalf("recovery not applied: %+v", v)
	}
}

func TestState_LaterFailureKeepsData(t *testing.T) {
	s := New[int]()
	s.Dispatch(1)
	s.ResolveSuccess(1, 10)

	for seq := uint64(2); seq < 6; seq++ {
		s.Dispatch(seq)
		s.ResolveFailure(seq, "boom")
		v := s.View()
		if v.Data == nil || *v.Data != 10 {
			t.Fatalf("seq %d: data cleared: %+v", seq, v)
		}
		if v.Phase != PhaseReady || v.Banner() != "boom" || v.Display != DisplayContent {
			t.Fatalf("seq %d: unexpected view: %+v", seq, v)
		}
		if v.Phase == PhaseInitialLoading {
			t.Fatalf("regressed to INITIAL_LOADING")
		}
	}
}

func TestState_EmptyFailureMessageIsFilled(t *testing.T) {
	s := New[int]()
	s.Dispatch(1)
	s.ResolveFailure(1, "")
	if s.View().Error == "" {
		t.Fatalf("FAILED without error message")
	}
}

func TestState_StaleResponsesLeaveStateUntouched(t *testing.T) {
	s := New[int]()
	s.Dispatch(1)
	s.ResolveSuccess(1, 1)
	s.Dispatch(2)
	s.Dispatch(3)

	before := s.View()
	if s.ResolveSuccess(2, 222) {
		t.Fatalf("stale success applied")
	}
	if s.ResolveFailure(2, "late") {
		t.Fatalf("stale failure applied")
	}
	if s.ResolveSuccess(4, 444) {
		t.Fatalf("response for an undispatched seq applied")
	}
	after := s.View()
	if *after.Data != *before.Data || after.Phase != before.Phase || after.Error != before.Error {
		t.Fatalf("stale response changed state: before=%+v after=%+v", before, after)
	}
	if s.Discarded() != 3 {
		t.Fatalf("discarded=%d, want 3", s.Discarded())
	}

	if !s.ResolveSuccess(3, 333) {
		t.Fatalf("current response rejected")
	}
	if s.ResolveSuccess(3, 999) {
		t.Fatalf("duplicate resolution applied")
	}
	if *s.View().Data != 333 {
		t.Fatalf("data=%d", *s.View().Data)
	}
}

func TestState_DispatchRejectsNonIncreasingSeq(t *testing.T) {
	s := New[int]()
	s.Dispatch(5)
	if s.Dispatch(5) || s.Dispatch(4) {
		t.Fatalf("non-increasing seq accepted")
	}
	if s.LastRequestSeq() != 5 {
		t.Fatalf("lastSeq=%d", s.LastRequestSeq())
	}
}

func TestState_ArrivalOrderDoesNotMatter(t *testing.T) {
	scenarios := [][]outcome{
		{{1, true, 10, ""}, {2, true, 20, ""}, {3, true, 30, ""}},
		{{1, true, 10, ""}, {2, false, 0, "e2"}, {3, false, 0, "e3"}},
		{{1, false, 0, "e1"}, {2, true, 20, ""}, {3, true, 30, ""}, {4, false, 0, "e4"}},
	}
	for i, sc := range scenarios {
		t.Run(fmt.Sprintf("scenario_%d", i), func(t *testing.T) {
			run := func(order []outcome) View[int] {
				s := New[int]()
				s.Dispatch(100)
				s.ResolveSuccess(100, 7) // prior data
				for _, o := range sc {
					s.Dispatch(100 + o.seq)
				}
				for _, o := range order {
					apply(s, outcome{seq: 100 + o.seq, ok: o.ok, val: o.val, msg: o.msg})
				}
				return s.View()
			}
			want := run(sc)
			for _, p := range permutations(sc) {
				got := run(p)
				if got.Phase != want.Phase || got.Error != want.Error || *got.Data != *want.Data {
					t.Fatalf("order %v: got %+v (data %d), want %+v (data %d)", p, got, *got.Data, want, *want.Data)
				}
			}
		})
	}
}

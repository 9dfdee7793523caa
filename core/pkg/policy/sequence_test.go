package policy

import "testing"

func TestSequenceState_Before(t *testing.T) {
	rules := []SequenceRule{{Kind: SequenceBefore, First: "auth.login", Then: "fs.write"}}
	s := NewSequenceState()

	if v := s.CheckCall("fs.write", rules); v == nil {
		t.Fatal("expected violation: fs.write before auth.login")
	}

	s.RecordCall("auth.login")
	if v := s.CheckCall("fs.write", rules); v != nil {
		t.Fatalf("expected no violation after auth.login, got %v", v)
	}
}

func TestSequenceState_MaxCalls(t *testing.T) {
	rules := []SequenceRule{{Kind: SequenceMaxCalls, Tool: "net.connect", Max: 2}}
	s := NewSequenceState()

	s.RecordCall("net.connect")
	s.RecordCall("net.connect")

	if v := s.CheckCall("net.connect", rules); v == nil {
		t.Fatal("expected max_calls violation on third call")
	}
}

func TestSequenceState_NotAfter(t *testing.T) {
	rules := []SequenceRule{{Kind: SequenceNotAfter, Forbidden: "fs.delete", After: "audit.flush"}}
	s := NewSequenceState()

	s.RecordCall("audit.flush")
	if v := s.CheckCall("fs.delete", rules); v == nil {
		t.Fatal("expected not_after violation")
	}
}

func TestSequenceState_MustCallBeforeEnd(t *testing.T) {
	rules := []SequenceRule{{Kind: SequenceMustCallBeforeEnd, Tool: "audit.flush"}}
	s := NewSequenceState()

	if violations := s.CheckEpisodeEnd(rules); len(violations) != 1 {
		t.Fatalf("expected one unmet must_call_before_end violation, got %d", len(violations))
	}

	s.RecordCall("audit.flush")
	if violations := s.CheckEpisodeEnd(rules); len(violations) != 0 {
		t.Fatalf("expected no violations after audit.flush, got %d", len(violations))
	}
}

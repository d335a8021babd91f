package model

import "testing"

// TestStateString tests the String method of State.
func TestStateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateParsing, "parsing"},
		{StateFiltering, "filtering"},
		{StateProjectingMetadata, "projecting-metadata"},
		{StateAssembling, "assembling"},
		{StateSerialized, "serialized"},
		{StateFailed, "failed"},
		{State(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.state.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.state.String(), tc.expected)
			}
		})
	}
}

// TestStateTerminal tests which states end a crawl.
func TestStateTerminal(t *testing.T) {
	t.Parallel()

	for s := StateIdle; s <= StateFailed; s++ {
		want := s == StateSerialized || s == StateFailed
		if s.Terminal() != want {
			t.Errorf("%s: expected Terminal() == %v", s, want)
		}
	}
}

// TestStages tests stage order and the state each stage runs in.
func TestStages(t *testing.T) {
	t.Parallel()

	stages := Stages()
	expected := []struct {
		stage Stage
		state State
	}{
		{StageParse, StateParsing},
		{StageFilter, StateFiltering},
		{StageMetadata, StateProjectingMetadata},
		{StageAssembly, StateAssembling},
		{StageSerialize, StateAssembling},
	}

	if len(stages) != len(expected) {
		t.Fatalf("expected %d stages, got %d", len(expected), len(stages))
	}
	for i, tc := range expected {
		if stages[i] != tc.stage {
			t.Errorf("stage %d: got %q, expected %q", i, stages[i], tc.stage)
		}
		if got := tc.stage.State(); got != tc.state {
			t.Errorf("%s: got state %s, expected %s", tc.stage, got, tc.state)
		}
	}

	if got := Stage("bogus").State(); got != StateIdle {
		t.Errorf("unknown stage: got state %s, expected idle", got)
	}
}

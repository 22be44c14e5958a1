package engine

import "testing"

func TestTransition_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from SpinnerState
		to   SpinnerState
	}{
		{"Idle→Generating", StateIdle, StateGenerating},
		{"Idle→Idle", StateIdle, StateIdle},
		{"Generating→Validating", StateGenerating, StateValidating},
		{"Generating→Error", StateGenerating, StateError},
		{"Validating→Generating", StateValidating, StateGenerating},
		{"Validating→Completion", StateValidating, StateCompletion},
		{"Validating→Error", StateValidating, StateError},
		{"Completion→Error", StateCompletion, StateError},
		{"Completion→Idle", StateCompletion, StateIdle},
		{"Error→Idle", StateError, StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Transition(tt.from, tt.to); err != nil {
				t.Errorf("expected valid transition %s → %s, got error: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestTransition_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from SpinnerState
		to   SpinnerState
	}{
		{"Idle→Validating", StateIdle, StateValidating},
		{"Idle→Completion", StateIdle, StateCompletion},
		{"Generating→Completion", StateGenerating, StateCompletion},
		{"Generating→Generating", StateGenerating, StateGenerating},
		{"Validating→Validating", StateValidating, StateValidating},
		{"Completion→Generating", StateCompletion, StateGenerating},
		{"Error→Generating", StateError, StateGenerating},
		{"Error→Completion", StateError, StateCompletion},
		{"Unknown→Idle", SpinnerState(42), StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Transition(tt.from, tt.to); err == nil {
				t.Errorf("expected error for invalid transition %s → %s, got nil", tt.from, tt.to)
			}
		})
	}
}

func TestSpinnerState_String(t *testing.T) {
	tests := []struct {
		state SpinnerState
		want  string
	}{
		{StateIdle, "Idle"},
		{StateGenerating, "Generating"},
		{StateValidating, "Validating"},
		{StateCompletion, "Completion"},
		{StateError, "Error"},
		{SpinnerState(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("SpinnerState(%d).String() = %q, want %q", int(tt.state), got, tt.want)
			}
		})
	}
}

package types

import "testing"

func TestLoadStateString(t *testing.T) {
	tests := []struct {
		state LoadState
		want  string
	}{
		{StateUnloaded, "Unloaded"},
		{StateMasterLoaded, "MasterLoaded"},
		{StateBlocksLoaded, "BlocksLoaded"},
		{StateFinalized, "Finalized"},
		{StateFailed, "Failed"},
		{StateClosed, "Closed"},
		{LoadState(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("LoadState.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

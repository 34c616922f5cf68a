//go:build !windows

package drain

import "testing"

func TestStartRetrieveReturnsEmptyOutputs(t *testing.T) {
	d := Start(nil, nil)
	outputs := d.Retrieve()
	if outputs.Stdout != nil || outputs.Stderr != nil {
		t.Errorf("Retrieve() = %+v, want zero value", outputs)
	}
}

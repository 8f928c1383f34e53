// Package test holds assertion helpers shared by the mediatime tests.
package test

import (
	"errors"
	"strings"
	"testing"
)

// AssertWantErr checks err against the wantErr substring from a test
// table. An empty wantErr means no error is expected. It returns true
// when the table row is finished, i.e. an error occurred or one was
// missing.
func AssertWantErr(err error, wantErr, caller string, t *testing.T) bool {
	t.Helper()
	if err != nil {
		if wantErr == "" || !strings.Contains(err.Error(), wantErr) {
			t.Errorf("%s error = %v, wantErr %q", caller, err, wantErr)
		}

		return true
	} else if wantErr != "" {
		t.Errorf("%s expected error %q, did not receive an error", caller, wantErr)
		return true
	}

	return false
}

// AssertErrIs checks that err wraps the sentinel want, or that both
// are nil.
func AssertErrIs(err, want error, caller string, t *testing.T) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Errorf("%s unexpected error: %v", caller, err)
		}
		return
	}
	if !errors.Is(err, want) {
		t.Errorf("%s error = %v, want errors.Is(err, %v)", caller, err, want)
	}
}

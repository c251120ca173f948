package testutil

import (
	"os"
	"testing"
)

// Chdir changes the working directory to dir for the duration of the test,
// restoring the previous directory during cleanup. It mirrors testing.T.Chdir
// (Go 1.24) for older toolchains; like it, it must not be used in parallel tests.
func Chdir(t testing.TB, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

package buildinfo

import (
	"strings"
	"testing"
)

func TestCurrent_UsesInjectedValues(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-10-18"
	got := Current()
	if got.Version != "v1.2.3" || got.Commit != "abc123" || got.Date != "2026-10-18" {
		t.Fatalf("unexpected info %+v", got)
	}
	if !strings.Contains(got.GoVersion, "go") {
		t.Fatalf("unexpected go version %q", got.GoVersion)
	}
}

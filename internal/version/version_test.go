package version

import (
	"strings"
	"testing"
)

func TestStringContainsBuildMetadata(t *testing.T) {
	banner := String()
	for _, part := range []string{"fxpipeline", Version, Commit, BuildDate, "go1"} {
		if !strings.Contains(banner, part) {
			t.Fatalf("banner %q missing %q", banner, part)
		}
	}
}

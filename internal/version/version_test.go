package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvedPrefersLdflags(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", Resolved())
	assert.Equal(t, "mdpo v1.2.3", Generator())
}

func TestString(t *testing.T) {
	s := String()
	assert.True(t, strings.HasPrefix(s, "mdpo "))
	assert.Contains(t, s, "commit "+GitCommit)
	assert.Contains(t, s, "built "+BuildTime)
}

func TestBuildInfoInitialized(t *testing.T) {
	assert.NotEmpty(t, BuildTime)
	assert.NotEmpty(t, GitCommit)
	assert.NotEmpty(t, Resolved())
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["apply"])
	assert.True(t, names["validate"])
	assert.True(t, names["backup"])
}

func TestNewLoggerVerbose(t *testing.T) {
	orig := rootVerbose
	defer func() { rootVerbose = orig }()

	rootVerbose = false
	require.NotNil(t, newLogger())

	rootVerbose = true
	require.NotNil(t, newLogger())
}

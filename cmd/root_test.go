package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesCommand(t *testing.T) {
	t.Setenv("BOOKSCOUT_CACHE_ENABLED", "false")

	rootCmd.SetArgs([]string{"sources"})
	require.NoError(t, rootCmd.Execute())
}

func TestSearchCommand_UnknownSource(t *testing.T) {
	t.Setenv("BOOKSCOUT_CACHE_ENABLED", "false")

	rootCmd.SetArgs([]string{"search", "nosuchshop", "antigone"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestSearchCommand_NeedsWords(t *testing.T) {
	t.Setenv("BOOKSCOUT_CACHE_ENABLED", "false")

	rootCmd.SetArgs([]string{"search", "momox"})
	assert.Error(t, rootCmd.Execute())
}

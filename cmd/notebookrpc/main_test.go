package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHelp(t *testing.T) {
	cmd := newRootCommand(&commandContext{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	for _, sub := range []string{"list", "sources", "content", "query", "add"} {
		assert.Contains(t, out.String(), sub)
	}
}

func TestArgumentValidation(t *testing.T) {
	cmd := newRootCommand(&commandContext{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"query", "nb-only"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arg")
}

func TestCloseBeforeBuild(t *testing.T) {
	cc := &commandContext{}
	cmd := newRootCommand(cc)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.NotPanics(t, cc.close)
	assert.NotPanics(t, cc.close)
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Sources"},
		[][]string{{"nb-1", "3"}, {"nb-2"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	assert.Contains(t, out, "nb-1")
	assert.Contains(t, out, "SOURCES")

	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestOwnershipAndTime(t *testing.T) {
	assert.Equal(t, "owned, shared", ownership(types.Notebook{IsOwned: true, IsShared: true}))
	assert.Equal(t, "owned", ownership(types.Notebook{IsOwned: true}))
	assert.Equal(t, "shared with me", ownership(types.Notebook{}))
	assert.Equal(t, "-", formatTime(time.Time{}))
}

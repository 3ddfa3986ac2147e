package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

func TestViewCmd_UsesConfiguredReportsDir(t *testing.T) {
	fake := &fakeWorkflow{}
	swapWorkflow(t, fake)

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"view"})
	err := cmd.Execute()
	require.NoError(t, err)

	require.NotNil(t, fake.viewArgs)
	assert.Equal(t, m.Path(defaultReportsDir), fake.viewArgs.Reports)
}

func TestViewCmd_RejectsPositionalArgs(t *testing.T) {
	fake := &fakeWorkflow{}
	swapWorkflow(t, fake)

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"view", "extra"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Nil(t, fake.viewArgs)
}

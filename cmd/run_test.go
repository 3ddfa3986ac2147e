package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

func TestRunCmd_PreviewsByDefault(t *testing.T) {
	fake := &fakeWorkflow{}
	swapWorkflow(t, fake)

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newRunCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"run", "./..."})
	err := cmd.Execute()
	require.NoError(t, err)

	require.NotNil(t, fake.runArgs)
	assert.Equal(t, []m.Path{m.Path("./...")}, fake.runArgs.Paths)
	assert.False(t, fake.runArgs.Write)
	assert.False(t, fake.runArgs.Check)
	assert.Equal(t, m.Path(defaultReportsDir), fake.runArgs.Reports)
	assert.True(t, fake.runArgs.Options.Enabled)
	assert.Equal(t, m.DefaultFactoryName, fake.runArgs.Options.FactoryName)
}

func TestRunCmd_WriteAndCheckFlags(t *testing.T) {
	fake := &fakeWorkflow{}
	swapWorkflow(t, fake)

	t.Cleanup(func() {
		runWriteFlag = false
		runCheckFlag = false
	})

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newRunCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"run", "--write", "--check", "./pkg"})
	err := cmd.Execute()
	require.NoError(t, err)

	require.NotNil(t, fake.runArgs)
	assert.True(t, fake.runArgs.Write)
	assert.True(t, fake.runArgs.Check)
	assert.Equal(t, []m.Path{m.Path("./pkg")}, fake.runArgs.Paths)
}

func TestRunCmd_NoReportDisablesPersistence(t *testing.T) {
	fake := &fakeWorkflow{}
	swapWorkflow(t, fake)

	t.Cleanup(func() {
		runNoReportFlag = false
	})

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newRunCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"run", "--no-report", "./..."})
	err := cmd.Execute()
	require.NoError(t, err)

	require.NotNil(t, fake.runArgs)
	assert.Equal(t, m.Path(""), fake.runArgs.Reports)
}

package cli

import (
	"bytes"
	"context"
	"testing"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalNavigator(t *testing.T) {
	var out bytes.Buffer
	nav := &terminalNavigator{out: &out}

	assert.True(t, nav.ReplaceState("/analysis/abc"))
	nav.Navigate("/analysis/def")
	assert.Equal(t, "Result moved to /analysis/abc\nResult moved to /analysis/def\n", out.String())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute(context.Background(), &config.Config{}, errors.Discard()))
	assert.Contains(t, out.String(), "resumetailor version "+Version)
}

func TestOpenRejectsInvalidID(t *testing.T) {
	rootCmd.SetArgs([]string{"open", "not-a-uuid"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background(), &config.Config{}, errors.Discard())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRegenerateReportsTypedStyle(t *testing.T) {
	rootCmd.SetArgs([]string{"regenerate", "3f0c9a52-6a7e-4c8e-9d5b-1f2a3b4c5d6e", "--style", "Baroque"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() {
		rootCmd.SetArgs(nil)
		regenerateStyle = ""
	}()

	err := Execute(context.Background(), &config.Config{}, errors.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Baroque"`)
}

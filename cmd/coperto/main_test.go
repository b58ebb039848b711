package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coperto dev")
	assert.Contains(t, out, "commit=none")
}

func TestMigrateCmd_RejectsUnknownDirection(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "migrate", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestTenantCreateCmd_Validation(t *testing.T) {
	t.Parallel()

	t.Run("missing flags", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "tenant", "create", "--name", "Trattoria")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "slug")
	})

	t.Run("short password", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "tenant", "create",
			"--name", "Trattoria", "--slug", "trattoria",
			"--admin-email", "owner@example.com", "--admin-password", "short")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "tenant", "version"})
}

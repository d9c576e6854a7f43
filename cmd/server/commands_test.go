package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdminCommandIsIdempotent(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "data", "bloghub.db"))
	t.Setenv("ADMIN_EMAIL", "owner@example.com")
	t.Setenv("SUPER_ROOT_PASSWORD", "secret")

	run := func() string {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"create-admin", "--name", "Owner"})
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	assert.Contains(t, run(), "admin owner@example.com created")
	assert.Contains(t, run(), "already exists")
}

func TestCreateAdminCommandRequiresCredentials(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "bloghub.db"))
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("SUPER_ROOT_PASSWORD", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"create-admin"})
	assert.Error(t, cmd.Execute())
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "bloghub.db"))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	assert.NoError(t, cmd.Execute())
}

func TestServeRefusesBuiltInJWTSecretInRelease(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "bloghub.db"))
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

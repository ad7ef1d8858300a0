package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
listenAddr = ":8080"

probe "website" {
  timeout = "3s"
  http {
    scheme = "https"
    hostname = "example.org"
    path = "/health"
  }
}

probe "postgres" {
  tcp {
    hostname = "127.0.0.1"
    port = "5432"
  }
}

probe "reverse-proxy" {
  container {
    name = "traefik"
  }
}

vault {
  dataDir = "/srv/vault"
}

backup {
  enabled = true
  sourceDir = "/srv/vault"
  backupDir = "/srv/backup"
  remoteUrl = "git@example.org:me/backup.git"
  authorName = "Backup Bot"
  authorEmail = "backup@example.org"
}
`

func TestGenerateFromConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(testConfig), 0o644))

	cfg := &config.Config{}
	require.NoError(t, cfg.GenerateFromConfigDir(dir))

	assert.Equal(t, ":8080", cfg.ListenAddr)

	require.Len(t, cfg.Probes, 3)
	assert.Equal(t, "website", cfg.Probes[0].Name)
	require.NotNil(t, cfg.Probes[0].HTTP)
	assert.Equal(t, "https", cfg.Probes[0].HTTP.Scheme)
	assert.Equal(t, "example.org", cfg.Probes[0].HTTP.Hostname)
	assert.Equal(t, "3s", cfg.Probes[0].Timeout)

	require.NotNil(t, cfg.Probes[1].TCP)
	assert.Equal(t, "5432", cfg.Probes[1].TCP.Port)

	require.NotNil(t, cfg.Probes[2].Container)
	assert.Equal(t, "traefik", cfg.Probes[2].Container.Name)

	require.NotNil(t, cfg.Vault)
	assert.Equal(t, "/srv/vault", cfg.Vault.DataDir)

	require.NotNil(t, cfg.Backup)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, "git@example.org:me/backup.git", cfg.Backup.RemoteURL)
}

func TestGenerateFromConfigDirAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.hcl"), []byte(`listenAddr = ":1234"`), 0o644))

	cfg := &config.Config{}
	require.NoError(t, cfg.GenerateFromConfigDir(dir))

	assert.Equal(t, "./data/vault", cfg.Vault.DataDir)
	assert.Equal(t, "./data/notes", cfg.Notes.DataDir)
	assert.Equal(t, "./data/backup", cfg.Backup.BackupDir)
	assert.False(t, cfg.Backup.Enabled)
	require.NotEmpty(t, cfg.Backup.SSHKeyFile)

	rel, err := filepath.Rel(cfg.Backup.BackupDir, cfg.Backup.SSHKeyFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, ".."),
		"default key file must live outside the backup working tree")
}

func TestGenerateFromConfigDirFailsWithoutFiles(t *testing.T) {
	cfg := &config.Config{}
	assert.Error(t, cfg.GenerateFromConfigDir(t.TempDir()))
}

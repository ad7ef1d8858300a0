package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl"
	log "github.com/sirupsen/logrus"
)

const defaultListenAddr = ":9218"

// GenerateFromConfigDir loads and merges all *.hcl files from configDir,
// in lexical order, into the receiver.
func (cfg *Config) GenerateFromConfigDir(configDir string) error {
	configDir = strings.TrimRight(configDir, "/")

	matches, err := filepath.Glob(configDir + "/*.hcl")
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		return fmt.Errorf("could not find any configuration files in %s", configDir)
	}

	sort.Strings(matches)

	for _, m := range matches {
		log.Infof("found config file: %s", m)

		contents, err := os.ReadFile(m)
		if err != nil {
			return err
		}

		if err := hcl.Unmarshal(contents, cfg); err != nil {
			return fmt.Errorf("could not parse configuration file %s: %s", m, err.Error())
		}
	}

	cfg.applyDefaults()

	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	if cfg.Vault == nil {
		cfg.Vault = &Vault{}
	}
	if cfg.Vault.DataDir == "" {
		cfg.Vault.DataDir = "./data/vault"
	}

	if cfg.Notes == nil {
		cfg.Notes = &Notes{}
	}
	if cfg.Notes.DataDir == "" {
		cfg.Notes.DataDir = "./data/notes"
	}

	if cfg.Backup == nil {
		cfg.Backup = &Backup{}
	}
	if cfg.Backup.SourceDir == "" {
		cfg.Backup.SourceDir = "./data/vault"
	}
	if cfg.Backup.BackupDir == "" {
		cfg.Backup.BackupDir = "./data/backup"
	}
	if cfg.Backup.SSHKeyFile == "" {
		// staged outside the backup working tree so it can never end up
		// in a commit
		cfg.Backup.SSHKeyFile = filepath.Join(filepath.Dir(cfg.Backup.BackupDir), ".hausmeister-ssh-key")
	}
}

package backup

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// CopyFiles mirrors the regular files of sourceDir into backupDir. The
// copy is additive: files are written or overwritten, never deleted, and
// directories are skipped rather than recursed into. A failure on one
// file is logged and skipped so the remaining files still get copied.
func CopyFiles(sourceDir, backupDir string) error {
	entries, err := os.ReadDir(sourceDir)
	if os.IsNotExist(err) {
		log.Infof("source directory %s does not exist yet, creating it", sourceDir)
		return errors.Wrapf(os.MkdirAll(sourceDir, 0o755), "failed to create source directory %q", sourceDir)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to list source directory %q", sourceDir)
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create backup directory %q", backupDir)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(sourceDir, name))
		if err != nil {
			log.WithError(err).Warnf("skipping unreadable file %s", name)
			continue
		}

		if err := os.WriteFile(filepath.Join(backupDir, name), data, 0o644); err != nil {
			log.WithError(err).Warnf("failed to copy %s into backup directory", name)
		}
	}

	return nil
}

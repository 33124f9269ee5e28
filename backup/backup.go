package backup

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Manager copies an output file aside before it gets overwritten and
// prunes copies older than the retention window.
type Manager struct {
	RetentionDays int
}

func NewManager(retentionDays int) *Manager {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Manager{RetentionDays: retentionDays}
}

// Create backs up path into backupDir (default: sibling "backup" dir)
// with a timestamped name and prunes old copies. A missing source is
// not an error; there is simply nothing to back up.
func (m *Manager) Create(path, backupDir string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(path), "backup")
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	backupPath := filepath.Join(backupDir,
		fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext))

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("copy to backup: %w", err)
	}

	if err := m.CleanupOld(backupDir); err != nil {
		log.Printf("WARN: backup cleanup: %v", err)
	}
	return backupPath, nil
}

// CleanupOld deletes files in backupDir whose modification time is
// older than the retention window.
func (m *Manager) CleanupOld(backupDir string) error {
	cutoff := time.Now().AddDate(0, 0, -m.RetentionDays)

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return err
	}
	var deleted int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(backupDir, entry.Name())); err != nil {
				log.Printf("WARN: delete old backup %s: %v", entry.Name(), err)
				continue
			}
			deleted++
		}
	}
	if deleted > 0 {
		log.Printf("backup cleanup: removed %d file(s) older than %d days", deleted, m.RetentionDays)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

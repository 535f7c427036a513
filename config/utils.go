package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

var (
	workspaceDir     string
	workspaceDirOnce sync.Once
)

const (
	configFileName = "config.yaml"
	workspaceName  = ".zaikit"
)

func GetWorkspaceDir() string {
	workspaceDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		workspaceDir = filepath.Join(home, workspaceName)
	})

	return workspaceDir
}

func GetWorkspaceConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, workspaceName, configFileName), nil
}

// GetJobsPath is where submitted video job ids are recorded for
// `video status`.
func GetJobsPath() string {
	return filepath.Join(GetWorkspaceDir(), "jobs.txt")
}

// RecordJob appends id to the jobs file, creating the workspace if needed.
func RecordJob(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, id); err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}
	return nil
}

// RecordedJobs returns the ids in the jobs file, oldest first and without
// duplicates. A missing file yields no ids.
func RecordedJobs(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	return ids, nil
}

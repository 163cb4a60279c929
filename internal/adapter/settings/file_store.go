package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/pkg/logger"
)

// FileStore keeps the poll configuration in a YAML file so it survives
// restarts. Fields missing from the file keep their defaults.
type FileStore struct {
	path     string
	defaults model.PollConfig
	mutex    sync.Mutex
	log      *logger.Logger
}

func NewFileStore(path string, defaults model.PollConfig, log *logger.Logger) *FileStore {
	return &FileStore{
		path:     path,
		defaults: defaults,
		log:      log,
	}
}

func (s *FileStore) Load(ctx context.Context) (model.PollConfig, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("Settings file not found, using defaults", "path", s.path)
		return s.defaults, nil
	}
	if err != nil {
		return s.defaults, fmt.Errorf("failed to read settings: %w", err)
	}

	var patch model.PollConfigPatch
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return s.defaults, fmt.Errorf("failed to parse settings %s: %w", s.path, err)
	}

	cfg := s.defaults.Apply(patch)
	if err := cfg.Validate(); err != nil {
		return s.defaults, err
	}
	return cfg, nil
}

func (s *FileStore) Save(ctx context.Context, cfg model.PollConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	s.log.Info("Saved settings", "path", s.path, "auto_refresh", cfg.AutoRefreshEnabled, "interval_ms", cfg.RefreshIntervalMs)
	return nil
}

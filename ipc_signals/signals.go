package ipc_signals

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const defaultMaxAge = time.Second

// sourceImpl reads signals as marker files in a shared folder. A signal is
// raised while its marker file exists.
type sourceImpl struct {
	fileSys afero.Fs
	folder  string
	maxAge  time.Duration
}

type Config struct {
	FileSys afero.Fs
	Folder  string
	// MaxAge bounds how old a marker may be before IsSet treats it as
	// stale and discards it. Zero selects the default of one second.
	MaxAge time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Folder == "" {
		return nil, fmt.Errorf("folder is empty")
	}

	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = defaultMaxAge
	}

	return &sourceImpl{
		fileSys: cfg.FileSys,
		folder:  cfg.Folder,
		maxAge:  maxAge,
	}, nil
}

func (s *sourceImpl) IsSet(name string) bool {
	path := s.path(name)

	info, err := s.fileSys.Stat(path)
	if err != nil {
		return false
	}

	if time.Since(info.ModTime()) > s.maxAge {
		// stale marker left behind by a dead producer
		if err := s.fileSys.Remove(path); err != nil {
			log.Printf("warning: could not remove stale signal %q: %v", name, err)
		}

		return false
	}

	return true
}

func (s *sourceImpl) Consume(name string) bool {
	path := s.path(name)

	if _, err := s.fileSys.Stat(path); err != nil {
		return false
	}

	if err := s.fileSys.Remove(path); err != nil {
		log.Printf("warning: could not consume signal %q: %v", name, err)

		return false
	}

	return true
}

func (s *sourceImpl) path(name string) string {
	return filepath.Join(s.folder, name)
}

// Create raises the named signal for other processes (and for tests).
func Create(fileSys afero.Fs, folder, name string) error {
	if err := fileSys.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("creating signal folder: %w", err)
	}

	return afero.WriteFile(fileSys, filepath.Join(folder, name), []byte("1"), 0644)
}

package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/traff"
)

// Storage persists the message cache between runs as a TraFF feed document,
// so that traffic known at shutdown survives a restart without re-decoding.
type Storage interface {
	Load() (traff.Feed, error)
	Save(feed traff.Feed) error
	Reset() error
}

// LocalStorage keeps the snapshot in a single local file.
type LocalStorage struct {
	filePath string
}

func NewLocalStorage(filePath string) *LocalStorage {
	return &LocalStorage{filePath: filePath}
}

// Load reads the snapshot. A missing file is an empty feed, not an error.
func (s *LocalStorage) Load() (traff.Feed, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return traff.Feed{}, nil
		}
		return nil, err
	}
	defer file.Close()

	feed, err := traff.ParseFeed(file)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Loaded %d messages from %s", len(feed), s.filePath)
	return feed, nil
}

// Save writes the snapshot, replacing the file atomically.
func (s *LocalStorage) Save(feed traff.Feed) error {
	document, err := feed.ToXml()
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.filePath), ".traff-snapshot-*")
	if err != nil {
		return err
	}
	if _, err := tempFile.Write(document); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return err
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return err
	}
	return os.Rename(tempFile.Name(), s.filePath)
}

// Reset removes the snapshot file.
func (s *LocalStorage) Reset() error {
	err := os.Remove(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStorage keeps the snapshot in memory, for tests and for running
// without persistence.
type MemoryStorage struct {
	mu       sync.Mutex
	document []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() (traff.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.document) == 0 {
		return traff.Feed{}, nil
	}
	return traff.ParseFeed(bytes.NewReader(s.document))
}

func (s *MemoryStorage) Save(feed traff.Feed) error {
	document, err := feed.ToXml()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.document = document
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Reset() error {
	s.mu.Lock()
	s.document = nil
	s.mu.Unlock()
	return nil
}

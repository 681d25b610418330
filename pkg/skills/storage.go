package skills

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/helicon-ai/skillforge/pkg/errors"
	"github.com/helicon-ai/skillforge/pkg/logging"
)

// Store persists the skill repository.
type Store interface {
	// Load reads the full skill list. A missing backing file yields an
	// empty list, not an error. A corrupt backing file is backed up and
	// also yields an empty list; the engine starts fresh.
	Load() ([]Skill, error)

	// Save writes the full skill list, creating parent directories as
	// needed.
	Save(skills []Skill) error

	// Path returns the backing location.
	Path() string
}

// NewStore selects a store implementation from the path extension.
// Paths ending in .db or .sqlite get the SQLite store, everything else the
// JSON file store.
func NewStore(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return NewSQLiteStore(path)
	default:
		return NewFileStore(path), nil
	}
}

const storageVersion = 1

// skillDocument is the on-disk shape of the repository.
type skillDocument struct {
	Version int     `json:"version"`
	Skills  []Skill `json:"skills"`
}

// FileStore persists skills as a JSON document.
type FileStore struct {
	path string
}

// NewFileStore creates a file store for the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

// Load reads all skills from the file. Parse failures rename the corrupt
// file to a .corrupt backup and return an empty list.
func (f *FileStore) Load() ([]Skill, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return []Skill{}, nil
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to read skill repository"),
			errors.Fields{"path": f.path})
	}

	skills, err := parseSkillDocument(data)
	if err != nil {
		logger := logging.GetLogger()
		backup := f.path + ".corrupt"
		if renameErr := os.Rename(f.path, backup); renameErr != nil {
			logger.Error(context.Background(), "failed to back up corrupt skill repository %s: %v", f.path, renameErr)
		} else {
			logger.Warn(context.Background(), "skill repository %s is corrupt, backed up to %s and starting fresh", f.path, backup)
		}
		return []Skill{}, nil
	}

	return skills, nil
}

func parseSkillDocument(data []byte) ([]Skill, error) {
	var doc skillDocument
	if err := json.Unmarshal(data, &doc); err == nil && doc.Version != 0 {
		if doc.Version != storageVersion {
			return nil, errors.WithFields(
				errors.New(errors.PersistenceFailed, "unsupported skill repository version"),
				errors.Fields{"version": doc.Version})
		}
		if doc.Skills == nil {
			doc.Skills = []Skill{}
		}
		return doc.Skills, nil
	}

	// Pre-versioned files were a bare skill array.
	var bare []Skill
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to parse skill repository")
	}
	return bare, nil
}

// Save writes all skills to the file atomically.
func (f *FileStore) Save(skills []Skill) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to create repository directory"),
			errors.Fields{"path": f.path})
	}

	doc := skillDocument{Version: storageVersion, Skills: skills}
	if doc.Skills == nil {
		doc.Skills = []Skill{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to encode skill repository")
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to write skill repository"),
			errors.Fields{"path": tmpPath})
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to replace skill repository"),
			errors.Fields{"path": f.path})
	}

	return nil
}

// Package config provides the dotted-path configuration store consumed by
// the request facade and the server.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// DefaultExtension is the config file extension loaded when none are given.
const DefaultExtension = ".yaml"

// Store is a process-wide key-value configuration store with dotted-path
// lookup. Values are loaded from a directory tree of config files, each file
// contributing a top-level namespace derived from its path relative to the
// config directory (config/session.yaml -> "session.*").
//
// Store is safe for concurrent use. Sync builds a fresh snapshot and swaps it
// in atomically, so readers racing a reload observe either the old or the new
// state, never a partial merge.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	dir  string
	exts map[string]struct{}
}

// NewStore creates a Store rooted at dir. Files matching the given extensions
// (default: .yaml) are loaded by Sync. The store starts empty; call Sync to
// populate it.
func NewStore(dir string, extensions ...string) *Store {
	if len(extensions) == 0 {
		extensions = []string{DefaultExtension}
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Store{
		v:    viper.New(),
		dir:  dir,
		exts: exts,
	}
}

// Sync reloads all configuration files under the store's directory,
// recursively. A missing directory is treated as empty configuration; any
// other filesystem or parse error is returned and the previous state is kept.
func (s *Store) Sync() error {
	fresh := viper.New()

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := s.exts[ext]; !ok {
			return nil
		}

		file := viper.New()
		file.SetConfigFile(path)
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		ns, err := s.namespace(path)
		if err != nil {
			return err
		}
		// Nest the file's settings under its namespace path so lookups
		// walk real nested maps (sub/dir/app.yaml -> sub.dir.app.*).
		nested := any(file.AllSettings())
		parts := strings.Split(ns, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			nested = map[string]any{parts[i]: nested}
		}
		return fresh.MergeConfigMap(nested.(map[string]any))
	})
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config directory: run with empty configuration.
			err = nil
		} else {
			return err
		}
	}

	s.mu.Lock()
	s.v = fresh
	s.mu.Unlock()
	return nil
}

// namespace derives the dotted top-level key for a config file from its path
// relative to the store directory: sub/dir/app.yaml -> "sub.dir.app".
func (s *Store) namespace(path string) (string, error) {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "."), nil
}

// Get returns the value at the given dotted key. When the key is absent it
// returns the supplied default, or nil if none was given. Lookups never fail.
func (s *Store) Get(key string, def ...any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.v.IsSet(key) {
		if len(def) > 0 {
			return def[0]
		}
		return nil
	}
	return s.v.Get(key)
}

// Set stores value at the given dotted key, overriding any loaded value.
// The write is visible to subsequent Get calls until the next Sync.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

// Merge returns the mapping at key merged over the given defaults. Values
// present in the store win; defaults only fill gaps. The store itself is not
// mutated. A non-mapping or absent value at key yields the defaults as-is.
func (s *Store) Merge(key string, defaults map[string]any) map[string]any {
	s.mu.RLock()
	current, _ := s.v.Get(key).(map[string]any)
	s.mu.RUnlock()

	return deepMerge(defaults, current)
}

// deepMerge overlays src on top of base, recursing into nested mappings.
// Neither argument is mutated.
func deepMerge(base, src map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(src))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range src {
		srcMap, srcOK := v.(map[string]any)
		baseMap, baseOK := out[k].(map[string]any)
		if srcOK && baseOK {
			out[k] = deepMerge(baseMap, srcMap)
			continue
		}
		out[k] = v
	}
	return out
}

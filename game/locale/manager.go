package locale

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrLocaleNotFound = errors.New("locale not found")
	ErrInvalidLocale  = errors.New("invalid locale")
)

// DefaultLocale is loaded by NewManager when no name is given.
const DefaultLocale = "es"

var extensions = []string{".json", ".yaml", ".yml"}

// Info describes a locale file on disk.
type Info struct {
	Name     string         `json:"name"`
	Filename string         `json:"filename"`
	Entries  map[string]int `json:"entries"`
}

// Manager handles locale loading and caching
type Manager struct {
	dir           string
	defaultLocale *Locale
	locales       map[string]*Locale
	mu            sync.RWMutex
}

// NewManager creates a manager over dir and loads the default locale.
func NewManager(dir, defaultName string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("locale directory does not exist: %s", dir)
	}
	if defaultName == "" {
		defaultName = DefaultLocale
	}

	m := &Manager{
		dir:     dir,
		locales: make(map[string]*Locale),
	}

	loc, err := m.Load(defaultName)
	if err != nil {
		return nil, fmt.Errorf("failed to load default locale: %w", err)
	}
	m.defaultLocale = loc

	return m, nil
}

// Load loads a locale by name
func (m *Manager) Load(name string) (*Locale, error) {
	name = strings.TrimSuffix(name, filepath.Ext(name))

	m.mu.RLock()
	if loc, exists := m.locales[name]; exists {
		m.mu.RUnlock()
		return loc, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if loc, exists := m.locales[name]; exists {
		return loc, nil
	}

	loc, err := LoadFile(m.find(name))
	if err != nil {
		return nil, err
	}
	loc.Name = name

	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocale, err)
	}

	m.locales[name] = loc
	return loc, nil
}

// find returns the first existing file for name, or the .json path.
func (m *Manager) find(name string) string {
	for _, ext := range extensions {
		path := filepath.Join(m.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(m.dir, name+".json")
}

// LoadFile parses a locale file, choosing the format by extension.
func LoadFile(path string) (*Locale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLocaleNotFound, path)
		}
		return nil, fmt.Errorf("failed to read locale file: %w", err)
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(name, data)
	default:
		return ParseJSON(name, data)
	}
}

// List returns information about all valid locales in the directory.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !hasLocaleExt(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		loc, err := m.Load(name)
		if err != nil {
			// Skip invalid locales
			continue
		}

		counts := make(map[string]int, len(Categories))
		for _, c := range Categories {
			counts[c] = loc.Len(c)
		}
		infos = append(infos, Info{Name: name, Filename: entry.Name(), Entries: counts})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func hasLocaleExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GetDefault returns the default locale
func (m *Manager) GetDefault() *Locale {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLocale
}

// SetDefault sets the default locale by name
func (m *Manager) SetDefault(name string) error {
	loc, err := m.Load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLocale = loc
	return nil
}

// RefreshCache drops cached locales and reloads the default from disk.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	name := m.defaultLocale.Name
	m.locales = make(map[string]*Locale)
	m.mu.Unlock()

	return m.SetDefault(name)
}

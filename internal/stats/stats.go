package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stats holds persistent statistics
type Stats struct {
	FreedLifetime int64     `json:"freed_lifetime"`
	Deletions     int64     `json:"deletions"`
	LastRoot      string    `json:"last_root,omitempty"` // Last directory scanned by the TUI
	LastScan      time.Time `json:"last_scan,omitzero"`
}

// Manager handles loading and saving stats
type Manager struct {
	path         string
	stats        Stats
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a stats manager backed by ~/.sweeper/stats.json
func NewManager() *Manager {
	return NewManagerAt(defaultPath())
}

// NewManagerAt creates a stats manager backed by path
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// defaultPath returns the default stats file path
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sweeper-stats.json"
	}
	return filepath.Join(home, ".sweeper", "stats.json")
}

// Load loads stats from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No stats file yet, start fresh
			m.stats = Stats{}
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &m.stats)
}

// Save saves stats to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves stats without acquiring the lock (caller must hold lock)
func (m *Manager) saveLocked() error {
	// Ensure directory exists
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// FreedLifetime returns the lifetime freed bytes
func (m *Manager) FreedLifetime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.FreedLifetime
}

// Deletions returns how many deletions were recorded
func (m *Manager) Deletions() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.Deletions
}

// LastRoot returns the last scanned directory
func (m *Manager) LastRoot() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.LastRoot
}

// Snapshot returns a copy of the current stats
func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// RecordScan remembers root as the last scanned directory
func (m *Manager) RecordScan(root string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.LastRoot = root
	m.stats.LastScan = at
	m.scheduleSaveLocked()
}

// AddFreed adds to the lifetime freed counter and schedules a debounced save
func (m *Manager) AddFreed(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.FreedLifetime += bytes
	m.stats.Deletions++
	m.scheduleSaveLocked()
}

// scheduleSaveLocked marks the stats dirty and restarts the debounce timer
func (m *Manager) scheduleSaveLocked() {
	m.dirty = true

	// Cancel any pending save timer
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	// Schedule a debounced save
	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}

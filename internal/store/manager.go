package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

// ErrNotFound is returned for unknown surface IDs
var ErrNotFound = errors.New("surface not found")

// Syncer mirrors store changes somewhere else
type Syncer interface {
	Push(ctx context.Context, s ink.Surface) error
	Remove(ctx context.Context, id string) error
}

// Manager owns the store file. Every write to a surface goes through Put or
// Delete, which replace whole values.
type Manager struct {
	file     *File
	filePath string
	syncer   Syncer
	logger   *logger.Logger

	// pending holds IDs changed since they were last mirrored
	pending map[string]pendingChange
	seq     uint64
	mu      sync.RWMutex
}

// pendingChange records whether a surface still exists and which change
// produced that state
type pendingChange struct {
	exists bool
	seq    uint64
}

// syncItem is a pending change captured for pushing outside the lock
type syncItem struct {
	id      string
	change  pendingChange
	surface ink.Surface
}

// NewManager creates a manager for filePath without reading it
func NewManager(filePath string) *Manager {
	return &Manager{
		file:     NewFile(),
		filePath: filePath,
		logger:   logger.Get(),
		pending:  make(map[string]pendingChange),
	}
}

// SetSyncer attaches a remote mirror used after each Save
func (m *Manager) SetSyncer(s Syncer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncer = s
}

// SetLogger replaces the manager's logger
func (m *Manager) SetLogger(l *logger.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

// Load reads the store file. A missing file is an empty store.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if os.IsNotExist(err) {
		m.file = NewFile()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse store file: %w", err)
	}
	if f.Version != FileVersion {
		return fmt.Errorf("unsupported store file version %d (expected %d)", f.Version, FileVersion)
	}
	if f.Surfaces == nil {
		f.Surfaces = make(map[string]ink.Surface)
	}
	f.repairOrder()

	m.file = &f
	return nil
}

// Save writes the store atomically, then pushes pending changes to the
// syncer. The remote calls run without holding the lock. Sync failures are
// logged and never returned.
func (m *Manager) Save() error {
	syncer, batch, err := m.persist()
	if err != nil {
		return err
	}
	if syncer != nil && len(batch) > 0 {
		m.flushPending(context.Background(), syncer, batch)
	}
	return nil
}

// persist writes the store file and snapshots the pending changes
func (m *Manager) persist() (Syncer, []syncItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.file, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.filePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	tmpFile := m.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return nil, nil, fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := os.Rename(tmpFile, m.filePath); err != nil {
		os.Remove(tmpFile)
		return nil, nil, fmt.Errorf("failed to rename temp store file: %w", err)
	}

	if m.syncer == nil {
		m.pending = make(map[string]pendingChange)
		return nil, nil, nil
	}

	batch := make([]syncItem, 0, len(m.pending))
	for id, change := range m.pending {
		item := syncItem{id: id, change: change}
		if change.exists {
			item.surface = m.file.Surfaces[id].WithPaths(m.file.Surfaces[id].Paths)
		}
		batch = append(batch, item)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].id < batch[j].id })
	return m.syncer, batch, nil
}

func (m *Manager) flushPending(ctx context.Context, syncer Syncer, batch []syncItem) {
	m.mu.RLock()
	log := m.logger
	m.mu.RUnlock()

	done := make([]syncItem, 0, len(batch))
	for _, item := range batch {
		var err error
		if item.change.exists {
			err = syncer.Push(ctx, item.surface)
		} else {
			err = syncer.Remove(ctx, item.id)
		}
		if err != nil {
			// retried on the next Save
			log.WithSurfaceID(item.id).WithError(err).Warn("Remote sync failed")
			continue
		}
		done = append(done, item)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range done {
		// a newer change made while pushing stays pending
		if m.pending[item.id].seq == item.change.seq {
			delete(m.pending, item.id)
		}
	}
}

// markPending records a change to id. Callers hold the write lock.
func (m *Manager) markPending(id string, exists bool) {
	m.seq++
	m.pending[id] = pendingChange{exists: exists, seq: m.seq}
}

// Get returns the surface with id
func (m *Manager) Get(id string) (ink.Surface, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.file.Surfaces[id]
	if !ok {
		return ink.Surface{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Put stores s as the new value of its ID. New surfaces go to the end of
// the display order.
func (m *Manager) Put(s ink.Surface) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.Touch()

	if _, exists := m.file.Surfaces[s.ID]; !exists {
		m.file.Order = append(m.file.Order, s.ID)
	}
	m.file.Surfaces[s.ID] = s.WithPaths(s.Paths)
	m.markPending(s.ID, true)
	return nil
}

// Delete removes a whole surface
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.file.Surfaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.file.Surfaces, id)
	if i := m.file.indexOf(id); i >= 0 {
		m.file.Order = append(m.file.Order[:i], m.file.Order[i+1:]...)
	}
	m.markPending(id, false)
	return nil
}

// List returns all surfaces in display order
func (m *Manager) List() []ink.Surface {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ink.Surface, 0, len(m.file.Order))
	for _, id := range m.file.Order {
		out = append(out, m.file.Surfaces[id])
	}
	return out
}

// MoveUp swaps a surface with its predecessor. The first surface stays put.
func (m *Manager) MoveUp(id string) error {
	return m.move(id, -1)
}

// MoveDown swaps a surface with its successor. The last surface stays put.
func (m *Manager) MoveDown(id string) error {
	return m.move(id, 1)
}

func (m *Manager) move(id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.file.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	j := i + delta
	if j < 0 || j >= len(m.file.Order) {
		return nil
	}
	m.file.Order[i], m.file.Order[j] = m.file.Order[j], m.file.Order[i]
	return nil
}

// Resolve finds a surface by full ID, unique ID prefix, or 1-based position
func (m *Manager) Resolve(ref string) (ink.Surface, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.file.Surfaces[ref]; ok {
		return s, nil
	}

	if pos, err := strconv.Atoi(ref); err == nil {
		if pos >= 1 && pos <= len(m.file.Order) {
			return m.file.Surfaces[m.file.Order[pos-1]], nil
		}
		return ink.Surface{}, fmt.Errorf("%w: position %d", ErrNotFound, pos)
	}

	var match []string
	for _, id := range m.file.Order {
		if ref != "" && strings.HasPrefix(id, ref) {
			match = append(match, id)
		}
	}
	switch len(match) {
	case 1:
		return m.file.Surfaces[match[0]], nil
	case 0:
		return ink.Surface{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	default:
		return ink.Surface{}, fmt.Errorf("ambiguous surface prefix %q matches %d surfaces", ref, len(match))
	}
}

// Count returns the number of stored surfaces
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.file.Surfaces)
}

// Reset clears the store in memory
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.file.Surfaces {
		m.markPending(id, false)
	}
	m.file = NewFile()
}

// LoadOrCreate loads filePath, writing an empty store if it does not exist
func LoadOrCreate(filePath string) (*Manager, error) {
	m := NewManager(filePath)
	if err := m.Load(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to save initial store: %w", err)
		}
	}
	return m, nil
}

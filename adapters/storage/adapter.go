// Package storage keeps a history of saved quotes.
// Backends: a directory of JSON files, or memory for tests.
package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Save stores a quote, assigning ID and CreatedAt when empty
	Save(ctx context.Context, q *StoredQuote) error

	// Get retrieves a quote by ID
	Get(ctx context.Context, id string) (*StoredQuote, error)

	// List returns quotes newest first
	List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error)

	// Delete removes a quote
	Delete(ctx context.Context, id string) error

	// Close closes the store
	Close() error
}

// StoredQuote is a saved calculation together with its inputs
type StoredQuote struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Products []types.ProductEntry     `json:"products"`
	Config   types.Configuration      `json:"config"`
	Result   *types.CalculationResult `json:"result"`
}

// NewStoredQuote snapshots a calculation for saving
func NewStoredQuote(label, sessionID string, products []types.ProductEntry, cfg types.Configuration, result *types.CalculationResult) *StoredQuote {
	return &StoredQuote{
		Label:     label,
		SessionID: sessionID,
		Products:  products,
		Config:    cfg,
		Result:    result,
	}
}

// GrandTotal returns the stored total, zero when no result was saved
func (q *StoredQuote) GrandTotal() decimal.Decimal {
	if q.Result == nil {
		return decimal.Zero
	}
	return q.Result.GrandTotal
}

// ListFilter filters quote listing
type ListFilter struct {
	Label string
	Since time.Time
	Until time.Time
	Limit int
}

func (f *ListFilter) match(q *StoredQuote) bool {
	if f == nil {
		return true
	}
	if f.Label != "" && !strings.Contains(strings.ToLower(q.Label), strings.ToLower(f.Label)) {
		return false
	}
	if !f.Since.IsZero() && q.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && q.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

// CompareResult is the change in grand total between two quotes
type CompareResult struct {
	OldID        string          `json:"old_id"`
	NewID        string          `json:"new_id"`
	OldTotal     decimal.Decimal `json:"old_total"`
	NewTotal     decimal.Decimal `json:"new_total"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent decimal.Decimal `json:"delta_percent"`
	OldUnitCost  decimal.Decimal `json:"old_unit_cost"`
	NewUnitCost  decimal.Decimal `json:"new_unit_cost"`
}

// Compare loads two quotes from s and reports the change
func Compare(ctx context.Context, s Store, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newQuote, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}

	oldTotal, newTotal := oldQuote.GrandTotal(), newQuote.GrandTotal()
	delta := newTotal.Sub(oldTotal)
	deltaPercent := decimal.Zero
	if oldTotal.IsPositive() {
		deltaPercent = delta.Div(oldTotal).Mul(decimal.NewFromInt(100))
	}

	res := &CompareResult{
		OldID:        oldID,
		NewID:        newID,
		OldTotal:     oldTotal,
		NewTotal:     newTotal,
		Delta:        delta,
		DeltaPercent: deltaPercent,
	}
	if oldQuote.Result != nil {
		res.OldUnitCost = oldQuote.Result.AverageUnitCost
	}
	if newQuote.Result != nil {
		res.NewUnitCost = newQuote.Result.AverageUnitCost
	}
	return res, nil
}

func stamp(q *StoredQuote) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
}

func newestFirst(quotes []*StoredQuote, filter *ListFilter) []*StoredQuote {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	if filter != nil && filter.Limit > 0 && filter.Limit < len(quotes) {
		quotes = quotes[:filter.Limit]
	}
	return quotes
}

// FileStore keeps one JSON file per quote in a directory
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Config("create history directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.basePath, filepath.Base(id)+".json")
}

func (s *FileStore) Save(ctx context.Context, q *StoredQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(q)
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return errors.Internal("encode quote", err)
	}
	if err := os.WriteFile(s.path(q.ID), data, 0644); err != nil {
		return errors.Internal("write quote", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id), id)
}

func (s *FileStore) read(path, id string) (*StoredQuote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("quote", id)
		}
		return nil, errors.Internal("read quote", err)
	}
	var q StoredQuote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Parsing("decode quote "+id, err)
	}
	return &q, nil
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Internal("read history", err)
	}

	var quotes []*StoredQuote
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		q, err := s.read(filepath.Join(s.basePath, entry.Name()), id)
		if err != nil {
			// Skip unreadable files
			continue
		}
		if filter.match(q) {
			quotes = append(quotes, q)
		}
	}
	return newestFirst(quotes, filter), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("quote", id)
		}
		return errors.Internal("delete quote", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory storage backend (for testing)
type MemoryStore struct {
	quotes map[string]*StoredQuote
	mu     sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[string]*StoredQuote)}
}

func (s *MemoryStore) Save(ctx context.Context, q *StoredQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(q)
	s.quotes[q.ID] = q
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[id]
	if !ok {
		return nil, errors.NotFound("quote", id)
	}
	return q, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var quotes []*StoredQuote
	for _, q := range s.quotes {
		if filter.match(q) {
			quotes = append(quotes, q)
		}
	}
	return newestFirst(quotes, filter), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[id]; !ok {
		return errors.NotFound("quote", id)
	}
	delete(s.quotes, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// StoreFactory creates stores by backend type
func StoreFactory(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		if path == "" {
			path = ".import-cost-history"
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.NotSupported("history backend " + string(backend))
	}
}

// Ensure interfaces are implemented
var _ io.Closer = (*FileStore)(nil)
var _ io.Closer = (*MemoryStore)(nil)

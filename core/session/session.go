// Package session holds the state of one interactive quote: the product
// ledger, the configuration and the last good result. Every edit triggers a
// full recalculation; edits are serialised so concurrent callers observe one
// edit followed by one recalculation.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"import-cost/core/ledger"
	"import-cost/core/money"
	"import-cost/core/output"
	"import-cost/core/pricing"
	"import-cost/core/types"
	"import-cost/core/validation"
	"import-cost/internal/metrics"
)

// Snapshot is the outcome of a recalculation
type Snapshot struct {
	Result *types.CalculationResult `json:"result"`
	Trace  string                   `json:"trace"`

	// Stale is set when the latest recalculation was blocked and Result
	// reflects the state before the offending edit
	Stale bool `json:"stale"`
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for recalculation events
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records recalculation outcomes
func WithMetrics(m *metrics.QuoteMetrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithPresenter sets the currency symbols used by the trace
func WithPresenter(p output.Presenter) Option {
	return func(s *Session) { s.presenter = p }
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	ledger    *ledger.Ledger
	config    types.Configuration
	last      Snapshot
	stale     bool
	presenter output.Presenter
	logger    *zap.Logger
	metrics   *metrics.QuoteMetrics
}

// New creates a session with an empty ledger. It fails when cfg carries an
// ICMS rate outside [0,100].
func New(cfg types.Configuration, opts ...Option) (*Session, error) {
	if err := validation.CheckConfiguration(cfg); err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.NewString(),
		ledger:    ledger.New(),
		config:    cfg,
		presenter: output.DefaultPresenter(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))

	if _, err := s.recompute(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Presenter returns the symbols the session formats with
func (s *Session) Presenter() output.Presenter {
	return s.presenter
}

// Snapshot returns the last recalculation outcome without recomputing
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Entries returns the ledger entries in display order
func (s *Session) Entries() []types.ProductEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// Config returns the current configuration
func (s *Session) Config() types.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Add appends a product and recalculates
func (s *Session) Add(price string, quantity, weight decimal.Decimal) (types.ProductEntry, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.ledger.Add(types.ProductInput{Price: price, Quantity: quantity, Weight: weight})
	s.logger.Debug("product added", zap.Int("product_id", entry.ID))
	snap, err := s.recompute()
	return entry, snap, err
}

// AddDefault appends a product with an empty price, one unit and 100 g
func (s *Session) AddDefault() (types.ProductEntry, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.ledger.AddDefault()
	s.logger.Debug("product added", zap.Int("product_id", entry.ID))
	snap, err := s.recompute()
	return entry, snap, err
}

// Import appends several products and recalculates once
func (s *Session) Import(inputs []types.ProductInput) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range inputs {
		s.ledger.Add(in)
	}
	s.logger.Debug("products imported", zap.Int("count", len(inputs)))
	return s.recompute()
}

// Update edits one field of a product from its raw text. An unknown field
// or id is rejected without recalculating.
func (s *Session) Update(id int, field types.Field, value string) (types.ProductEntry, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.ledger.Update(id, field, value)
	if err != nil {
		return types.ProductEntry{}, s.current(), err
	}
	snap, err := s.recompute()
	return entry, snap, err
}

// Remove deletes a product and recalculates
func (s *Session) Remove(id int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Remove(id); err != nil {
		return s.current(), err
	}
	s.logger.Debug("product removed", zap.Int("product_id", id))
	return s.recompute()
}

// SetExchangeRate parses the raw rate leniently. Blank or unreadable text
// yields 0, which switches the calculation to degraded mode.
func (s *Session) SetExchangeRate(raw string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.ExchangeRate = money.ParseNumber(raw)
	return s.recompute()
}

// SetICMSRate parses the raw percentage. Blank or unreadable text restores
// the default rate. An out-of-range value is stored but blocks
// recalculation until it is corrected.
func (s *Session) SetICMSRate(raw string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.ICMSRate = money.ParseOptional(raw)
	return s.recompute()
}

// Configure replaces the whole configuration
func (s *Session) Configure(cfg types.Configuration) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = cfg
	return s.recompute()
}

// Recompute runs the pricing pipeline over the current state
func (s *Session) Recompute() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recompute()
}

// SeedExamples replaces the ledger with the two sample products and sets the
// sample exchange rate of 0.847.
func (s *Session) SeedExamples() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = ledger.New()
	for _, in := range SampleProducts() {
		s.ledger.Add(in)
	}
	s.config.ExchangeRate = SampleExchangeRate
	return s.recompute()
}

// SampleExchangeRate is the rate loaded by SeedExamples
var SampleExchangeRate = decimal.RequireFromString("0.847")

// SampleProducts returns the products loaded by SeedExamples
func SampleProducts() []types.ProductInput {
	return []types.ProductInput{
		{Price: "¥ 177,00", Quantity: decimal.NewFromInt(2), Weight: decimal.NewFromInt(200)},
		{Price: "¥ 94,40", Quantity: decimal.NewFromInt(1), Weight: decimal.NewFromInt(150)},
	}
}

func (s *Session) current() Snapshot {
	snap := s.last
	snap.Stale = s.stale
	return snap
}

func (s *Session) recompute() (Snapshot, error) {
	entries := s.ledger.Entries()

	result, err := pricing.Calculate(entries, s.config)
	if err != nil {
		s.stale = true
		s.logger.Warn("recompute blocked",
			zap.String("icms_rate", s.config.ICMSRate.Decimal.String()),
			zap.Error(err))
		s.metrics.ObserveRecompute(metrics.OutcomeBlocked, len(entries), nil)
		return s.current(), err
	}

	outcome := metrics.OutcomeOK
	if result.Degraded {
		outcome = metrics.OutcomeDegraded
		if len(entries) > 0 {
			s.logger.Warn("exchange rate not provided; converted figures are zero")
		}
	}
	s.metrics.ObserveRecompute(outcome, len(entries), countFlags(result.Flags))

	s.last = Snapshot{Result: result, Trace: s.presenter.Trace(result)}
	s.stale = false
	s.logger.Debug("recomputed",
		zap.Int("products", len(entries)),
		zap.String("grand_total", result.GrandTotal.String()),
		zap.Int("flags", len(result.Flags)))
	return s.current(), nil
}

func countFlags(flags []types.Flag) map[string]int {
	if len(flags) == 0 {
		return nil
	}
	out := make(map[string]int, 2)
	for _, f := range flags {
		out[string(f.Field)]++
	}
	return out
}

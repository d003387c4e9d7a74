package session

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"import-cost/core/types"
	"import-cost/internal/errors"
	"import-cost/internal/logging"
	"import-cost/internal/metrics"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := New(types.Configuration{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRejectsInvalidICMS(t *testing.T) {
	_, err := New(types.Configuration{ICMSRate: decimal.NewNullDecimal(d("101"))})
	if !errors.IsType(err, errors.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEmptySessionIsZero(t *testing.T) {
	s := newSession(t)
	snap := s.Snapshot()
	if snap.Result == nil {
		t.Fatal("expected initial result")
	}
	if !snap.Result.GrandTotal.IsZero() || !snap.Result.Degraded {
		t.Errorf("empty session: total=%s degraded=%v", snap.Result.GrandTotal, snap.Result.Degraded)
	}
	if s.ID() == "" {
		t.Error("session id not assigned")
	}
}

func TestSeedExamples(t *testing.T) {
	s := newSession(t)
	snap, err := s.SeedExamples()
	if err != nil {
		t.Fatalf("SeedExamples: %v", err)
	}

	r := snap.Result
	for name, tc := range map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"subtotal":          {r.Subtotal, "448.4"},
		"freight":           {r.Freight, "83"},
		"converted freight": {r.ConvertedFreight, "70.301"},
		"import tax":        {r.ImportTax, "311.2206"},
		"icms":              {r.ConsumptionTax, "149.385888"},
		"grand total":       {r.GrandTotal, "979.307488"},
		"units":             {r.TotalUnits, "3"},
	} {
		if !tc.got.Equal(d(tc.want)) {
			t.Errorf("%s = %s, want %s", name, tc.got, tc.want)
		}
	}
	if len(s.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(s.Entries()))
	}
	if !strings.Contains(snap.Trace, "Product 2: ¥ 94,40 × 1") {
		t.Errorf("trace missing second product:\n%s", snap.Trace)
	}
}

func TestEditsRecompute(t *testing.T) {
	s := newSession(t)
	if _, err := s.SetExchangeRate("0.847"); err != nil {
		t.Fatal(err)
	}
	entry, _, err := s.Add("¥ 177,00", d("1"), d("200"))
	if err != nil {
		t.Fatal(err)
	}

	_, snap, err := s.Update(entry.ID, types.FieldQuantity, "2")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Result.GrandTotal.Equal(d("765.899296")) {
		t.Errorf("grand total = %s", snap.Result.GrandTotal)
	}

	snap, err = s.Remove(entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Result.GrandTotal.IsZero() {
		t.Errorf("expected zero total after removal, got %s", snap.Result.GrandTotal)
	}
}

func TestUpdateRejectsUnknownFieldAndID(t *testing.T) {
	s := newSession(t)
	entry, _, _ := s.AddDefault()

	if _, _, err := s.Update(entry.ID, types.Field("colour"), "red"); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
	if _, _, err := s.Update(99, types.FieldPrice, "1"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := s.Remove(99); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestInvalidICMSKeepsPreviousResult(t *testing.T) {
	s := newSession(t)
	before, err := s.SeedExamples()
	if err != nil {
		t.Fatal(err)
	}

	snap, err := s.SetICMSRate("150")
	if !errors.IsType(err, errors.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !snap.Stale {
		t.Error("snapshot should be marked stale")
	}
	if !snap.Result.GrandTotal.Equal(before.Result.GrandTotal) {
		t.Errorf("result changed: %s != %s", snap.Result.GrandTotal, before.Result.GrandTotal)
	}

	// Further edits stay blocked until the rate is fixed.
	if _, _, err := s.AddDefault(); err == nil {
		t.Error("expected blocked recompute while ICMS is invalid")
	}

	snap, err = s.SetICMSRate("")
	if err != nil {
		t.Fatalf("restoring default: %v", err)
	}
	if snap.Stale || !snap.Result.ICMSRate.Equal(types.DefaultICMSRate) {
		t.Errorf("stale=%v icms=%s", snap.Stale, snap.Result.ICMSRate)
	}
	if len(snap.Result.Lines) != 3 {
		t.Errorf("expected the blocked add to be kept, got %d lines", len(snap.Result.Lines))
	}
}

func TestExplicitZeroICMS(t *testing.T) {
	s := newSession(t)
	s.SeedExamples()
	snap, err := s.SetICMSRate("0")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Result.ConsumptionTax.IsZero() {
		t.Errorf("ICMS 0 should produce no consumption tax, got %s", snap.Result.ConsumptionTax)
	}
}

func TestUnreadableICMSUsesDefault(t *testing.T) {
	s := newSession(t)
	if _, err := s.SeedExamples(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetICMSRate("12"); err != nil {
		t.Fatal(err)
	}

	snap, err := s.SetICMSRate("abc")
	if err != nil {
		t.Fatalf("unreadable rate should not block: %v", err)
	}
	if s.Config().ICMSRate.Valid {
		t.Error("unreadable rate should clear the configured value")
	}
	if !snap.Result.ICMSRate.Equal(types.DefaultICMSRate) {
		t.Errorf("icms = %s, want default %s", snap.Result.ICMSRate, types.DefaultICMSRate)
	}
	if !snap.Result.ConsumptionTax.Equal(d("149.385888")) {
		t.Errorf("consumption tax = %s, want 149.385888", snap.Result.ConsumptionTax)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	s := newSession(t)
	s.SeedExamples()

	first, _ := s.Recompute()
	second, _ := s.Recompute()

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Errorf("recompute not idempotent:\n%s\n%s", a, b)
	}
}

func TestConcurrentEdits(t *testing.T) {
	s := newSession(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("10", d("1"), d("50"))
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if !snap.Result.Subtotal.Equal(d("200")) {
		t.Errorf("subtotal = %s, want 200", snap.Result.Subtotal)
	}
	if snap.Result.FreightBlocks != 10 {
		t.Errorf("blocks = %d, want 10", snap.Result.FreightBlocks)
	}
}

func TestMetricsAndLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewQuoteMetrics(reg)
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: "warn", Format: "json"}, &buf)

	s := newSession(t, WithMetrics(m), WithLogger(logger))
	s.AddDefault()
	s.SetICMSRate("-1")

	if got := testutil.ToFloat64(m.Recomputes.WithLabelValues(metrics.OutcomeBlocked)); got != 1 {
		t.Errorf("blocked = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Recomputes.WithLabelValues(metrics.OutcomeDegraded)); got != 2 {
		t.Errorf("degraded = %v, want 2", got)
	}
	if !strings.Contains(buf.String(), "recompute blocked") {
		t.Errorf("expected blocked warning in log: %s", buf.String())
	}
}

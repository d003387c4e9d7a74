package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"import-cost/adapters/quote"
	"import-cost/core/ledger"
	"import-cost/core/money"
	"import-cost/core/output"
	"import-cost/core/session"
	"import-cost/core/types"
	"import-cost/internal/errors"
)

const maxBodyBytes = 1 << 20

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.opts.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.opts.Version,
		"engine":      "import-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

// handleListProducts handles GET /products
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"session_id": s.opts.Session.ID(),
		"products":   s.opts.Session.Entries(),
	}, http.StatusOK)
}

// handleAddProduct handles POST /products
func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := s.decode(r, &req, true); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	quantity, weight := ledger.DefaultQuantity, ledger.DefaultWeight
	if req.Quantity != nil {
		quantity = money.ParseNumber(string(*req.Quantity))
	}
	if req.Weight != nil {
		weight = money.ParseNumber(string(*req.Weight))
	}

	entry, snap, err := s.opts.Session.Add(req.Price, quantity, weight)
	if err != nil {
		s.writeError(w, r, err, &snap)
		return
	}
	s.writeJSON(w, ProductResponse{Product: entry, SnapshotResponse: s.snapshotResponse(snap)}, http.StatusCreated)
}

// handleUpdateProduct handles PATCH /products/{id}
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	var req UpdateRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	entry, snap, err := s.opts.Session.Update(id, types.Field(req.Field), string(req.Value))
	if err != nil {
		s.writeError(w, r, err, &snap)
		return
	}
	s.writeJSON(w, ProductResponse{Product: entry, SnapshotResponse: s.snapshotResponse(snap)}, http.StatusOK)
}

// handleRemoveProduct handles DELETE /products/{id}
func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	snap, err := s.opts.Session.Remove(id)
	if err != nil {
		s.writeError(w, r, err, &snap)
		return
	}
	s.writeJSON(w, s.snapshotResponse(snap), http.StatusOK)
}

// handleSample handles POST /sample
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	snap, err := s.opts.Session.SeedExamples()
	if err != nil {
		s.writeError(w, r, err, &snap)
		return
	}
	s.writeJSON(w, s.snapshotResponse(snap), http.StatusOK)
}

// handleGetConfig handles GET /config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, configResponse(s.opts.Session.Config()), http.StatusOK)
}

// handleSetConfig handles PUT /config
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	cfg := s.opts.Session.Config()
	if req.ExchangeRate != nil {
		cfg.ExchangeRate = money.ParseNumber(string(*req.ExchangeRate))
	}
	if req.ICMSRate != nil {
		cfg.ICMSRate = money.ParseOptional(string(*req.ICMSRate))
	}

	snap, err := s.opts.Session.Configure(cfg)
	if err != nil {
		s.writeError(w, r, err, &snap)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"config":   configResponse(s.opts.Session.Config()),
		"snapshot": s.snapshotResponse(snap),
	}, http.StatusOK)
}

// handleResult handles GET /result
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.snapshotResponse(s.opts.Session.Snapshot()), http.StatusOK)
}

// handleTrace handles GET /trace
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	snap := s.opts.Session.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if snap.Stale {
		w.Header().Set("X-Result-Stale", "true")
	}
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, snap.Trace+"\n")
}

// handleEstimate handles POST /estimate. The calculation is stateless: the
// body is a quote document and the session is left untouched. The format
// query parameter selects json (default), text, xlsx or pdf.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.TypeInput, "read body", err), nil)
		return
	}
	q, err := quote.JSONLoader{}.Load(bytes.NewReader(body), "request body")
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	format := output.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = output.FormatJSON
	}
	formatter, err := output.DefaultRegistry().Get(format)
	if err != nil || format == output.FormatCLI {
		s.writeError(w, r, errors.NotSupported("output format "+string(format)), nil)
		return
	}

	calc, err := session.New(q.Apply(s.opts.Defaults), session.WithPresenter(s.opts.Presenter), session.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	snap, err := calc.Import(q.Products)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	report := output.NewReport(snap.Result, s.opts.Presenter, output.ReportMetadata{
		SessionID: calc.ID(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.opts.Version,
		Source:    types.SourceAPI,
	})

	if format != output.FormatJSON {
		w.Header().Set("Content-Type", contentType(format))
		if output.IsBinary(format) {
			w.Header().Set("Content-Disposition", `attachment; filename="quote.`+string(format)+`"`)
		}
		var buf bytes.Buffer
		if err := formatter.Render(&buf, report); err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	sum := sha256.Sum256(body)
	s.writeJSON(w, EstimateResponse{
		Report:     report,
		InputHash:  hex.EncodeToString(sum[:]),
		RequestID:  RequestIDFrom(r.Context()),
		DurationMs: time.Since(start).Milliseconds(),
	}, http.StatusOK)
}

func (s *Server) snapshotResponse(snap session.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		SessionID: s.opts.Session.ID(),
		Stale:     snap.Stale,
		Result:    snap.Result,
	}
}

func configResponse(cfg types.Configuration) ConfigResponse {
	return ConfigResponse{
		ExchangeRate: cfg.ExchangeRate.String(),
		ICMSRate:     cfg.EffectiveICMSRate().String(),
		ICMSDefault:  !cfg.ICMSRate.Valid,
	}
}

// decode reads a JSON body and validates it. allowEmpty accepts a missing body.
func (s *Server) decode(r *http.Request, dst interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF && allowEmpty {
			return nil
		}
		return errors.Wrap(errors.TypeInput, "invalid JSON body", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.Newf(errors.TypeInput, "%s failed %s", fe.Field(), fe.Tag()).WithContext("field", fe.Field())
		}
		return errors.Wrap(errors.TypeInput, "invalid body", err)
	}
	return nil
}

func productID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf(errors.TypeInput, "invalid product id %q", raw)
	}
	return id, nil
}

func contentType(f output.Format) string {
	switch f {
	case output.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case output.FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

// writeError maps a domain error to its status. When snap is given and the
// error blocked a recalculation, the last good result is attached.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, snap *session.Snapshot) {
	status := errors.HTTPStatus(err)
	detail := ErrorDetail{
		Code:      string(errors.TypeOf(err)),
		Message:   err.Error(),
		RequestID: RequestIDFrom(r.Context()),
	}
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		detail.Message = domainErr.Message
		detail.Context = domainErr.Context
	}
	if snap != nil && snap.Stale {
		detail.Result = snap.Result
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("request_id", detail.RequestID), zap.Error(err))
	}
	s.writeJSON(w, ErrorBody{Error: detail}, status)
}

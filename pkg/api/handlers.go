package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/opengcd/gcd/pkg/catalog"
	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

// maxUploadBytes caps uploaded file size. GCD files are firmware images,
// tens of megabytes at the very most.
const maxUploadBytes = 128 << 20

// Server holds the API server state
type Server struct {
	catalog ICatalog
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(cat ICatalog, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		catalog: cat,
		config:  config,
		metrics: metrics,
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck()
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleInspect parses an uploaded GCD file and returns its record listing
// and summary.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	records, err := s.listRecords(raw)
	if err != nil {
		s.metrics.RecordFileParsed(false)
		s.metrics.RecordParseError(errorKind(err))
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	summary, err := catalog.Summarize(r.URL.Query().Get("name"), bytes.NewReader(raw))
	if err != nil {
		s.metrics.RecordFileParsed(false)
		s.metrics.RecordParseError(errorKind(err))
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.metrics.RecordFileParsed(true)
	sendSuccess(w, InspectResponse{Records: records, Summary: summary})
}

// handleValidate parses an uploaded GCD file and reports whether it is
// well-formed. Malformed files are a 200 with Valid false; the upload
// itself succeeded.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	resp := ValidateResponse{Valid: true}
	p, err := stream.NewParser(bytes.NewReader(raw))
	if err == nil {
		for {
			rec, rerr := p.ReadRecord()
			if rerr != nil {
				err = rerr
				break
			}
			if _, done := rec.(codec.EndRecord); done {
				break
			}
		}
		resp.Offset = p.Offset()
	}
	if err != nil {
		resp.Valid = false
		resp.Error = err.Error()
		s.metrics.RecordFileParsed(false)
		s.metrics.RecordParseError(errorKind(err))
	} else {
		s.metrics.RecordFileParsed(true)
	}
	sendSuccess(w, resp)
}

// handleCatalogScan summarizes an uploaded file and stores it in the catalog.
func (s *Server) handleCatalogScan(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	summary, err := catalog.Summarize(r.URL.Query().Get("name"), bytes.NewReader(raw))
	if err != nil {
		s.metrics.RecordFileParsed(false)
		s.metrics.RecordParseError(errorKind(err))
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.metrics.RecordFileParsed(true)

	id, err := s.catalog.Put(summary)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.updateCatalogSize()
	sendSuccess(w, map[string]string{"id": id.String()})
}

// handleCatalogList returns every catalog entry.
func (s *Server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List()
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.SetCatalogSize(len(entries))
	sendSuccess(w, entries)
}

// handleCatalogGet returns one catalog entry by ID.
func (s *Server) handleCatalogGet(w http.ResponseWriter, r *http.Request) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "invalid catalog ID", http.StatusBadRequest)
		return
	}
	summary, err := s.catalog.Get(id)
	if errors.Is(err, catalog.ErrNotFound) {
		sendError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, catalog.Entry{ID: id, Summary: *summary})
}

// handleCatalogDelete removes one catalog entry.
func (s *Server) handleCatalogDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "invalid catalog ID", http.StatusBadRequest)
		return
	}
	if err := s.catalog.Delete(id); err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.updateCatalogSize()
	sendSuccess(w, map[string]string{"id": id.String()})
}

func (s *Server) updateCatalogSize() {
	if entries, err := s.catalog.List(); err == nil {
		s.metrics.SetCatalogSize(len(entries))
	}
}

// readUpload reads the request body up to the upload cap.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		sendError(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	if len(raw) == 0 {
		sendError(w, "request body is required", http.StatusBadRequest)
		return nil, false
	}
	return raw, true
}

// listRecords decodes every record of raw into listing form.
func (s *Server) listRecords(raw []byte) ([]RecordInfo, error) {
	p, err := stream.NewParser(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var records []RecordInfo
	for {
		offset := p.Offset()
		rec, err := p.ReadRecord()
		if err != nil {
			return nil, err
		}
		s.metrics.RecordRecord(recordName(rec))
		records = append(records, RecordInfo{
			Index:  len(records),
			Offset: offset,
			Info:   rec.String(),
		})
		if _, done := rec.(codec.EndRecord); done {
			return records, nil
		}
	}
}

func recordName(rec codec.Record) string {
	switch rec.(type) {
	case codec.TextRecord:
		return "text"
	case codec.ChecksumRecord:
		return "checksum"
	case codec.FillerRecord:
		return "filler"
	case codec.MainRecord:
		return "main-header"
	case codec.DescriptorRecord:
		return "descriptor"
	case codec.FirmwareRecord:
		return "firmware"
	case codec.EndRecord:
		return "end"
	}
	return "unknown"
}

// errorKind maps a parse error onto a stable metric label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, stream.ErrMalformedPreamble):
		return "malformed_preamble"
	case errors.Is(err, stream.ErrUnexpectedEOF):
		return "unexpected_eof"
	case errors.Is(err, stream.ErrUnexpectedRecord):
		return "unexpected_record"
	case errors.Is(err, codec.ErrUnknownTag):
		return "unknown_tag"
	case errors.Is(err, codec.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, stream.ErrReadFailure):
		return "read_failure"
	}
	return "other"
}

func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
}

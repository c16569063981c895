package api

import (
	"github.com/segmentio/ksuid"

	"github.com/opengcd/gcd/pkg/catalog"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port int
	Bind string
}

// RecordInfo is one record of an inspected file, in listing form.
type RecordInfo struct {
	Index  int    `json:"index"`
	Offset int64  `json:"offset"`
	Info   string `json:"info"`
}

// InspectResponse is the result of inspecting an uploaded file.
type InspectResponse struct {
	Records []RecordInfo     `json:"records"`
	Summary *catalog.Summary `json:"summary"`
}

// ValidateResponse is the result of validating an uploaded file.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
	Offset int64  `json:"offset"`
}

// ICatalog defines the catalog operations the server needs
type ICatalog interface {
	Put(*catalog.Summary) (ksuid.KSUID, error)
	Get(ksuid.KSUID) (*catalog.Summary, error)
	List() ([]catalog.Entry, error)
	Delete(ksuid.KSUID) error
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengcd/gcd/pkg/catalog"
	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

// fakeCatalog is an in-memory ICatalog for handler tests.
type fakeCatalog struct {
	entries map[ksuid.KSUID]catalog.Summary
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{entries: make(map[ksuid.KSUID]catalog.Summary)}
}

func (f *fakeCatalog) Put(s *catalog.Summary) (ksuid.KSUID, error) {
	id := ksuid.New()
	f.entries[id] = *s
	return id, nil
}

func (f *fakeCatalog) Get(id ksuid.KSUID) (*catalog.Summary, error) {
	s, ok := f.entries[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &s, nil
}

func (f *fakeCatalog) List() ([]catalog.Entry, error) {
	var entries []catalog.Entry
	for id, s := range f.entries {
		entries = append(entries, catalog.Entry{ID: id, Summary: s})
	}
	return entries, nil
}

func (f *fakeCatalog) Delete(id ksuid.KSUID) error {
	delete(f.entries, id)
	return nil
}

func testRouter(t *testing.T) (http.Handler, *fakeCatalog) {
	t.Helper()
	cat := newFakeCatalog()
	metrics := NewMetricsWith(prometheus.NewRegistry())
	server := NewServer(cat, ServerConfig{}, metrics)
	return NewRouter(server), cat
}

func sampleFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	c, err := stream.NewComposer(&buf)
	require.NoError(t, err)
	for _, rec := range []codec.Record{
		codec.NewText("api sample"),
		codec.ChecksumRecord{},
		codec.EndRecord{},
	} {
		require.NoError(t, c.WriteRecord(rec))
	}
	return buf.Bytes()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleHealth(t *testing.T) {
	h, _ := testRouter(t)
	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestHandleInspect(t *testing.T) {
	h, _ := testRouter(t)
	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/inspect?name=sample.gcd", sampleFile(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var inspect InspectResponse
	require.NoError(t, json.Unmarshal(data, &inspect))

	require.Len(t, inspect.Records, 3)
	assert.Equal(t, `Text("api sample")`, inspect.Records[0].Info)
	assert.Equal(t, int64(8), inspect.Records[0].Offset)
	assert.Equal(t, "sample.gcd", inspect.Summary.Name)
	assert.Equal(t, 3, inspect.Summary.Records)
}

func TestHandleInspect_Malformed(t *testing.T) {
	h, _ := testRouter(t)
	raw := sampleFile(t)
	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/inspect", raw[:len(raw)-1])
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleInspect_EmptyBody(t *testing.T) {
	h, _ := testRouter(t)
	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/inspect", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestHandleValidate(t *testing.T) {
	h, _ := testRouter(t)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/validate", sampleFile(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var v ValidateResponse
	require.NoError(t, json.Unmarshal(data, &v))
	assert.True(t, v.Valid)

	raw := sampleFile(t)
	raw[len(raw)-4] = 0x99 // corrupt the End tag
	rec, resp = doRequest(t, h, http.MethodPost, "/api/v1/validate", raw)
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ = json.Marshal(resp.Data)
	require.NoError(t, json.Unmarshal(data, &v))
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Error)
}

func TestCatalogEndpoints(t *testing.T) {
	h, cat := testRouter(t)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/catalog?name=sample.gcd", sampleFile(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	idStr := resp.Data.(map[string]interface{})["id"].(string)
	id, err := ksuid.Parse(idStr)
	require.NoError(t, err)
	assert.Contains(t, cat.entries, id)

	rec, resp = doRequest(t, h, http.MethodGet, "/api/v1/catalog/"+idStr, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = doRequest(t, h, http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = doRequest(t, h, http.MethodDelete, "/api/v1/catalog/"+idStr, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, cat.entries, id)

	rec, resp = doRequest(t, h, http.MethodGet, "/api/v1/catalog/"+idStr, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)

	rec, resp = doRequest(t, h, http.MethodGet, "/api/v1/catalog/not-a-ksuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

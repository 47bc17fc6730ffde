package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/instant-receipts/extraction/internal/extract"
	"github.com/instant-receipts/extraction/internal/ocr"
)

func newExtractServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{Service: "extract", Version: "test"}, nil, extract.New(nil), nil)
}

type fixedRunner struct {
	stdout []byte
}

func (f fixedRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	return f.stdout, nil, nil
}

// receiptTSV yields words "Mega Mart Total $55.00 03/15/24" with boxes.
func receiptTSV() []byte {
	header := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"
	rows := []string{header}
	for i, text := range []string{"Mega", "Mart", "Total", "$55.00", "03/15/24"} {
		left := strconv.Itoa(i * 100)
		rows = append(rows, strings.Join([]string{
			"5", "1", "1", "1", "1", "1",
			left, "20", "80", "30", "90", text,
		}, "\t"))
	}
	return []byte(strings.Join(rows, "\n"))
}

func newUnifiedServer(t *testing.T, auth BasicAuth) *Server {
	t.Helper()
	engine := ocr.NewEngineWithRunner(ocr.Config{}, fixedRunner{stdout: receiptTSV()}, nil)
	return New(Config{Service: "unified", Version: "test", Auth: auth}, engine, extract.New(nil), nil)
}

// pngUpload builds a multipart body with a minimal valid PNG signature.
func pngUpload(t *testing.T, docID string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)
	_, err = fw.Write(png)
	require.NoError(t, err)

	if docID != "" {
		require.NoError(t, w.WriteField("doc_id", docID))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealthExtractService(t *testing.T) {
	srv := newExtractServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["ok"])
	require.Equal(t, "extract", body["service"])
	require.NotContains(t, body, "lang")
}

func TestHealthOCRServiceReportsLangAndAuth(t *testing.T) {
	srv := newUnifiedServer(t, BasicAuth{Username: "u", Password: "p"})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "eng", body["lang"])
	require.Equal(t, true, body["auth_enabled"])
}

func TestRootListsEndpoints(t *testing.T) {
	srv := newExtractServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body struct {
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "POST /extract", body.Endpoints["extract"])
}

func TestExtractEndpoint(t *testing.T) {
	srv := newExtractServer(t)

	payload := `{
	  "ocr": {
	    "doc_id": "doc-1",
	    "text": "Mega Mart Total $55.00 03/15/24",
	    "confidence": 0.9,
	    "words": [
	      {"text": "Mega", "confidence": 0.9, "box": [[0,0],[10,0],[10,10],[0,10]]},
	      {"text": "Mart", "confidence": 0.9, "box": [[12,0],[22,0],[22,10],[12,10]]},
	      {"text": "Total", "confidence": 0.9, "box": [[24,0],[34,0],[34,10],[24,10]]},
	      {"text": "$55.00", "confidence": 0.9, "box": [[36,0],[46,0],[46,10],[36,10]]},
	      {"text": "03/15/24", "confidence": 0.9, "box": [[48,0],[58,0],[58,10],[48,10]]}
	    ]
	  }
	}`

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res extract.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.NotNil(t, res.Merchant)
	require.Equal(t, "Mega Mart Total", *res.Merchant)
	require.NotNil(t, res.Date)
	require.Equal(t, "2024-03-15", *res.Date)
	require.NotNil(t, res.Total)
	require.InDelta(t, 55.00, *res.Total, 1e-9)
	require.Equal(t, "USD", res.Currency)
	require.Equal(t, extract.StatusExtracted, res.Status)
}

func TestExtractEndpointRejectsInvalidJSON(t *testing.T) {
	srv := newExtractServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader("{not json")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractEndpointRejectsSchemaViolations(t *testing.T) {
	srv := newExtractServer(t)

	// words missing entirely
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract",
		strings.NewReader(`{"ocr": {"doc_id": "d", "text": "", "confidence": 1}}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// box with wrong arity
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract",
		strings.NewReader(`{"ocr": {"doc_id": "d", "text": "x", "confidence": 1,
		  "words": [{"text": "x", "confidence": 1, "box": [[0,0]]}]}}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessEndpoint(t *testing.T) {
	srv := newUnifiedServer(t, BasicAuth{})

	body, contentType := pngUpload(t, "doc-9")
	req := httptest.NewRequest(http.MethodPost, "/process", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		extract.Result
		OCRText       string  `json:"ocr_text"`
		OCRConfidence float64 `json:"ocr_confidence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.Equal(t, "Mega Mart Total $55.00 03/15/24", res.OCRText)
	require.Greater(t, res.OCRConfidence, 0.0)
	require.NotNil(t, res.Total)
	require.InDelta(t, 55.00, *res.Total, 1e-9)
	require.Equal(t, extract.StatusExtracted, res.Status)
}

func TestOCREndpointReturnsDocument(t *testing.T) {
	srv := newUnifiedServer(t, BasicAuth{})

	body, contentType := pngUpload(t, "doc-7")
	req := httptest.NewRequest(http.MethodPost, "/ocr", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		ID    string `json:"doc_id"`
		Text  string `json:"text"`
		Words []any  `json:"words"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "doc-7", doc.ID)
	require.Len(t, doc.Words, 5)
}

func TestOCREndpointRejectsNonImage(t *testing.T) {
	srv := newUnifiedServer(t, BasicAuth{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "not-an-image.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text, definitely not pixels"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/ocr", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBasicAuthGate(t *testing.T) {
	srv := newUnifiedServer(t, BasicAuth{Username: "user", Password: "pass"})

	body, contentType := pngUpload(t, "")
	req := httptest.NewRequest(http.MethodPost, "/ocr", body)
	req.Header.Set("Content-Type", contentType)

	// no credentials
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	// wrong credentials
	body, contentType = pngUpload(t, "")
	req = httptest.NewRequest(http.MethodPost, "/ocr", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("user", "wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// correct credentials
	body, contentType = pngUpload(t, "")
	req = httptest.NewRequest(http.MethodPost, "/ocr", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("user", "pass")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractRouteAbsentOnUnified(t *testing.T) {
	srv := newUnifiedServer(t, BasicAuth{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader("{}")))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

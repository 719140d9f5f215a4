package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/model"
	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/store"
)

type filePart struct {
	field string
	name  string
	data  []byte
}

type captureNotifier struct {
	leads []model.Lead
	err   error
}

func (c *captureNotifier) NotifyLead(lead model.Lead) error {
	c.leads = append(c.leads, lead)
	return c.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSubmit(t *testing.T, notifier Notifier) (*SubmitHandler, *store.LeadStore) {
	t.Helper()
	dir := t.TempDir()
	leads := store.NewLeadStore(filepath.Join(dir, "leads.json"))
	uploads := store.NewUploadStore(filepath.Join(dir, "uploads"))
	h := NewSubmitHandler(testLogger(), leads, uploads, notifier, 5, 1)
	return h, leads
}

// buildMultipartForm creates a multipart body from field values and files.
func buildMultipartForm(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func postSubmit(h *SubmitHandler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/submit", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Submit(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rr.Body.String())
	}
	return env
}

func TestSubmitNoFiles(t *testing.T) {
	h, leads := newTestSubmit(t, nil)

	body, ct := buildMultipartForm(t, map[string]string{
		"company":     "Acme Ltd",
		"contactName": "Jo Bloggs",
		"phone":       "01234 567890",
		"email":       "jo@acme.example",
		"amount":      "50000",
		"sector":      "manufacturing",
		"message":     "Looking for working capital.",
	}, nil)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env["ok"] != true {
		t.Errorf("expected ok:true, got %v", env["ok"])
	}
	if id, _ := env["id"].(float64); id <= 0 {
		t.Errorf("expected positive id, got %v", env["id"])
	}

	stored, err := leads.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored lead, got %d", len(stored))
	}
	lead := stored[0]
	if lead.Company != "Acme Ltd" || lead.ContactName != "Jo Bloggs" || lead.Sector != "manufacturing" {
		t.Errorf("stored lead fields mismatch: %+v", lead)
	}
	if len(lead.Files) != 0 {
		t.Errorf("expected no files, got %d", len(lead.Files))
	}
}

func TestSubmitMissingFieldsDefaultEmpty(t *testing.T) {
	h, leads := newTestSubmit(t, nil)

	body, ct := buildMultipartForm(t, map[string]string{
		"company": "Acme Ltd",
		"ignored": "dropped",
	}, nil)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	stored, _ := leads.All()
	if stored[0].ContactName != "" || stored[0].Message != "" {
		t.Errorf("expected missing fields to default to empty, got %+v", stored[0])
	}
}

func TestSubmitWithFiles(t *testing.T) {
	h, leads := newTestSubmit(t, nil)

	files := []filePart{
		{field: "statements", name: "jan.pdf", data: []byte("january")},
		{field: "statements", name: "feb.pdf", data: []byte("february")},
	}
	body, ct := buildMultipartForm(t, map[string]string{"company": "Acme"}, files)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	stored, _ := leads.All()
	if len(stored[0].Files) != 2 {
		t.Fatalf("expected 2 file metas, got %d", len(stored[0].Files))
	}
	if stored[0].Files[0].OriginalName != "jan.pdf" || stored[0].Files[1].OriginalName != "feb.pdf" {
		t.Errorf("expected files in upload order, got %+v", stored[0].Files)
	}
	for _, f := range stored[0].Files {
		if !strings.HasPrefix(f.URL(), "/uploads/") {
			t.Errorf("expected public upload URL, got %q", f.URL())
		}
	}
}

func TestSubmitTooManyFiles(t *testing.T) {
	h, leads := newTestSubmit(t, nil)

	var files []filePart
	for i := 0; i < 6; i++ {
		files = append(files, filePart{field: "statements", name: "doc.pdf", data: []byte("x")})
	}
	body, ct := buildMultipartForm(t, nil, files)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env["ok"] != false {
		t.Errorf("expected ok:false, got %v", env["ok"])
	}

	stored, _ := leads.All()
	if len(stored) != 0 {
		t.Errorf("expected nothing persisted, got %d leads", len(stored))
	}
}

func TestSubmitOversizeFile(t *testing.T) {
	// Handler is constructed with a 1MB per-file limit.
	h, leads := newTestSubmit(t, nil)

	files := []filePart{
		{field: "statements", name: "big.pdf", data: bytes.Repeat([]byte("a"), 1<<20+1)},
	}
	body, ct := buildMultipartForm(t, nil, files)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	stored, _ := leads.All()
	if len(stored) != 0 {
		t.Errorf("expected nothing persisted, got %d leads", len(stored))
	}
}

func TestSubmitIgnoresOtherFileFields(t *testing.T) {
	h, leads := newTestSubmit(t, nil)

	files := []filePart{
		{field: "media", name: "photo.png", data: []byte("png")},
	}
	body, ct := buildMultipartForm(t, map[string]string{"company": "Acme"}, files)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	stored, _ := leads.All()
	if len(stored[0].Files) != 0 {
		t.Errorf("expected files outside the statements field to be ignored, got %d", len(stored[0].Files))
	}
}

func TestSubmitNotifies(t *testing.T) {
	notifier := &captureNotifier{}
	h, _ := newTestSubmit(t, notifier)

	body, ct := buildMultipartForm(t, map[string]string{"company": "Acme"}, nil)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if len(notifier.leads) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.leads))
	}
	if notifier.leads[0].ID == 0 {
		t.Errorf("expected notification to carry the assigned id")
	}
}

func TestSubmitNotificationFailureIsSwallowed(t *testing.T) {
	notifier := &captureNotifier{err: io.ErrClosedPipe}
	h, leads := newTestSubmit(t, notifier)

	body, ct := buildMultipartForm(t, map[string]string{"company": "Acme"}, nil)
	rr := postSubmit(h, body, ct)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected notification failure to be invisible, got %d", rr.Code)
	}
	stored, _ := leads.All()
	if len(stored) != 1 {
		t.Errorf("expected lead persisted despite notification failure")
	}
}

func TestSubmitRejectsNonMultipart(t *testing.T) {
	h, _ := newTestSubmit(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(`{"company":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Submit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-multipart body, got %d", rr.Code)
	}
}

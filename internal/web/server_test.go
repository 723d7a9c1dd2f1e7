package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/hsncheck/internal/config"
	"github.com/JonMunkholm/hsncheck/internal/core"
	_ "github.com/JonMunkholm/hsncheck/internal/core/tables"
)

const testAPIKey = "test-admin-key"

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: 10 * time.Second},
		Data:      config.DataConfig{WorkbookPath: "HSN_SAC.xlsx"},
		Upload:    config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrent: 1, MaxWaitTime: 50 * time.Millisecond, Timeout: time.Minute},
		Validator: config.ValidatorConfig{Suggestions: 3, Cutoff: 0.6, Workers: 2, InvalidLogCapacity: 100},
		Rate:      config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100, UploadLimit: 10},
		Security:  config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{testAPIKey}, EnableCSP: true},
		Logging:   config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *core.Service) {
	t.Helper()

	svc := core.NewService(core.ServiceConfig{
		Suggestions:          cfg.Validator.Suggestions,
		Cutoff:               cfg.Validator.Cutoff,
		Workers:              cfg.Validator.Workers,
		InvalidLogCapacity:   cfg.Validator.InvalidLogCapacity,
		MaxConcurrentUploads: cfg.Upload.MaxConcurrent,
		MaxUploadWait:        cfg.Upload.MaxWaitTime,
		UploadTimeout:        cfg.Upload.Timeout,
	})
	svc.Load(context.Background(), core.Tables{
		HSN: core.Table{Key: core.TableHSN, Records: []core.Record{
			{Code: "01", Description: "Live animals", HasDescription: true},
			{Code: "0101", Description: "Live horses", HasDescription: true},
			{Code: "1001", Description: "Wheat and meslin", HasDescription: true},
			{Code: "123456", Description: "Sample goods", HasDescription: true},
		}},
		SAC: core.Table{Key: core.TableSAC, Records: []core.Record{
			{Code: "9954", Description: "Construction services", HasDescription: true},
		}},
	}, "HSN_SAC.xlsx")

	return NewServer(svc, cfg), svc
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", "HSN"); err != nil {
		t.Fatal(err)
	}
	if _, err := wb.NewSheet("SAC"); err != nil {
		t.Fatal(err)
	}
	rows := map[string][][]interface{}{
		"HSN": {{"HSNCode", "Description"}, {"2201", "Waters"}, {"220110", "Mineral waters"}},
		"SAC": {{"SAC_CD", "SAC_Description"}, {"9963", "Accommodation services"}},
	}
	for sheet, data := range rows {
		for i, row := range data {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			row := row
			if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, fileName string, data []byte, apiKey string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	} else {
		mw.WriteField("note", "no file")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return req
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}
}

func TestHelp(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/help", nil))
	if got := decode[map[string]string](t, rec); got["help"] != core.HelpText {
		t.Errorf("help = %q", got["help"])
	}
}

func TestValidate(t *testing.T) {
	s, svc := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(`{"input":"1001, 12a, 1002"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[validateResponse](t, rec)
	if len(resp.Results) != 3 {
		t.Fatalf("results = %+v, want 3", resp.Results)
	}
	if !resp.Results[0].Valid || resp.Results[0].Description != "Wheat and meslin" {
		t.Errorf("results[0] = %+v", resp.Results[0])
	}
	if resp.Results[1].Status != core.StatusInvalidFormat {
		t.Errorf("results[1].Status = %s", resp.Results[1].Status)
	}
	if resp.Results[2].Status != core.StatusNotFound || len(resp.Results[2].Suggestions) == 0 {
		t.Errorf("results[2] = %+v", resp.Results[2])
	}

	if want := svc.Validator().Process("1001, 12a, 1002"); resp.Report != want {
		t.Errorf("report = %q, want %q", resp.Report, want)
	}
}

func TestValidate_Help(t *testing.T) {
	s, svc := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(`{"input":" HELP "}`)))
	resp := decode[validateResponse](t, rec)
	if resp.Report != core.HelpText || len(resp.Results) != 0 {
		t.Errorf("resp = %+v", resp)
	}
	if svc.Dashboard().InvalidCount != 0 {
		t.Error("help should not record invalid codes")
	}
}

func TestValidate_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"input":`, http.StatusBadRequest, "REQ001"},
		{"missing input", `{}`, http.StatusBadRequest, "VAL001"},
		{"empty input", `{"input":""}`, http.StatusBadRequest, "VAL001"},
		{"input too long", `{"input":"` + strings.Repeat("1", 4097) + `"}`, http.StatusBadRequest, "VAL002"},
		{"body too large", `{"input":"` + strings.Repeat("1", maxQueryBody) + `"}`, http.StatusRequestEntityTooLarge, "REQ002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestCode(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/codes/0101", nil))
	got := decode[core.Result](t, rec)
	if !got.Valid || got.Description != "Live horses" {
		t.Errorf("result = %+v", got)
	}
	if len(got.Hierarchy) != 2 || got.Hierarchy[0].Prefix != "01" || !got.Hierarchy[0].Exists {
		t.Errorf("hierarchy = %+v", got.Hierarchy)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/codes/"+url.PathEscape("12 a"), nil))
	if got := decode[core.Result](t, rec); got.Status != core.StatusInvalidFormat || got.Code != "12 a" {
		t.Errorf("result = %+v", got)
	}
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Loaded 4 HSN and 1 SAC codes.") {
		t.Errorf("page missing counts: %s", body)
	}
	if strings.Contains(body, "last updated") {
		t.Error("default data should not show an update time")
	}
}

func TestChat(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	form := url.Values{"message": {"1001"}}
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := do(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("HTMX request should get a fragment")
	}
	if !strings.Contains(body, "✅ Code &#39;1001&#39; is valid.") {
		t.Errorf("fragment missing report: %s", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, s, req)
	if !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("plain form post should get the full page")
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("message="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := do(t, s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "(Code: VAL001)") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAdmin_RequiresKey(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}

	rec = do(t, s, uploadRequest(t, "master.xlsx", workbookBytes(t), "wrong"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}
}

func TestAdmin_Dashboard(t *testing.T) {
	s, svc := newTestServer(t, testConfig())
	svc.Process(context.Background(), "1002, 1002, 77")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := do(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := decode[core.Dashboard](t, rec)
	if d.InvalidCount != 3 {
		t.Errorf("InvalidCount = %d, want 3", d.InvalidCount)
	}
	if len(d.TopInvalid) != 2 || d.TopInvalid[0] != (core.CodeCount{Code: "1002", Count: 2}) {
		t.Errorf("TopInvalid = %+v", d.TopInvalid)
	}
	if d.LastUpdate != nil {
		t.Errorf("LastUpdate = %v, want nil", d.LastUpdate)
	}
}

func TestAdmin_Upload(t *testing.T) {
	s, svc := newTestServer(t, testConfig())
	before := svc.Version().ID

	rec := do(t, s, uploadRequest(t, "master.xlsx", workbookBytes(t), testAPIKey))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[uploadResponse](t, rec)
	if resp.Version == "" || resp.Version == before {
		t.Errorf("version = %q, want a new version", resp.Version)
	}
	if resp.HSNRecords != 2 || resp.SACRecords != 1 {
		t.Errorf("records = %d/%d, want 2/1", resp.HSNRecords, resp.SACRecords)
	}
	if resp.Warnings == nil {
		t.Error("warnings should be an empty list, not null")
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/codes/220110", nil))
	if got := decode[core.Result](t, rec); !got.Valid {
		t.Errorf("uploaded code should be valid: %+v", got)
	}
	if svc.Dashboard().LastUpdate == nil {
		t.Error("upload should set LastUpdate")
	}
}

func TestAdmin_UploadErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64 << 10
	s, svc := newTestServer(t, cfg)
	before := svc.Version().ID

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"no file", uploadRequest(t, "", nil, testAPIKey), http.StatusBadRequest, "FILE004"},
		{"wrong extension", uploadRequest(t, "master.csv", []byte("HSNCode\n1001\n"), testAPIKey), http.StatusBadRequest, "FILE006"},
		{"empty workbook", uploadRequest(t, "master.xlsx", nil, testAPIKey), http.StatusBadRequest, "FILE005"},
		{"corrupt workbook", uploadRequest(t, "master.xlsx", []byte("not a zip"), testAPIKey), http.StatusBadRequest, "FILE002"},
		{"too large", uploadRequest(t, "master.xlsx", bytes.Repeat([]byte("x"), 2<<20), testAPIKey), http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if svc.Version().ID != before {
				t.Error("failed upload replaced the reference data")
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, UploadLimit: 1}
	s, _ := newTestServer(t, cfg)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/help", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		last = do(t, s, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if got := decode[ErrorResponse](t, last); got.Code != "RATE001" {
		t.Errorf("code = %q, want RATE001", got.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/help", nil)
	req.RemoteAddr = "192.0.2.11:5555"
	if rec := do(t, s, req); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

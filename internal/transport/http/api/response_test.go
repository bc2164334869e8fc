package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "not_found", "Employee not found", "req-1")

	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusNotFound || env["success"] != false || env["requestId"] != "req-1" {
		t.Fatalf("unexpected envelope %v", env)
	}
	if _, ok := env["data"]; ok {
		t.Fatalf("failure must not carry data: %v", env)
	}
}

func TestFile(t *testing.T) {
	cases := []struct {
		name        string
		inline      bool
		disposition string
	}{
		{"payslip opens inline", true, `inline; filename="payslip_E001_2025-08.pdf"`},
		{"register downloads", false, `attachment; filename="payslip_E001_2025-08.pdf"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			File(rec, ContentTypePDF, "payslip_E001_2025-08.pdf", tc.inline, []byte("%PDF"))
			if got := rec.Header().Get("Content-Disposition"); got != tc.disposition {
				t.Fatalf("disposition = %q, want %q", got, tc.disposition)
			}
			if rec.Header().Get("Content-Length") != "4" || rec.Body.String() != "%PDF" {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
		})
	}
}

package httpjson

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteErrorCode(rr, http.StatusBadRequest, "unknown_provider", "unknown provider \"x\"")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content-type: %q", ct)
	}
	body := strings.TrimSpace(rr.Body.String())
	if body != `{"error":"unknown provider \"x\"","code":"unknown_provider"}` {
		t.Fatalf("body: %s", body)
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"hikari"}`))
	if err := Decode(req, &v); err != nil || v.Name != "hikari" {
		t.Fatalf("decode: %v %+v", err, v)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := Decode(req, &v); err == nil || err.Error() != "empty body" {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

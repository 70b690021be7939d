package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

func TestEmbedResolver_PrefersMP4FromHTML(t *testing.T) {
	var base string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><source src="` + base + `/video.m3u8"><source src="` + base + `/video.mp4" type="video/mp4"></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()
	base = ts.URL

	got, err := NewEmbedResolver(zerolog.Nop()).Resolve(context.Background(), ts.URL+"/page")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != base+"/video.mp4" {
		t.Fatalf("expected mp4, got %q", got)
	}
}

func TestEmbedResolver_FollowsIframeAndResolvesRelative(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/outer":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><iframe src="/inner"></iframe></body></html>`))
		case "/inner":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><source src="/video.mp4" type="video/mp4"></body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	got, err := NewEmbedResolver(zerolog.Nop()).Resolve(context.Background(), ts.URL+"/outer")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != ts.URL+"/video.mp4" {
		t.Fatalf("expected %q, got %q", ts.URL+"/video.mp4", got)
	}
}

func TestEmbedResolver_DecodesEscapedSlashes(t *testing.T) {
	var escaped string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><script>var u="` + escaped + `";</script></html>`))
	}))
	defer ts.Close()

	host := strings.TrimPrefix(ts.URL, "http://")
	escaped = `http:\/\/` + host + `\/video.m3u8`

	got, err := NewEmbedResolver(zerolog.Nop()).Resolve(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "http://"+host+"/video.m3u8" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestEmbedResolver_NoMediaIsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>nothing here</html>`))
	}))
	defer ts.Close()

	_, err := NewEmbedResolver(zerolog.Nop()).Resolve(context.Background(), ts.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEmbedResolver_RejectsRelativeInput(t *testing.T) {
	_, err := NewEmbedResolver(zerolog.Nop()).Resolve(context.Background(), "/video")
	var ce *CodedError
	if !errors.As(err, &ce) || ce.Code != "invalid_request" {
		t.Fatalf("expected invalid_request, got %v", err)
	}
}

func TestEmbedResolver_ResolveSourcesKeepsUnresolved(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte(`<video src="/v.mp4"></video>`))
			return
		}
		_, _ = w.Write([]byte(`<p>rien</p>`))
	}))
	defer ts.Close()

	in := []domain.AnimeSamaSource{
		{Source: "sibnet", URL: ts.URL + "/ok"},
		{Source: "vidmoly", URL: ts.URL + "/ko"},
	}
	out := NewEmbedResolver(zerolog.Nop()).ResolveSources(context.Background(), in)
	if out[0].URL != ts.URL+"/v.mp4" {
		t.Fatalf("expected resolved url, got %q", out[0].URL)
	}
	if out[1].URL != ts.URL+"/ko" {
		t.Fatalf("expected untouched url, got %q", out[1].URL)
	}
	if in[0].URL != ts.URL+"/ok" {
		t.Fatalf("input must not be mutated")
	}
}

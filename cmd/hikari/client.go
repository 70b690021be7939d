package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// apiClient parle à hikari-server et imprime les réponses JSON indentées.
type apiClient struct {
	baseURL string
	http    *http.Client
	out     io.Writer
}

func newAPIClient(baseURL string, timeout time.Duration, out io.Writer) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		out:     out,
	}
}

// call envoie body (encodé en JSON si non nil) et imprime la réponse.
// Un statut >= 400 est renvoyé comme erreur après impression.
func (c *apiClient) call(ctx context.Context, method, path string, body any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.print(b)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return nil
}

func (c *apiClient) print(b []byte) {
	if len(bytes.TrimSpace(b)) == 0 {
		return
	}
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		if out, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			fmt.Fprintln(c.out, string(out))
			return
		}
	}
	fmt.Fprintln(c.out, strings.TrimSpace(string(b)))
}

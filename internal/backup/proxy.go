// Package backup forwards dashboard requests to the sibling backup
// service. The proxy is a deliberate pass-through: it forwards the
// caller's Authorization header and body verbatim and hands the backup
// API's JSON back untouched.
package backup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docker/go-connections/tlsconfig"

	"github.com/nvrdash/nvrdash/internal/config"
)

// Proxy is an HTTP client for the backup service.
type Proxy struct {
	baseURL     string
	client      *http.Client
	getTimeout  time.Duration
	postTimeout time.Duration
}

// New builds a proxy for the configured backup service. The service
// lives on the runtime gateway with a self-signed certificate, so
// verification is skipped for this one origin.
func New(cfg config.BackupConfig) (*Proxy, error) {
	tlsCfg, err := tlsconfig.Client(tlsconfig.Options{InsecureSkipVerify: true})
	if err != nil {
		return nil, fmt.Errorf("backup proxy TLS: %w", err)
	}
	return &Proxy{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		client:      &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}},
		getTimeout:  cfg.GetTimeout,
		postTimeout: cfg.PostTimeout,
	}, nil
}

// Get forwards a GET and returns the response body.
func (p *Proxy) Get(ctx context.Context, path, authorization string) ([]byte, error) {
	return p.forward(ctx, http.MethodGet, path, authorization, nil, p.getTimeout)
}

// Post forwards a POST with a JSON body and returns the response body.
func (p *Proxy) Post(ctx context.Context, path, authorization string, body io.Reader) ([]byte, error) {
	return p.forward(ctx, http.MethodPost, path, authorization, body, p.postTimeout)
}

func (p *Proxy) forward(ctx context.Context, method, path, authorization string, body io.Reader, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backup request: %w", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backup service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backup response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("backup service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

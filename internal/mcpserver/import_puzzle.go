package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/puzzle"
)

const maxPuzzleSize = 1 << 20 // 1 MB

var mimeToExt = map[string]string{
	"application/json":   ".json",
	"text/json":          ".json",
	"application/yaml":   ".yaml",
	"application/x-yaml": ".yaml",
	"text/yaml":          ".yaml",
	"text/x-yaml":        ".yaml",
}

type importResult struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

func (s *Server) importPuzzle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	rawURL := req.GetString("url", "")
	if (content == "") == (rawURL == "") {
		return mcp.NewToolResultError("exactly one of content or url is required"), nil
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch {
	case content != "":
		data = []byte(content)
	case strings.HasPrefix(rawURL, "data:"):
		data, ext, err = decodeDataURI(rawURL)
	default:
		data, ext, err = fetchHTTP(ctx, rawURL)
		if u, perr := url.Parse(rawURL); perr == nil && puzzle.IsPuzzleFile(u.Path) {
			ext = strings.ToLower(path.Ext(u.Path))
		}
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch strings.ToLower(req.GetString("format", "")) {
	case "json":
		ext = ".json"
	case "yaml", "yml":
		ext = ".yaml"
	case "":
		if ext == "" {
			ext = ".json"
		}
	default:
		return mcp.NewToolResultError("format must be json or yaml"), nil
	}

	d, err := s.puzzles.CreatePuzzle(ctx, data, ext)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) || errors.Is(err, apperr.ErrInvalidPuzzle) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	out, _ := json.Marshal(importResult{ID: d.ID, Path: d.Path, Name: d.Name, Entries: len(d.Entries)})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}

	meta := rest[:commaIdx]
	encoded := rest[commaIdx+1:]

	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxPuzzleSize {
		return nil, "", fmt.Errorf("puzzle too large: %d bytes (max %d)", len(data), maxPuzzleSize)
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	return data, mimeToExt[mime], nil
}

// fetchHTTP downloads a puzzle from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}

	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPuzzleSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxPuzzleSize {
		return nil, "", fmt.Errorf("puzzle too large: exceeds %d bytes", maxPuzzleSize)
	}

	ct := resp.Header.Get("Content-Type")
	return data, mimeToExt[strings.TrimSpace(strings.Split(ct, ";")[0])], nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	// AWS/GCP/Azure metadata endpoint.
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

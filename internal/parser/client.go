// Package parser produces the markdown ground truth a document is chunked
// from. A configured parse service does the conversion; without one,
// markdown and plain text pass through and PDFs fall back to local
// extraction.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chunkforge/internal/util"
)

const (
	MethodLlamaParse = "llamaparse"
	MethodMarkitdown = "markitdown"
	MethodDocling    = "docling"
)

type Result struct {
	Markdown  string
	PageCount int
}

type Client struct {
	baseURL string
	method  string
	client  *http.Client
}

func NewClient(baseURL, method string) *Client {
	if method == "" {
		method = MethodLlamaParse
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		method:  method,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Remote reports whether an external parse service is configured.
func (c *Client) Remote() bool { return c.baseURL != "" }

// Parse converts one file to markdown. Content comes back normalized and
// sanitized, ready to store as the document's immutable ground truth.
func (c *Client) Parse(ctx context.Context, path string) (Result, error) {
	if !c.Remote() {
		return ParseLocal(path)
	}
	res, err := c.parseRemote(ctx, path)
	if err != nil {
		return Result{}, err
	}
	return finishResult(res)
}

func (c *Client) parseRemote(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open file for parse: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return Result{}, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return Result{}, fmt.Errorf("copy file into multipart: %w", err)
	}
	if err := mw.WriteField("parser_method", c.method); err != nil {
		return Result{}, fmt.Errorf("write multipart field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return Result{}, fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call parse service: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("parse service status %d: %w", resp.StatusCode, util.ErrParserUnavailable)
	}
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("parse service error %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Markdown  string `json:"markdown"`
		PageCount int    `json:"pageCount"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode parse response: %w", err)
	}
	return Result{Markdown: parsed.Markdown, PageCount: parsed.PageCount}, nil
}

func finishResult(res Result) (Result, error) {
	res.Markdown = util.SanitizeText(util.NormalizeNewlines(res.Markdown))
	if res.Markdown == "" {
		return Result{}, util.ErrNoExtractableText
	}
	return res, nil
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// webClient bounds how long a page fetch may take.
var webClient = &http.Client{Timeout: 30 * time.Second}

// isWebURL checks if the target is an HTTP/HTTPS URL.
func isWebURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// fetchWebPage downloads an HTML page, converts it to Markdown and writes
// the result as page.md in a fresh temporary directory, so the normal
// pipeline counts it like any source tree. The caller removes the
// directory when done.
func fetchWebPage(target string) (string, error) {
	res, err := webClient.Get(target)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", target, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", target, res.StatusCode)
	}
	contentType := res.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("unsupported content type (%s) for URL %s", contentType, target)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", target, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", target, err)
	}
	// Script and style bodies are not page text.
	doc.Find("script, style, noscript").Remove()
	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML from %s: %w", target, err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown for %s: %w", target, err)
	}

	tempDir, err := os.MkdirTemp("", "ctxfit-web-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	pagePath := filepath.Join(tempDir, "page.md")
	if err := os.WriteFile(pagePath, []byte(markdown), 0644); err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to write %s: %w", pagePath, err)
	}
	return tempDir, nil
}

package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"docproof/pkg/platform/sentinel"
)

// HTTPGateway is the production Gateway client. It speaks the pinning
// service's REST API: multipart POST /files to pin, POST /access-links to
// mint a temporary URL for private content.
type HTTPGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// HTTPGatewayOption configures the client.
type HTTPGatewayOption func(*HTTPGateway)

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(client *http.Client) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		if client != nil {
			g.client = client
		}
	}
}

func NewHTTPGateway(baseURL, token string, opts ...HTTPGatewayOption) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pin uploads a file and returns its content id.
func (g *HTTPGateway) Pin(ctx context.Context, upload Upload) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
	header.Set("Content-Type", upload.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("build pin request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.token)

	var result struct {
		CID string `json:"cid"`
	}
	if err := g.do(req, &result); err != nil {
		return "", err
	}
	if result.CID == "" {
		return "", fmt.Errorf("pin response missing cid")
	}
	return result.CID, nil
}

// AccessLink mints a temporary URL for a pinned file.
func (g *HTTPGateway) AccessLink(ctx context.Context, cid string, expiry time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"cid":     cid,
		"expires": int(expiry.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("build access link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/access-links", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build access link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	var result struct {
		URL string `json:"url"`
	}
	if err := g.do(req, &result); err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", fmt.Errorf("access link response missing url")
	}
	return result.URL, nil
}

func (g *HTTPGateway) do(req *http.Request, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: gateway returned %d", sentinel.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway rejected request: %d %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

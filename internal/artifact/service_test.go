package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "docproof/pkg/domain-errors"
)

func pdfUpload(size int) Upload {
	return Upload{
		Filename:    "certificate.pdf",
		ContentType: "application/pdf",
		Data:        bytes.Repeat([]byte{0x25}, size),
	}
}

func TestUploadValidate(t *testing.T) {
	tests := []struct {
		name   string
		upload Upload
		valid  bool
	}{
		{"pdf ok", pdfUpload(1024), true},
		{"png ok", Upload{Filename: "c.png", ContentType: "image/png", Data: []byte{1}}, true},
		{"jpeg ok", Upload{Filename: "c.jpg", ContentType: "image/jpeg", Data: []byte{1}}, true},
		{"empty", Upload{Filename: "c.pdf", ContentType: "application/pdf"}, false},
		{"too large", pdfUpload(MaxUploadSize + 1), false},
		{"wrong type", Upload{Filename: "c.gif", ContentType: "image/gif", Data: []byte{1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.upload.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
			}
		})
	}
}

func TestStoreAndViewWithMemoryGateway(t *testing.T) {
	svc := NewService(NewInMemoryGateway())

	cid, err := svc.Store(context.Background(), pdfUpload(64))
	require.NoError(t, err)
	require.NotEmpty(t, cid)

	// Same bytes pin to the same content id.
	again, err := svc.Store(context.Background(), pdfUpload(64))
	require.NoError(t, err)
	assert.Equal(t, cid, again)

	url, expiry, err := svc.View(context.Background(), cid)
	require.NoError(t, err)
	assert.Contains(t, url, cid)
	assert.Equal(t, DefaultLinkExpiry, expiry)
}

func TestViewUnknownCIDIsNotFound(t *testing.T) {
	svc := NewService(NewInMemoryGateway())

	_, _, err := svc.View(context.Background(), "no-such-cid")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))

	_, _, err = svc.View(context.Background(), "  ")
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

type mapLinkCache struct {
	mu    sync.Mutex
	links map[string]string
}

func (c *mapLinkCache) Get(_ context.Context, cid string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	url, ok := c.links[cid]
	return url, ok, nil
}

func (c *mapLinkCache) Set(_ context.Context, cid, url string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.links == nil {
		c.links = make(map[string]string)
	}
	c.links[cid] = url
	return nil
}

type countingGateway struct {
	Gateway
	linkCalls int
}

func (g *countingGateway) AccessLink(ctx context.Context, cid string, expiry time.Duration) (string, error) {
	g.linkCalls++
	return g.Gateway.AccessLink(ctx, cid, expiry)
}

func TestViewUsesLinkCache(t *testing.T) {
	gateway := &countingGateway{Gateway: NewInMemoryGateway()}
	svc := NewService(gateway, WithLinkCache(&mapLinkCache{}))

	cid, err := svc.Store(context.Background(), pdfUpload(64))
	require.NoError(t, err)

	first, _, err := svc.View(context.Background(), cid)
	require.NoError(t, err)
	second, _, err := svc.View(context.Background(), cid)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gateway.linkCalls)
}

func TestHTTPGatewayRoundTrip(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/files":
			require.NoError(t, r.ParseMultipartForm(MaxUploadSize))
			_, header, err := r.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "certificate.pdf", header.Filename)
			json.NewEncoder(w).Encode(map[string]string{"cid": "bafy-test-1"})
		case "/access-links":
			var req struct {
				CID     string `json:"cid"`
				Expires int    `json:"expires"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "bafy-test-1", req.CID)
			assert.Equal(t, 30, req.Expires)
			json.NewEncoder(w).Encode(map[string]string{"url": "https://gateway.example/tmp/bafy-test-1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, "secret-token", WithHTTPClient(server.Client()))

	cid, err := gw.Pin(context.Background(), pdfUpload(64))
	require.NoError(t, err)
	assert.Equal(t, "bafy-test-1", cid)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	url, err := gw.AccessLink(context.Background(), cid, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/tmp/bafy-test-1", url)
}

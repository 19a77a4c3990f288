package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"docproof/pkg/platform/sentinel"
)

// InMemoryGateway is a content-addressed fake for tests and local runs.
// CIDs are the sha256 of the file bytes, so pinning the same content twice
// yields the same id, matching real gateway behavior.
type InMemoryGateway struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewInMemoryGateway() *InMemoryGateway {
	return &InMemoryGateway{files: make(map[string][]byte)}
}

func (g *InMemoryGateway) Pin(_ context.Context, upload Upload) (string, error) {
	sum := sha256.Sum256(upload.Data)
	cid := "mem-" + hex.EncodeToString(sum[:])

	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[cid] = append([]byte(nil), upload.Data...)
	return cid, nil
}

func (g *InMemoryGateway) AccessLink(_ context.Context, cid string, expiry time.Duration) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.files[cid]; !ok {
		return "", sentinel.ErrNotFound
	}
	return fmt.Sprintf("memory://%s?expires=%d", cid, int(expiry.Seconds())), nil
}

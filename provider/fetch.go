package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unipkg/unipkg/cache"
	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/observability"
)

// metadataTTL bounds how long a registry document is served from cache.
// Published version lists change slowly; five minutes keeps a resolve
// session consistent without going stale across sessions.
const metadataTTL = 5 * time.Minute

const metadataCacheEntries = 2048

// fetcher retrieves registry JSON documents with an LRU cache in front and
// singleflight coalescing for concurrent requests to the same URL. A
// resolve walk reaching the same package through several dependency paths
// hits the registry once.
type fetcher struct {
	provider string
	client   *unihttp.Client
	cache    *cache.Memory
	group    singleflight.Group
}

func newFetcher(client *unihttp.Client, providerID, cacheName string) *fetcher {
	return &fetcher{
		provider: providerID,
		client:   client,
		cache:    cache.NewMemory(cacheName, metadataCacheEntries),
	}
}

// getJSON fetches url and decodes the document into v, recording the call
// as a provider span. Cache hits are spanned too so a trace shows every
// metadata lookup, not just the ones that reached the registry.
func (f *fetcher) getJSON(ctx context.Context, operation, name, url string, v any) error {
	ctx, span := observability.StartProviderCallSpan(ctx, f.provider, operation, name)
	err := f.fetchJSON(ctx, url, v)
	observability.EndSpan(span, err)
	return err
}

func (f *fetcher) fetchJSON(ctx context.Context, url string, v any) error {
	if raw, ok := f.cache.Get(url); ok {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("decode cached %s: %w", url, err)
		}
		return nil
	}

	raw, err, _ := f.group.Do(url, func() (any, error) {
		body, err := f.client.GetBytes(ctx, url)
		if err != nil {
			return nil, err
		}
		f.cache.Set(url, body, metadataTTL)
		return body, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw.([]byte), v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"slices"
	"strings"
	"sync"
)

// maxCachedResponses bounds the conditional GET cache. A deployment
// reads a handful of list files, so eviction is rare.
const maxCachedResponses = 32

type cachedResponse struct {
	etag string
	body []byte
}

// responseCache remembers the last ETag and body per URL so repeated
// reads of an unchanged list cost a 304 instead of rate limit quota.
// The oldest entry is evicted when full.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]cachedResponse
	order   []string
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string]cachedResponse)}
}

// lookup returns the cached entry for url.
func (cache *responseCache) lookup(url string) (cachedResponse, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	return entry, ok
}

func (cache *responseCache) store(url, etag string, body []byte) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if _, exists := cache.entries[url]; !exists {
		if len(cache.order) >= maxCachedResponses {
			delete(cache.entries, cache.order[0])
			cache.order = cache.order[1:]
		}
		cache.order = append(cache.order, url)
	}
	cache.entries[url] = cachedResponse{etag: etag, body: body}
}

// forget drops every entry under prefix. Called after a write.
func (cache *responseCache) forget(prefix string) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.order = slices.DeleteFunc(cache.order, func(url string) bool {
		if strings.HasPrefix(url, prefix) {
			delete(cache.entries, url)
			return true
		}
		return false
	})
}

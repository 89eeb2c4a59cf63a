package respcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is a stored formatted response. Entries are immutable once
// written and drop out on TTL expiry or LRU pressure.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

type Cache struct {
	lru *expirable.LRU[string, Entry]
}

func New(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, Entry](size, nil, ttl)}
}

func (c *Cache) Get(key string) (Entry, bool) {
	return c.lru.Get(key)
}

func (c *Cache) Put(key string, e Entry) {
	c.lru.Add(key, e)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

var ErrKey = errors.New("cannot derive cache key")

// Key identifies a request's semantic identity: path plus parameters
// with names sorted and values URL-encoded. Parameter order on the wire
// never changes the key; a different value always does. When the URL
// carries no query, a JSON object body supplies the parameters instead.
func Key(r *http.Request) (string, error) {
	params := map[string][]string(r.URL.Query())
	if len(params) == 0 && r.Body != nil && r.ContentLength > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrKey, err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", fmt.Errorf("%w: %v", ErrKey, err)
		}
		params = make(map[string][]string, len(parsed))
		for k, v := range parsed {
			params[k] = []string{fmt.Sprint(v)}
		}
	}
	if len(params) == 0 {
		return r.URL.Path, nil
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(params))
	for _, name := range names {
		for _, v := range params[name] {
			pairs = append(pairs, name+"="+url.QueryEscape(v))
		}
	}
	return r.URL.Path + "?" + strings.Join(pairs, "&"), nil
}

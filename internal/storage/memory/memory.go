// Package memory provides an in-process storage gateway, used as the
// default backend and as the fake in tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"organizador/internal/storage"
)

// Gateway keeps serialized documents in a map. Documents pass through the
// same Encode path as the durable gateway, so quota and serialization
// failures behave identically.
type Gateway struct {
	mu        sync.Mutex
	namespace string
	docs      map[string]string

	// FailPuts forces every Put to fail with ErrQuotaExceeded. Tests use
	// it to exercise the persist-failure path of the state stores.
	FailPuts bool
}

// New returns an empty gateway under the default namespace.
func New() *Gateway {
	return NewNS(storage.DefaultNamespace)
}

// NewNS returns an empty gateway under an explicit namespace.
func NewNS(namespace string) *Gateway {
	return &Gateway{namespace: namespace, docs: make(map[string]string)}
}

func (g *Gateway) key(name string) string {
	return storage.NamespacedKey(g.namespace, name)
}

func (g *Gateway) Namespace() string {
	return g.namespace
}

func (g *Gateway) Put(_ context.Context, name string, doc any) error {
	data, err := storage.Encode(doc)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailPuts {
		return storage.ErrQuotaExceeded
	}
	g.docs[g.key(name)] = string(data)
	return nil
}

func (g *Gateway) Get(_ context.Context, name string, out any) (bool, error) {
	g.mu.Lock()
	value, ok := g.docs[g.key(name)]
	g.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, nil
	}
	return true, nil
}

func (g *Gateway) Delete(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.docs, g.key(name))
	return nil
}

func (g *Gateway) Keys(_ context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.docs))
	for k := range g.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (g *Gateway) GetRaw(_ context.Context, key string) (json.RawMessage, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	value, ok := g.docs[key]
	if !ok {
		return nil, false, nil
	}
	return json.RawMessage(value), true, nil
}

// Corrupt overwrites a stored document with text that does not parse,
// for exercising the fall-back-to-default path.
func (g *Gateway) Corrupt(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.docs[g.key(name)] = "{not json"
}

var _ storage.Gateway = (*Gateway)(nil)

// Package storage persists whole JSON documents under namespaced keys.
//
// Each feature owns exactly one document and rewrites it in full on every
// mutation; the gateway never performs partial updates. A failed Put leaves
// the previously stored document untouched.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// DefaultNamespace prefixes every stored key so logical documents from
// different applications sharing one database never collide.
const DefaultNamespace = "organizadorPessoal"

// MaxDocumentSize caps a single serialized document at 5 MiB, mirroring the
// storage budget of the environment the documents originated in.
const MaxDocumentSize = 5 * 1024 * 1024

// Logical document names.
const (
	KeyStudy   = "studyData"
	KeyFinance = "financeData"
	KeyBackup  = "backup"
	KeyTheme   = "theme"
)

var (
	// ErrQuotaExceeded reports a Put whose serialized document is over budget.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrEncode reports a document that could not be serialized.
	ErrEncode = errors.New("encode document")
)

// Gateway is the storage port every feature state store writes through.
//
// Get fills out from the stored document and reports found=false (with a nil
// error) when the key is missing or the stored value does not parse; callers
// fall back to their empty default in that case. Put and Delete report real
// failures so the caller can keep its in-memory state behind persisted state.
type Gateway interface {
	Put(ctx context.Context, name string, doc any) error
	Get(ctx context.Context, name string, out any) (found bool, err error)
	Delete(ctx context.Context, name string) error

	// Keys lists every stored key under the gateway's namespace,
	// namespace prefix included.
	Keys(ctx context.Context) ([]string, error)
	// GetRaw returns the raw serialized document for a namespaced key as
	// returned by Keys.
	GetRaw(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Namespace is the prefix this gateway stores under.
	Namespace() string
}

// NamespacedKey returns the fully prefixed storage key for a logical
// document name under the given namespace.
func NamespacedKey(namespace, name string) string {
	return namespace + "_" + name
}

// SplitKey strips the namespace prefix from a storage key, reporting
// ok=false for keys from another namespace.
func SplitKey(namespace, key string) (name string, ok bool) {
	return strings.CutPrefix(key, namespace+"_")
}

// Encode serializes a document and enforces the size quota. Shared by
// gateway implementations so both fail the same way.
func Encode(doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, ErrQuotaExceeded
	}
	return data, nil
}

// Package kv provides the string key/value storage that backs per-device
// drafts and pending actions.
package kv

import (
	"context"
	"strings"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// GetDel returns the value for key and removes it in one step.
	GetDel(ctx context.Context, key string) (string, bool, error)
}

// Namespace returns a view of store whose keys are prefixed with ns.
func Namespace(store Store, ns string) Store {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return store
	}
	return &namespaced{store: store, prefix: ns + ":"}
}

type namespaced struct {
	store  Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.prefix+key)
}

func (n *namespaced) GetDel(ctx context.Context, key string) (string, bool, error) {
	return n.store.GetDel(ctx, n.prefix+key)
}

// Device returns the namespace holding one device's local state.
func Device(store Store, deviceID string) Store {
	return Namespace(store, "device:"+strings.TrimSpace(deviceID))
}

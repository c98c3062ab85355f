// Package registry maps backend tags to adapter constructors. Selection is
// an explicit lookup; an unknown tag is an error, never a fallback.
package registry

import (
	"fmt"
	"sort"

	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

// BuildContext carries the per-tenant inputs an adapter constructor needs.
type BuildContext struct {
	TenantID   string
	Principal  PrincipalRef
	Connection map[string]any
	DryRun     bool
}

// PrincipalRef avoids importing entities here; constructors resolve the full
// principal themselves.
type PrincipalRef struct {
	PrincipalID string
	Name        string
	AdapterIDs  map[string]string
}

// Constructor builds an adapter for one tenant/principal pair.
type Constructor func(bc BuildContext) (ports.AdServerAdapter, error)

type Entry struct {
	Tag         string
	DisplayName string
	BuyIDPrefix string
	New         Constructor
}

// Registry is an immutable tag -> entry table built once at bootstrap.
type Registry struct {
	entries map[string]Entry
}

func New(entries ...Entry) (*Registry, error) {
	table := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if entry.Tag == "" || entry.New == nil {
			return nil, fmt.Errorf("registry entry %q is incomplete", entry.Tag)
		}
		if _, ok := table[entry.Tag]; ok {
			return nil, fmt.Errorf("duplicate registry entry %q", entry.Tag)
		}
		table[entry.Tag] = entry
	}
	return &Registry{entries: table}, nil
}

// Build constructs the adapter registered under tag.
func (r *Registry) Build(tag string, bc BuildContext) (ports.AdServerAdapter, error) {
	entry, ok := r.entries[tag]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", tag, domainerrors.ErrUnknownBackend)
	}
	return entry.New(bc)
}

// Lookup returns the entry metadata without constructing an adapter.
func (r *Registry) Lookup(tag string) (Entry, bool) {
	entry, ok := r.entries[tag]
	return entry, ok
}

// Tags lists registered backend tags in stable order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

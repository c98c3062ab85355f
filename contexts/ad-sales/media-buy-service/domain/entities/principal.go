package entities

import "strings"

// Principal is the advertiser identity making requests. It carries the
// per-backend external identifier mapping and is immutable for the duration
// of a request; ownership belongs to the authentication layer.
type Principal struct {
	PrincipalID string
	Name        string
	// AdapterIDs maps backend tag to the advertiser id known to that backend.
	AdapterIDs map[string]string
}

// AdapterID resolves the external advertiser id for a backend.
func (p Principal) AdapterID(backend string) (string, bool) {
	id, ok := p.AdapterIDs[strings.TrimSpace(backend)]
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

package bridge

import "encoding/json"

// Manifest describes the capabilities of the addon.
// See https://github.com/Stremio/stremio-addon-sdk/blob/f6f1f2a8b627b9d4f2c62b003b251d98adadbebe/docs/api/responses/manifest.md
type Manifest struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"` // URL

	// Short form of resources, e.g. "stream".
	// Torrentio and others only declare the names, which IPTV clients like UHF handle best.
	Resources []string `json:"resources"`

	Types []string `json:"types"` // Stremio supports "movie", "series", "channel" and "tv"
	// An empty slice is required for serializing to a JSON that Stremio expects
	Catalogs []CatalogItem `json:"catalogs"`

	// Optional
	IDprefixes    []string      `json:"idPrefixes,omitempty"`
	BehaviorHints BehaviorHints `json:"behaviorHints"`
}

// clone returns a deep copy of m.
func (m Manifest) clone() Manifest {
	return Manifest{
		ID:          m.ID,
		Version:     m.Version,
		Name:        m.Name,
		Description: m.Description,
		Logo:        m.Logo,

		Resources: cloneStrings(m.Resources),

		Types:    cloneStrings(m.Types),
		Catalogs: cloneCatalogs(m.Catalogs),

		IDprefixes:    cloneStrings(m.IDprefixes),
		BehaviorHints: m.BehaviorHints,
	}
}

// BehaviorHints of the manifest.
// Unlike in other addons the two configuration flags are always serialized, because some clients expect them.
type BehaviorHints struct {
	Adult                 bool `json:"adult,omitempty"`
	P2P                   bool `json:"p2p,omitempty"`
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired"`
}

// CatalogItem represents a catalog.
type CatalogItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// streamsResponse is the body of every stream response, no matter if the lookup succeeded or not.
type streamsResponse struct {
	Streams []json.RawMessage `json:"streams"`
}

type healthResponse struct {
	Status               string `json:"status"`
	Service              string `json:"service"`
	PlexioBaseConfigured bool   `json:"plexioBaseConfigured"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	res := make([]string, len(s))
	copy(res, s)
	return res
}

func cloneCatalogs(c []CatalogItem) []CatalogItem {
	if c == nil {
		return nil
	}
	res := make([]CatalogItem, len(c))
	copy(res, c)
	return res
}

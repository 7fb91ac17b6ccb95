package bridge

// Version of the bridge, as reported in the manifest.
const Version = "0.0.2"

// ServiceName is reported by the root endpoint.
const ServiceName = "plexio-uhf-bridge"

// DefaultManifest is the manifest the bridge serves.
// It's made to look like Torrentio's, because UHF already accepts that one.
var DefaultManifest = Manifest{
	ID:          "com.p3u1.plexio.bridge",
	Version:     Version,
	Name:        "Plexio Bridge (Streams)",
	Description: "Exposes your Plexio addon as a stream-only Stremio addon for IPTV/UHF clients.",
	Logo:        "https://plexio.stream/favicon.ico",

	Resources: []string{"stream"},
	Types:     []string{"movie", "series"},
	Catalogs:  []CatalogItem{},

	// These IDs are typically IMDb IDs, same as many public addons
	IDprefixes: []string{"tt"},

	BehaviorHints: BehaviorHints{
		Configurable:          false,
		ConfigurationRequired: false,
	},
}

// GetManifest returns a copy of the DefaultManifest.
// Callers can modify the copy without affecting the manifest the bridge serves.
func GetManifest() Manifest {
	return DefaultManifest.clone()
}

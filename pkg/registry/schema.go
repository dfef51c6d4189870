// pkg/registry/schema.go
package registry

// TemplateRegistry is the manifest of decree templates available to the engine.
type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

type Template struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Version     string   `json:"version"`
	AssetKey    string   `json:"assetKey,omitempty"` // defaults to <id>.docx
	Active      bool     `json:"active"`
	Tags        []string `json:"tags,omitempty"`
}

package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port      int
	Bind      string
	PluginDir string
	Strict    bool
	Parallel  int
}

// PluginSummary is the list-level view of a loaded plugin.
type PluginSummary struct {
	Name      string   `json:"name"`
	Author    string   `json:"author,omitempty"`
	Version   float32  `json:"version"`
	Records   int      `json:"records"`
	Groups    int      `json:"groups"`
	Masters   []string `json:"masters,omitempty"`
	Localized bool     `json:"localized"`
}

// RecordSummary is the wire view of one record.
type RecordSummary struct {
	Tag      string `json:"tag"`
	FormID   string `json:"form_id"`
	EditorID string `json:"editor_id,omitempty"`
	Fields   int    `json:"fields"`
	Flags    uint32 `json:"flags,omitempty"`
	Deleted  bool   `json:"deleted,omitempty"`
}

// GroupSummary is the wire view of one top-level group.
type GroupSummary struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Records int    `json:"records"`
}

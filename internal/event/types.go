package event

// ConfigInvalidatedData is the data for config.invalidated events.
// Scope is "default", "workspace", "source", or "all".
type ConfigInvalidatedData struct {
	Scope     string `json:"scope"`
	Workspace string `json:"workspace,omitempty"`
	Source    string `json:"source,omitempty"`
}

// ConfigReloadedData is the data for config.reloaded events.
type ConfigReloadedData struct {
	Workspace string   `json:"workspace"`
	Sources   []string `json:"sources,omitempty"`
}

// DecisionDeniedData is the data for decision.denied events.
type DecisionDeniedData struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // "bash" | "mcp" | "api" | "write"
	Action   string `json:"action"`
	Message  string `json:"message"`
	NearMiss string `json:"nearMiss,omitempty"`
}

package registry

import "time"

// State is the lifecycle state of a server record. The only valid
// transitions are Defined -> Scaffolded -> Removed; Removed is terminal.
type State string

const (
	// StateDefined means the record exists in the registry but nothing has
	// been materialized on disk yet.
	StateDefined State = "defined"
	// StateScaffolded means the project directory exists and contains at
	// least the template's required files.
	StateScaffolded State = "scaffolded"
	// StateRemoved marks a tombstone: the directory is gone, the record is
	// retained for audit until purged.
	StateRemoved State = "removed"
)

// Live reports whether the record occupies its id and path. Tombstones are
// not live.
func (s State) Live() bool {
	return s == StateDefined || s == StateScaffolded
}

// ToolParam describes one parameter of a generated tool.
type ToolParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ToolInfo describes a tool that has been added to a scaffolded server.
type ToolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ToolParam `json:"parameters,omitempty"`
}

// ServerRecord is one managed server project. Name is the registry key and
// doubles as the directory name under the servers root; ID, Location,
// TemplateKind, and CreatedAt are set at creation and never mutated
// afterward.
type ServerRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	State        State      `json:"state"`
	TemplateKind string     `json:"template"`
	CreatedAt    time.Time  `json:"created_at"`
	Tools        []ToolInfo `json:"tools,omitempty"`
}

// ToolCount returns the number of tools recorded for this server.
func (r ServerRecord) ToolCount() int {
	return len(r.Tools)
}

// clone returns a deep copy so callers can never mutate registry state
// through a returned record.
func (r ServerRecord) clone() ServerRecord {
	out := r
	if r.Tools != nil {
		out.Tools = make([]ToolInfo, len(r.Tools))
		copy(out.Tools, r.Tools)
		for i, tool := range r.Tools {
			if tool.Parameters != nil {
				params := make([]ToolParam, len(tool.Parameters))
				copy(params, tool.Parameters)
				out.Tools[i].Parameters = params
			}
		}
	}
	return out
}

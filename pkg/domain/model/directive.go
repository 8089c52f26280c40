package model

// Directive is the structured payload sent to the generative backend. All
// four contract fields are plain strings; empty is the floor, never null.
type Directive struct {
	// SchemaVersion identifies the policy table that produced Instruction.
	// It travels out of band (request header) so the JSON body keeps
	// exactly the four contract fields.
	SchemaVersion string `json:"-"`
	AgentRole     string `json:"agent_role"`
	Background    string `json:"background"`
	Context       string `json:"context"`
	Instruction   string `json:"instruction"`
}

// DirectiveInput is everything the compiler needs for one directive
type DirectiveInput struct {
	Persona    PersonaConfig
	Background string
	Transcript Transcript
}

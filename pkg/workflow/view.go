package workflow

import "github.com/goliatone/go-attestform/pkg/schema"

// ValueInput is one labelled input of the attestation value form.
type ValueInput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ActionView is the render state of one action's control.
type ActionView struct {
	Busy    bool   `json:"busy"`
	Message string `json:"message,omitempty"`
}

// FieldView is one entry of the builder list.
type FieldView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// View is a consistent snapshot of the workflow for rendering.
type View struct {
	SchemaName        string                `json:"schemaName"`
	PendingName       string                `json:"pendingName"`
	PendingType       string                `json:"pendingType"`
	Types             []string              `json:"types"`
	Fields            []FieldView           `json:"fields"`
	Actions           map[Action]ActionView `json:"actions"`
	SchemaID          string                `json:"schemaId,omitempty"`
	Inputs            []ValueInput          `json:"inputs"`
	CreatedSchemaID   string                `json:"createdSchemaId,omitempty"`
	LastAttestationID string                `json:"lastAttestationId,omitempty"`
}

// Action returns the view of a single action.
func (v View) Action(action Action) ActionView {
	return v.Actions[action]
}

// Snapshot captures the current state.
func (w *Workflow) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	pendingName, pendingType := w.builder.Pending()
	view := View{
		SchemaName:        w.schemaName,
		PendingName:       pendingName,
		PendingType:       string(pendingType),
		Actions:           make(map[Action]ActionView, len(w.actions)),
		SchemaID:          w.schemaID,
		CreatedSchemaID:   w.createdSchemaID,
		LastAttestationID: w.lastAttestationID,
	}
	for _, t := range schema.Types() {
		view.Types = append(view.Types, string(t))
	}
	for _, f := range w.builder.Fields() {
		view.Fields = append(view.Fields, FieldView{
			ID:    f.ID,
			Name:  f.Name,
			Type:  string(f.Type),
			Label: f.Label(),
		})
	}
	for action, state := range w.actions {
		view.Actions[action] = ActionView{Busy: state.inFlight > 0, Message: state.message}
	}
	for _, f := range w.valueFields {
		view.Inputs = append(view.Inputs, ValueInput{
			Name:  f.Name,
			Type:  string(f.Type),
			Label: f.Name + ":",
			Value: w.values[f.Name],
		})
	}
	return view
}

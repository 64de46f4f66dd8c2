package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/schema"
)

// DefaultSchemaName is used for schema registration when no name is configured.
const DefaultSchemaName = "SDK Test"

// Option configures a Workflow.
type Option func(*Workflow)

// WithSchemaName sets the fixed name sent with every CreateSchema call.
func WithSchemaName(name string) Option {
	return func(w *Workflow) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			w.schemaName = trimmed
		}
	}
}

// WithLogger sets the logger used to record service failures.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithBuilderOptions forwards options to the underlying field builder.
func WithBuilderOptions(options ...schema.BuilderOption) Option {
	return func(w *Workflow) {
		w.builderOptions = append(w.builderOptions, options...)
	}
}

// WithDoubleSubmitGuard makes calls for a busy action fail with ErrBusy.
func WithDoubleSubmitGuard(enabled bool) Option {
	return func(w *Workflow) {
		w.guard = enabled
	}
}

type actionState struct {
	issued   uint64
	inFlight int
	message  string
}

// Workflow is safe for concurrent use. The mutex is never held while a
// service call is outstanding.
type Workflow struct {
	client         attest.Client
	schemaName     string
	logger         *zap.Logger
	guard          bool
	builderOptions []schema.BuilderOption

	mu                sync.Mutex
	builder           *schema.Builder
	actions           map[Action]*actionState
	schemaID          string
	valueFields       []schema.Field
	values            map[string]string
	createdSchemaID   string
	lastAttestationID string
}

// New constructs a workflow around an injected service client.
func New(client attest.Client, options ...Option) *Workflow {
	w := &Workflow{
		client:     client,
		schemaName: DefaultSchemaName,
		logger:     zap.NewNop(),
		actions:    make(map[Action]*actionState, 3),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	w.builder = schema.NewBuilder(w.builderOptions...)
	for _, action := range Actions() {
		w.actions[action] = &actionState{}
	}
	return w
}

// SchemaName returns the name used for schema registration.
func (w *Workflow) SchemaName() string {
	return w.schemaName
}

// StageField sets the pending field name.
func (w *Workflow) StageField(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.builder.Stage(name)
}

// SelectType sets the pending field type.
func (w *Workflow) SelectType(t schema.FieldType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.builder.Select(t)
}

// AddField appends the staged field. Empty names are ignored.
func (w *Workflow) AddField() (schema.Field, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.builder.Add()
}

// RemoveField removes the field with the given identity.
func (w *Workflow) RemoveField(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.builder.Remove(id)
}

// Fields returns the current ordered field list.
func (w *Workflow) Fields() []schema.Field {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.builder.Fields()
}

// Busy reports whether any call for action is in flight.
func (w *Workflow) Busy(action Action) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.actions[action]
	return ok && state.inFlight > 0
}

// Message returns the failure message currently shown for action.
func (w *Workflow) Message(action Action) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if state, ok := w.actions[action]; ok {
		return state.message
	}
	return ""
}

// CreateSchema registers the current field list under the configured name.
// On success the field list is cleared and the new id is returned.
func (w *Workflow) CreateSchema(ctx context.Context) (string, error) {
	w.mu.Lock()
	seq, err := w.beginLocked(ActionCreateSchema)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	spec := attest.SchemaSpec{Name: w.schemaName, Data: w.builder.Fields()}
	w.mu.Unlock()

	result, callErr := w.client.CreateSchema(ctx, spec)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.settleLocked(ActionCreateSchema, seq, callErr) {
		return supersededResult(result.SchemaID, callErr)
	}
	if callErr != nil {
		return "", callErr
	}
	w.builder.Clear()
	w.createdSchemaID = result.SchemaID
	w.logger.Info("schema created",
		zap.String("schema_id", result.SchemaID),
		zap.Int("fields", len(spec.Data)))
	return result.SchemaID, nil
}

// FetchSchema loads a schema by id and replaces the value form with one empty
// input per field. On failure the previous form is left untouched.
func (w *Workflow) FetchSchema(ctx context.Context, schemaID string) (schema.Schema, error) {
	w.mu.Lock()
	seq, err := w.beginLocked(ActionFetchSchema)
	w.mu.Unlock()
	if err != nil {
		return schema.Schema{}, err
	}

	fetched, callErr := w.client.GetSchema(ctx, strings.TrimSpace(schemaID))

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.settleLocked(ActionFetchSchema, seq, callErr) {
		if callErr != nil {
			return schema.Schema{}, callErr
		}
		return fetched, ErrSuperseded
	}
	if callErr != nil {
		return schema.Schema{}, callErr
	}

	if fetched.ID == "" {
		fetched.ID = strings.TrimSpace(schemaID)
	}
	w.schemaID = fetched.ID
	w.valueFields = append([]schema.Field(nil), fetched.Fields...)
	w.values = make(map[string]string, len(fetched.Fields))
	for _, f := range fetched.Fields {
		w.values[f.Name] = ""
	}
	return fetched, nil
}

// SetValue updates the input for a displayed field. Names that are not part
// of the fetched schema are ignored.
func (w *Workflow) SetValue(name, value string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.values[name]; !ok {
		return false
	}
	w.values[name] = value
	return true
}

// Values returns a copy of the current value form.
func (w *Workflow) Values() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyValues(w.values)
}

// CreateAttestation submits the value form for the fetched schema.
func (w *Workflow) CreateAttestation(ctx context.Context) (string, error) {
	w.mu.Lock()
	seq, err := w.beginLocked(ActionCreateAttestation)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	req := attest.AttestationRequest{SchemaID: w.schemaID, Data: copyValues(w.values)}
	w.mu.Unlock()

	result, callErr := w.client.CreateAttestation(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.settleLocked(ActionCreateAttestation, seq, callErr) {
		return supersededResult(result.AttestationID, callErr)
	}
	if callErr != nil {
		return "", callErr
	}
	w.lastAttestationID = result.AttestationID
	w.logger.Info("attestation created",
		zap.String("schema_id", req.SchemaID),
		zap.String("attestation_id", result.AttestationID))
	return result.AttestationID, nil
}

func (w *Workflow) beginLocked(action Action) (uint64, error) {
	state := w.actions[action]
	if w.guard && state.inFlight > 0 {
		return 0, ErrBusy
	}
	state.issued++
	state.inFlight++
	state.message = ""
	return state.issued, nil
}

// settleLocked records the end of call seq and reports whether it is still
// the latest call for the action, i.e. whether its outcome may be applied.
func (w *Workflow) settleLocked(action Action, seq uint64, callErr error) bool {
	state := w.actions[action]
	state.inFlight--
	if seq != state.issued {
		w.logger.Debug("discarding superseded response",
			zap.String("action", string(action)),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", state.issued))
		return false
	}
	if callErr != nil {
		state.message = FailureMessage(action)
		level := w.logger.Warn
		if errors.Is(callErr, context.Canceled) {
			level = w.logger.Info
		}
		level("attestation service call failed",
			zap.String("action", string(action)),
			zap.Uint64("seq", seq),
			zap.Error(callErr))
	}
	return true
}

func supersededResult(id string, callErr error) (string, error) {
	if callErr != nil {
		return "", callErr
	}
	return id, ErrSuperseded
}

func copyValues(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

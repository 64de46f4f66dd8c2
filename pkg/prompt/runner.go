package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-attestform/pkg/schema"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

// Menu entries in display order.
const (
	MenuAddField          = "Add field"
	MenuRemoveField       = "Remove field"
	MenuCreateSchema      = "Create schema"
	MenuFetchSchema       = "Fetch schema"
	MenuFillValues        = "Fill values"
	MenuCreateAttestation = "Create attestation"
	MenuQuit              = "Quit"
)

// Runner walks a workflow through a menu loop.
type Runner struct {
	driver   Driver
	workflow *workflow.Workflow
}

// NewRunner binds a driver to a workflow.
func NewRunner(driver Driver, wf *workflow.Workflow) (*Runner, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	if wf == nil {
		return nil, errors.New("prompt: workflow is required")
	}
	return &Runner{driver: driver, workflow: wf}, nil
}

// Run shows the menu until the user quits. Aborting a prompt ends the loop
// with ErrAborted.
func (r *Runner) Run(ctx context.Context) error {
	for {
		choice, err := r.menu(ctx)
		if err != nil {
			return err
		}
		if choice == MenuQuit {
			quit, err := r.confirmQuit(ctx)
			if err != nil || quit {
				return err
			}
			continue
		}
		if err := r.dispatch(ctx, choice); err != nil {
			return err
		}
	}
}

func (r *Runner) menu(ctx context.Context) (string, error) {
	options := []string{MenuAddField}
	if len(r.workflow.Fields()) > 0 {
		options = append(options, MenuRemoveField)
	}
	options = append(options, MenuCreateSchema, MenuFetchSchema)
	if r.workflow.Snapshot().SchemaID != "" {
		options = append(options, MenuFillValues, MenuCreateAttestation)
	}
	options = append(options, MenuQuit)

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "What next?",
		Options:      options,
		DefaultIndex: 0,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("prompt: menu selection %d out of range", idx)
	}
	return options[idx], nil
}

// confirmQuit asks before discarding fields that were never registered.
func (r *Runner) confirmQuit(ctx context.Context) (bool, error) {
	pending := len(r.workflow.Fields())
	if pending == 0 {
		return true, nil
	}
	return r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Discard %d unsaved field(s)?", pending),
	})
}

func (r *Runner) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case MenuAddField:
		return r.addField(ctx)
	case MenuRemoveField:
		return r.removeField(ctx)
	case MenuCreateSchema:
		return r.createSchema(ctx)
	case MenuFetchSchema:
		return r.fetchSchema(ctx)
	case MenuFillValues:
		return r.fillValues(ctx)
	case MenuCreateAttestation:
		return r.createAttestation(ctx)
	default:
		return fmt.Errorf("prompt: unknown menu entry %q", choice)
	}
}

func (r *Runner) addField(ctx context.Context) error {
	name, err := r.driver.Input(ctx, InputConfig{Message: "Field name"})
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return nil
	}

	types := schema.Types()
	options := make([]string, len(types))
	def := 0
	for i, t := range types {
		options[i] = string(t)
		if t == schema.DefaultType() {
			def = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Field type", Options: options, DefaultIndex: def})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(types) {
		if err := r.workflow.SelectType(types[idx]); err != nil {
			return err
		}
	}

	r.workflow.StageField(name)
	if _, ok := r.workflow.AddField(); !ok {
		return nil
	}
	return r.listFields(ctx)
}

func (r *Runner) removeField(ctx context.Context) error {
	fields := r.workflow.Fields()
	options := make([]string, len(fields))
	for i, f := range fields {
		options[i] = f.Label()
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Remove which field?", Options: options})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(fields) {
		return nil
	}
	r.workflow.RemoveField(fields[idx].ID)
	return r.listFields(ctx)
}

func (r *Runner) createSchema(ctx context.Context) error {
	id, err := r.workflow.CreateSchema(ctx)
	if err != nil {
		return r.report(ctx, workflow.ActionCreateSchema, err)
	}
	return r.driver.Info(ctx, "Schema created: "+id)
}

func (r *Runner) fetchSchema(ctx context.Context) error {
	id, err := r.driver.Input(ctx, InputConfig{Message: "Schema ID"})
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return nil
	}
	fetched, err := r.workflow.FetchSchema(ctx, id)
	if err != nil {
		return r.report(ctx, workflow.ActionFetchSchema, err)
	}
	return r.driver.Info(ctx, fmt.Sprintf("Schema %s has %d field(s): %s",
		fetched.ID, len(fetched.Fields), strings.Join(schema.Names(fetched.Fields), ", ")))
}

func (r *Runner) fillValues(ctx context.Context) error {
	for _, input := range r.workflow.Snapshot().Inputs {
		value, err := r.driver.Input(ctx, InputConfig{
			Message: input.Label,
			Default: input.Value,
			Help:    input.Type,
		})
		if err != nil {
			return err
		}
		r.workflow.SetValue(input.Name, value)
	}
	return nil
}

func (r *Runner) createAttestation(ctx context.Context) error {
	id, err := r.workflow.CreateAttestation(ctx)
	if err != nil {
		return r.report(ctx, workflow.ActionCreateAttestation, err)
	}
	return r.driver.Info(ctx, "Attestation created: "+id)
}

// report shows the static failure message; the loop keeps running.
func (r *Runner) report(ctx context.Context, action workflow.Action, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	msg := r.workflow.Message(action)
	if msg == "" {
		msg = workflow.FailureMessage(action)
	}
	return r.driver.Info(ctx, msg)
}

func (r *Runner) listFields(ctx context.Context) error {
	fields := r.workflow.Fields()
	if len(fields) == 0 {
		return r.driver.Info(ctx, "No fields.")
	}
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = "  " + f.Label()
	}
	return r.driver.Info(ctx, "Fields:\n"+strings.Join(labels, "\n"))
}

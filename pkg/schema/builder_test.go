package schema_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-attestform/pkg/schema"
)

func sequentialIDs() schema.BuilderOption {
	n := 0
	return schema.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("f%d", n)
	})
}

func TestBuilder_AddAppendsInOrder(t *testing.T) {
	b := schema.NewBuilder(sequentialIDs())

	b.Stage("age")
	if b.State() != schema.StateStaged {
		t.Fatalf("expected staged state, got %s", b.State())
	}
	if _, ok := b.Add(); !ok {
		t.Fatalf("expected add to succeed")
	}
	if b.State() != schema.StateIdle {
		t.Fatalf("expected idle after add, got %s", b.State())
	}

	b.Stage("reporter")
	if err := b.Select(schema.TypeAddress); err != nil {
		t.Fatalf("select: %v", err)
	}
	b.Add()

	want := []schema.Field{
		{ID: "f1", Name: "age", Type: schema.TypeUint256},
		{ID: "f2", Name: "reporter", Type: schema.TypeAddress},
	}
	if diff := cmp.Diff(want, b.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := b.Fields()[0].Label(); got != "age (uint256)" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestBuilder_EmptyNameIsNoop(t *testing.T) {
	b := schema.NewBuilder()
	b.Stage("kept")
	b.Add()

	for _, name := range []string{"", "   "} {
		b.Stage(name)
		if _, ok := b.Add(); ok {
			t.Fatalf("expected add with %q to be a no-op", name)
		}
	}
	if b.Len() != 1 {
		t.Fatalf("expected sequence unchanged, got %d entries", b.Len())
	}
}

func TestBuilder_StoresNameAsStaged(t *testing.T) {
	b := schema.NewBuilder(schema.WithIDGenerator(func() string { return "f1" }))
	b.Stage(" age ")
	field, ok := b.Add()
	if !ok {
		t.Fatalf("expected padded name to be added")
	}
	want := []schema.Field{{ID: "f1", Name: " age ", Type: schema.DefaultType()}}
	if diff := cmp.Diff(want, b.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if field.Name != " age " {
		t.Fatalf("returned field name %q", field.Name)
	}
}

func TestBuilder_AllowsDuplicateNames(t *testing.T) {
	b := schema.NewBuilder()
	for i := 0; i < 2; i++ {
		b.Stage("severity")
		b.Add()
	}
	if b.Len() != 2 {
		t.Fatalf("expected duplicates to be kept, got %d", b.Len())
	}
	fields := b.Fields()
	if fields[0].ID == fields[1].ID {
		t.Fatalf("expected distinct identities for duplicate names")
	}
}

func TestBuilder_RemovePreservesOrder(t *testing.T) {
	b := schema.NewBuilder(sequentialIDs())
	for _, name := range []string{"a", "b", "c", "d"} {
		b.Stage(name)
		b.Add()
	}

	if !b.Remove("f2") {
		t.Fatalf("expected remove to find f2")
	}
	if b.Remove("missing") {
		t.Fatalf("expected remove of unknown id to fail")
	}

	got := schema.Names(b.Fields())
	if diff := cmp.Diff([]string{"a", "c", "d"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_SelectRejectsUnknownType(t *testing.T) {
	b := schema.NewBuilder()
	if err := b.Select(schema.TypeString); err != nil {
		t.Fatalf("select string: %v", err)
	}
	if err := b.Select("float"); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	_, selected := b.Pending()
	if selected != schema.TypeString {
		t.Fatalf("selection should be unchanged, got %s", selected)
	}
}

func TestBuilder_FieldsReturnsCopy(t *testing.T) {
	b := schema.NewBuilder()
	b.Stage("x")
	b.Add()

	fields := b.Fields()
	fields[0].Name = "mutated"
	if b.Fields()[0].Name != "x" {
		t.Fatalf("builder state leaked through Fields()")
	}

	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("expected empty builder after clear")
	}
}

func TestParseType(t *testing.T) {
	got, err := schema.ParseType(" UINT256 ")
	if err != nil || got != schema.TypeUint256 {
		t.Fatalf("ParseType: got %q, %v", got, err)
	}
	if _, err := schema.ParseType("tuple"); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if diff := cmp.Diff(schema.TypeUint256, schema.Types()[0]); diff != "" {
		t.Fatalf("default type mismatch: %s", diff)
	}
}

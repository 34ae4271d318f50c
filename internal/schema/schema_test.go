package schema

import "testing"

func TestUsersFieldOrder(t *testing.T) {
	want := []string{"first_name", "last_name", "age", "active"}
	got := Users.Names()
	if len(got) != len(want) {
		t.Fatalf("unexpected field count: %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUsersDescriptors(t *testing.T) {
	age, ok := Users.Lookup("age")
	if !ok {
		t.Fatalf("expected age to be declared")
	}
	if age.Kind != KindInteger || age.RequiredOnCreate {
		t.Fatalf("unexpected age descriptor: %+v", age)
	}
	if age.Min == nil || *age.Min != 0 {
		t.Fatalf("expected age minimum of 0")
	}
	if age.Max == nil || *age.Max != 2147483647 {
		t.Fatalf("expected age maximum to fit a 32-bit column")
	}

	first, _ := Users.Lookup("first_name")
	if first.Kind != KindString || !first.RequiredOnCreate {
		t.Fatalf("unexpected first_name descriptor: %+v", first)
	}

	active, _ := Users.Lookup("active")
	if active.Kind != KindBoolean || active.RequiredOnCreate {
		t.Fatalf("unexpected active descriptor: %+v", active)
	}
}

func TestIsKnownField(t *testing.T) {
	for _, name := range []string{"first_name", "last_name", "age", "active"} {
		if !Users.IsKnownField(name) {
			t.Fatalf("expected %q to be known", name)
		}
	}
	for _, name := range []string{"id", "", "First_Name", "age; DROP TABLE users"} {
		if Users.IsKnownField(name) {
			t.Fatalf("expected %q to be unknown", name)
		}
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	fields := Users.Fields()
	fields[0].Name = "mutated"
	if Users.Fields()[0].Name != "first_name" {
		t.Fatalf("schema was mutated through Fields()")
	}
}

func TestNewPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate field")
		}
	}()
	New(Field{Name: "a"}, Field{Name: "a"})
}

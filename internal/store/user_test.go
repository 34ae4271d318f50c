package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/usersvc/apiserver/internal/schema"
	"github.com/usersvc/apiserver/internal/store"
	"github.com/usersvc/apiserver/internal/validate"
)

const createUsersTable = `
	CREATE TABLE users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT    NOT NULL,
		last_name  TEXT    NOT NULL,
		age        INTEGER CHECK (age >= 0),
		active     BOOLEAN
	)`

func newTestRepo(t *testing.T) *store.UserRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(context.Background(), createUsersTable); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return store.NewUserRepository(db, store.DialectSQLite)
}

func TestUserRepositoryCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, validate.Payload{"first_name": "Ada", "last_name": "Lovelace"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if user.FirstName != "Ada" || user.LastName != "Lovelace" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Age != nil || user.Active != nil {
		t.Fatalf("expected absent age and active, got %+v", user)
	}
}

func TestUserRepositoryGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validate.Payload{
		"first_name": "Grace", "last_name": "Hopper", "age": int64(85), "active": true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Age == nil || *fetched.Age != 85 {
		t.Fatalf("unexpected age: %v", fetched.Age)
	}
	if fetched.Active == nil || !*fetched.Active {
		t.Fatalf("unexpected active: %v", fetched.Active)
	}

	if _, err := repo.GetByID(ctx, created.ID+100); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", users)
	}

	for _, name := range []string{"a", "b", "c"} {
		if _, err := repo.Create(ctx, validate.Payload{"first_name": name, "last_name": name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 || users[0].FirstName != "a" || users[2].FirstName != "c" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserRepositoryUpdateTouchesOnlySuppliedColumns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validate.Payload{
		"first_name": "Ada", "last_name": "Lovelace", "active": true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	plan, err := store.BuildUpdate(schema.Users, created.ID, validate.Payload{"age": int64(30)})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	updated, err := repo.Update(ctx, plan)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Age == nil || *updated.Age != 30 {
		t.Fatalf("unexpected age: %v", updated.Age)
	}
	if updated.FirstName != "Ada" || updated.LastName != "Lovelace" {
		t.Fatalf("names changed: %+v", updated)
	}
	if updated.Active == nil || !*updated.Active {
		t.Fatalf("active changed: %v", updated.Active)
	}

	again, err := repo.Update(ctx, plan)
	if err != nil {
		t.Fatalf("repeat update: %v", err)
	}
	if *again.Age != *updated.Age || again.FirstName != updated.FirstName || *again.Active != *updated.Active {
		t.Fatalf("repeated update changed state: %+v vs %+v", again, updated)
	}
}

func TestUserRepositoryUpdateClearsBoolean(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validate.Payload{"first_name": "a", "last_name": "b", "active": true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	plan, err := store.BuildUpdate(schema.Users, created.ID, validate.Payload{"active": false})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	updated, err := repo.Update(ctx, plan)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Active == nil || *updated.Active {
		t.Fatalf("expected active=false, got %v", updated.Active)
	}
}

func TestUserRepositoryUpdateMissingRow(t *testing.T) {
	repo := newTestRepo(t)

	plan, err := store.BuildUpdate(schema.Users, 42, validate.Payload{"first_name": "x"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := repo.Update(context.Background(), plan); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validate.Payload{"first_name": "Ada", "last_name": "Lovelace"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID || deleted.FirstName != "Ada" {
		t.Fatalf("unexpected deleted record: %+v", deleted)
	}

	if _, err := repo.Delete(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected record to be gone, got %v", err)
	}
}

func TestUserRepositoryConstraintViolation(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create(context.Background(), validate.Payload{"first_name": "a", "last_name": "b", "age": int64(-1)})
	if err == nil {
		t.Fatalf("expected check constraint to reject negative age")
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Fatalf("constraint violation must not look like not found")
	}
}

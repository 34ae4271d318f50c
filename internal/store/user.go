package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/usersvc/apiserver/internal/schema"
	"github.com/usersvc/apiserver/internal/validate"
	"github.com/usersvc/apiserver/types"
)

const usersTable = "users"

// userColumns is the column order scanUser expects.
var userColumns = []string{"id", "first_name", "last_name", "age", "active"}

// UserRepository handles persistence for users.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, strings.Join(userColumns, ", "), usersTable)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = %s`,
		strings.Join(userColumns, ", "), usersTable, r.dialect.Placeholder(1),
	)
	return r.queryOne(ctx, query, id)
}

// Create inserts the supplied fields and returns the stored record, including
// the id assigned by the database. Fields absent from payload take the column
// default.
func (r *UserRepository) Create(ctx context.Context, payload validate.Payload) (types.User, error) {
	columns := make([]string, 0, len(payload))
	placeholders := make([]string, 0, len(payload))
	args := make([]any, 0, len(payload))
	for _, field := range schema.Users.Fields() {
		value, ok := payload[field.Name]
		if !ok {
			continue
		}
		args = append(args, value)
		columns = append(columns, quoteIdent(field.Name))
		placeholders = append(placeholders, r.dialect.Placeholder(len(args)))
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		usersTable,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(userColumns, ", "),
	)
	return r.queryOne(ctx, query, args...)
}

// Update executes plan and returns the updated record. ErrNotFound means the
// row disappeared after the caller last saw it.
func (r *UserRepository) Update(ctx context.Context, plan UpdatePlan) (types.User, error) {
	query, args, err := plan.SQL(r.dialect, usersTable, userColumns)
	if err != nil {
		return types.User{}, err
	}
	return r.queryOne(ctx, query, args...)
}

// Delete removes the record and returns its last state.
func (r *UserRepository) Delete(ctx context.Context, id int) (types.User, error) {
	query := fmt.Sprintf(
		`DELETE FROM %s WHERE id = %s RETURNING %s`,
		usersTable, r.dialect.Placeholder(1), strings.Join(userColumns, ", "),
	)
	return r.queryOne(ctx, query, id)
}

// Ping reports whether the database is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepository) queryOne(ctx context.Context, query string, args ...any) (types.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var (
		user   types.User
		age    sql.NullInt64
		active sql.NullBool
	)
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &age, &active); err != nil {
		return types.User{}, err
	}
	if age.Valid {
		v := int(age.Int64)
		user.Age = &v
	}
	if active.Valid {
		v := active.Bool
		user.Active = &v
	}
	return user, nil
}

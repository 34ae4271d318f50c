package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/usersvc/apiserver/internal/schema"
	"github.com/usersvc/apiserver/internal/store"
	"github.com/usersvc/apiserver/internal/validate"
	"github.com/usersvc/apiserver/types"
)

// userRequest carries the state of one request through its stages.
type userRequest struct {
	rawID string
	body  map[string]any

	id      int
	current types.User
	payload validate.Payload
	plan    store.UpdatePlan
	result  types.User
}

// stage is one step of a request. A non-nil error ends the request.
type stage func(ctx context.Context, req *userRequest) error

func runStages(ctx context.Context, req *userRequest, stages ...stage) error {
	for _, run := range stages {
		if err := run(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// ParseID converts a path segment into a record id.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func parseID(_ context.Context, req *userRequest) error {
	id, err := ParseID(req.rawID)
	if err != nil {
		return err
	}
	req.id = id
	return nil
}

func validateBody(op validate.Operation) stage {
	return func(_ context.Context, req *userRequest) error {
		payload, err := validate.Validate(schema.Users, op, req.body)
		if err != nil {
			return err
		}
		req.payload = payload
		return nil
	}
}

func buildPlan(_ context.Context, req *userRequest) error {
	plan, err := store.BuildUpdate(schema.Users, req.id, req.payload)
	if err != nil {
		return err
	}
	req.plan = plan
	return nil
}

// storeErr passes ErrNotFound through and wraps everything else.
func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

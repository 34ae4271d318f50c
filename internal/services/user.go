package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/usersvc/apiserver/internal/store"
	"github.com/usersvc/apiserver/internal/validate"
	"github.com/usersvc/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	Create(ctx context.Context, payload validate.Payload) (types.User, error)
	Update(ctx context.Context, plan store.UpdatePlan) (types.User, error)
	Delete(ctx context.Context, id int) (types.User, error)
}

// EventPublisher announces committed user changes.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, eventType string, user types.User) error
}

// UserService runs the user request pipelines.
type UserService struct {
	repo   UserRepository
	events EventPublisher
}

// NewUserService constructs a UserService. events may be nil.
func NewUserService(repo UserRepository, events EventPublisher) *UserService {
	return &UserService{repo: repo, events: events}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, rawID string) (types.User, error) {
	req := &userRequest{rawID: rawID}
	if err := runStages(ctx, req, parseID, s.ensureExists); err != nil {
		return types.User{}, err
	}
	return req.current, nil
}

func (s *UserService) Create(ctx context.Context, body map[string]any) (types.User, error) {
	req := &userRequest{body: body}
	err := runStages(ctx, req,
		validateBody(validate.OpCreate),
		s.insert,
	)
	if err != nil {
		return types.User{}, err
	}
	s.publish(ctx, types.UserCreated, req.result)
	return req.result, nil
}

func (s *UserService) Update(ctx context.Context, rawID string, body map[string]any) (types.User, error) {
	req := &userRequest{rawID: rawID, body: body}
	err := runStages(ctx, req,
		parseID,
		s.ensureExists,
		validateBody(validate.OpUpdate),
		buildPlan,
		s.update,
	)
	if err != nil {
		return types.User{}, err
	}
	s.publish(ctx, types.UserUpdated, req.result)
	return req.result, nil
}

func (s *UserService) Delete(ctx context.Context, rawID string) (types.User, error) {
	req := &userRequest{rawID: rawID}
	err := runStages(ctx, req,
		parseID,
		s.ensureExists,
		s.delete,
	)
	if err != nil {
		return types.User{}, err
	}
	s.publish(ctx, types.UserDeleted, req.result)
	return req.result, nil
}

// ensureExists performs the single existence lookup for identifier-scoped
// requests.
func (s *UserService) ensureExists(ctx context.Context, req *userRequest) error {
	user, err := s.repo.GetByID(ctx, req.id)
	if err != nil {
		return storeErr("get", err)
	}
	req.current = user
	return nil
}

func (s *UserService) insert(ctx context.Context, req *userRequest) error {
	user, err := s.repo.Create(ctx, req.payload)
	if err != nil {
		return storeErr("create", err)
	}
	req.result = user
	return nil
}

func (s *UserService) update(ctx context.Context, req *userRequest) error {
	user, err := s.repo.Update(ctx, req.plan)
	if err != nil {
		return storeErr("update", err)
	}
	req.result = user
	return nil
}

func (s *UserService) delete(ctx context.Context, req *userRequest) error {
	user, err := s.repo.Delete(ctx, req.id)
	if err != nil {
		return storeErr("delete", err)
	}
	req.result = user
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType string, user types.User) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishUserEvent(ctx, eventType, user); err != nil {
		log.Error().Err(err).Str("event", eventType).Int("user_id", user.ID).Msg("failed to publish user event")
	}
}

package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/storage"
	"github.com/mmynk/splitr/pkg/api"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
)

// UserService exposes the user directory.
type UserService struct {
	store storage.UserStore
}

var _ apiconnect.UserServiceHandler = (*UserService)(nil)

func NewUserService(store storage.UserStore) *UserService {
	return &UserService{store: store}
}

// ListUsers returns every user in directory order.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	slog.Info("ListUsers request received")

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError("ListUsers", err)
	}
	out := make([]*api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}

func (s *UserService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	slog.Info("GetUser request received", "user_id", req.Msg.UserID)

	user, err := s.store.GetUserByID(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("GetUser", err)
	}
	if user == nil {
		return nil, toConnectError("GetUser", errs.NotFound("User not found"))
	}
	return connect.NewResponse(&api.GetUserResponse{User: toAPIUser(user)}), nil
}

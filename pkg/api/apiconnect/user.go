package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/pkg/api"
)

// UserServiceName is the fully-qualified name of the UserService.
const UserServiceName = "splitr.v1.UserService"

const (
	UserServiceListUsersProcedure = "/splitr.v1.UserService/ListUsers"
	UserServiceGetUserProcedure   = "/splitr.v1.UserService/GetUser"
)

// UserServiceHandler is implemented by the server side of UserService.
type UserServiceHandler interface {
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return serve("/"+UserServiceName+"/",
		unary(UserServiceListUsersProcedure, svc.ListUsers, opts),
		unary(UserServiceGetUserProcedure, svc.GetUser, opts),
	)
}

// UserServiceClient calls UserService over HTTP.
type UserServiceClient struct {
	listUsers *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	getUser   *connect.Client[api.GetUserRequest, api.GetUserResponse]
}

// NewUserServiceClient creates a client for the server at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	return &UserServiceClient{
		listUsers: newClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL, UserServiceListUsersProcedure, opts),
		getUser:   newClient[api.GetUserRequest, api.GetUserResponse](httpClient, baseURL, UserServiceGetUserProcedure, opts),
	}
}

func (c *UserServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *UserServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/pkg/api"
)

// BalanceServiceName is the fully-qualified name of the BalanceService.
const BalanceServiceName = "splitr.v1.BalanceService"

const (
	BalanceServiceGetAllBalancesProcedure        = "/splitr.v1.BalanceService/GetAllBalances"
	BalanceServiceGetUserBalanceProcedure        = "/splitr.v1.BalanceService/GetUserBalance"
	BalanceServiceGetCurrentUserBalanceProcedure = "/splitr.v1.BalanceService/GetCurrentUserBalance"
	BalanceServiceReconcileBalancesProcedure     = "/splitr.v1.BalanceService/ReconcileBalances"
)

// BalanceServiceHandler is implemented by the server side of BalanceService.
type BalanceServiceHandler interface {
	GetAllBalances(context.Context, *connect.Request[api.GetAllBalancesRequest]) (*connect.Response[api.GetAllBalancesResponse], error)
	GetUserBalance(context.Context, *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error)
	GetCurrentUserBalance(context.Context, *connect.Request[api.GetCurrentUserBalanceRequest]) (*connect.Response[api.GetCurrentUserBalanceResponse], error)
	ReconcileBalances(context.Context, *connect.Request[api.ReconcileBalancesRequest]) (*connect.Response[api.ReconcileBalancesResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return serve("/"+BalanceServiceName+"/",
		unary(BalanceServiceGetAllBalancesProcedure, svc.GetAllBalances, opts),
		unary(BalanceServiceGetUserBalanceProcedure, svc.GetUserBalance, opts),
		unary(BalanceServiceGetCurrentUserBalanceProcedure, svc.GetCurrentUserBalance, opts),
		unary(BalanceServiceReconcileBalancesProcedure, svc.ReconcileBalances, opts),
	)
}

// BalanceServiceClient calls BalanceService over HTTP.
type BalanceServiceClient struct {
	getAllBalances        *connect.Client[api.GetAllBalancesRequest, api.GetAllBalancesResponse]
	getUserBalance        *connect.Client[api.GetUserBalanceRequest, api.GetUserBalanceResponse]
	getCurrentUserBalance *connect.Client[api.GetCurrentUserBalanceRequest, api.GetCurrentUserBalanceResponse]
	reconcileBalances     *connect.Client[api.ReconcileBalancesRequest, api.ReconcileBalancesResponse]
}

// NewBalanceServiceClient creates a client for the server at baseURL.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BalanceServiceClient {
	return &BalanceServiceClient{
		getAllBalances:        newClient[api.GetAllBalancesRequest, api.GetAllBalancesResponse](httpClient, baseURL, BalanceServiceGetAllBalancesProcedure, opts),
		getUserBalance:        newClient[api.GetUserBalanceRequest, api.GetUserBalanceResponse](httpClient, baseURL, BalanceServiceGetUserBalanceProcedure, opts),
		getCurrentUserBalance: newClient[api.GetCurrentUserBalanceRequest, api.GetCurrentUserBalanceResponse](httpClient, baseURL, BalanceServiceGetCurrentUserBalanceProcedure, opts),
		reconcileBalances:     newClient[api.ReconcileBalancesRequest, api.ReconcileBalancesResponse](httpClient, baseURL, BalanceServiceReconcileBalancesProcedure, opts),
	}
}

func (c *BalanceServiceClient) GetAllBalances(ctx context.Context, req *connect.Request[api.GetAllBalancesRequest]) (*connect.Response[api.GetAllBalancesResponse], error) {
	return c.getAllBalances.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) GetUserBalance(ctx context.Context, req *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error) {
	return c.getUserBalance.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) GetCurrentUserBalance(ctx context.Context, req *connect.Request[api.GetCurrentUserBalanceRequest]) (*connect.Response[api.GetCurrentUserBalanceResponse], error) {
	return c.getCurrentUserBalance.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) ReconcileBalances(ctx context.Context, req *connect.Request[api.ReconcileBalancesRequest]) (*connect.Response[api.ReconcileBalancesResponse], error) {
	return c.reconcileBalances.CallUnary(ctx, req)
}

package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "splitr.v1.SettlementService"

const (
	SettlementServiceCreateSettlementProcedure = "/splitr.v1.SettlementService/CreateSettlement"
	SettlementServiceListSettlementsProcedure  = "/splitr.v1.SettlementService/ListSettlements"
)

// SettlementServiceHandler is implemented by the server side of SettlementService.
type SettlementServiceHandler interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return serve("/"+SettlementServiceName+"/",
		unary(SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts),
		unary(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts),
	)
}

// SettlementServiceClient calls SettlementService over HTTP.
type SettlementServiceClient struct {
	createSettlement *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	listSettlements  *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

// NewSettlementServiceClient creates a client for the server at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		createSettlement: newClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL, SettlementServiceCreateSettlementProcedure, opts),
		listSettlements:  newClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL, SettlementServiceListSettlementsProcedure, opts),
	}
}

func (c *SettlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "splitr.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure           = "/splitr.v1.ExpenseService/CreateExpense"
	ExpenseServiceDeleteExpenseProcedure           = "/splitr.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure            = "/splitr.v1.ExpenseService/ListExpenses"
	ExpenseServiceGetExpensesBetweenUsersProcedure = "/splitr.v1.ExpenseService/GetExpensesBetweenUsers"
	ExpenseServiceCalculateSplitsProcedure         = "/splitr.v1.ExpenseService/CalculateSplits"
	ExpenseServiceListCategoriesProcedure          = "/splitr.v1.ExpenseService/ListCategories"
)

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetExpensesBetweenUsers(context.Context, *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error)
	CalculateSplits(context.Context, *connect.Request[api.CalculateSplitsRequest]) (*connect.Response[api.CalculateSplitsResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return serve("/"+ExpenseServiceName+"/",
		unary(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts),
		unary(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts),
		unary(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts),
		unary(ExpenseServiceGetExpensesBetweenUsersProcedure, svc.GetExpensesBetweenUsers, opts),
		unary(ExpenseServiceCalculateSplitsProcedure, svc.CalculateSplits, opts),
		unary(ExpenseServiceListCategoriesProcedure, svc.ListCategories, opts),
	)
}

// ExpenseServiceClient calls ExpenseService over HTTP.
type ExpenseServiceClient struct {
	createExpense           *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	deleteExpense           *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses            *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getExpensesBetweenUsers *connect.Client[api.GetExpensesBetweenUsersRequest, api.GetExpensesBetweenUsersResponse]
	calculateSplits         *connect.Client[api.CalculateSplitsRequest, api.CalculateSplitsResponse]
	listCategories          *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
}

// NewExpenseServiceClient creates a client for the server at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		createExpense:           newClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		deleteExpense:           newClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
		listExpenses:            newClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		getExpensesBetweenUsers: newClient[api.GetExpensesBetweenUsersRequest, api.GetExpensesBetweenUsersResponse](httpClient, baseURL, ExpenseServiceGetExpensesBetweenUsersProcedure, opts),
		calculateSplits:         newClient[api.CalculateSplitsRequest, api.CalculateSplitsResponse](httpClient, baseURL, ExpenseServiceCalculateSplitsProcedure, opts),
		listCategories:          newClient[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL, ExpenseServiceListCategoriesProcedure, opts),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpensesBetweenUsers(ctx context.Context, req *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error) {
	return c.getExpensesBetweenUsers.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) CalculateSplits(ctx context.Context, req *connect.Request[api.CalculateSplitsRequest]) (*connect.Response[api.CalculateSplitsResponse], error) {
	return c.calculateSplits.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}

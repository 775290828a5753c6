package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/auth"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/notify"
	"github.com/mmynk/splitr/internal/storage/sqlite"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
)

// recordingNotifier captures notices sent in the background.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.ExpenseNotice
	sent    chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan struct{}, 16)}
}

func (r *recordingNotifier) ExpenseCreated(_ context.Context, n notify.ExpenseNotice) error {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
	r.sent <- struct{}{}
	return nil
}

func (r *recordingNotifier) wait(t *testing.T) notify.ExpenseNotice {
	t.Helper()
	select {
	case <-r.sent:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	jwt      *auth.JWTManager
	notifier *recordingNotifier
	expenses *ExpenseService

	auth        *apiconnect.AuthServiceClient
	users       *apiconnect.UserServiceClient
	groups      *apiconnect.GroupServiceClient
	expense     *apiconnect.ExpenseServiceClient
	settlements *apiconnect.SettlementServiceClient
	balances    *apiconnect.BalanceServiceClient
}

// setupTestServer serves every Connect service over a fresh SQLite database.
func setupTestServer(t *testing.T, opts ExpenseOptions) *testEnv {
	t.Helper()

	dir, err := os.MkdirTemp("", "splitr-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:    store,
		jwt:      auth.NewJWTManager("test-secret", time.Hour),
		notifier: newRecordingNotifier(),
	}
	env.expenses = NewExpenseService(store, env.notifier, opts)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(4)
	interceptors := connect.WithInterceptors(middleware.RequireAuth(env.jwt,
		apiconnect.AuthServiceRegisterProcedure,
		apiconnect.AuthServiceLoginProcedure,
	))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, env.jwt, store, logger), interceptors))
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(store), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(env.expenses, interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store), interceptors))
	mux.Handle(apiconnect.NewBalanceServiceHandler(NewBalanceService(store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env.auth = apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL)
	env.users = apiconnect.NewUserServiceClient(http.DefaultClient, server.URL)
	env.groups = apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	env.expense = apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL)
	env.settlements = apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL)
	env.balances = apiconnect.NewBalanceServiceClient(http.DefaultClient, server.URL)
	return env
}

// user is a seeded account with a token to act as it.
type user struct {
	*models.User
	token string
}

func (e *testEnv) createUser(t *testing.T, name, email string) user {
	t.Helper()
	u := models.NewUser(email, name, "")
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	token, err := e.jwt.Generate(u)
	if err != nil {
		t.Fatalf("Generate token failed: %v", err)
	}
	return user{User: u, token: token}
}

// as builds a request authenticated as u.
func as[T any](u user, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.token)
	return req
}

func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := e.store.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetBalance(%s) failed: %v", userID, err)
	}
	if b == nil {
		return decimal.Zero
	}
	return b.Amount
}

func (e *testEnv) assertBalance(t *testing.T, u user, want string) {
	t.Helper()
	if got := e.balance(t, u.ID); !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("balance(%s) = %s, want %s", u.Name, got, want)
	}
}

// assertZeroSum checks that all stored balances cancel out.
func (e *testEnv) assertZeroSum(t *testing.T) {
	t.Helper()
	balances, err := e.store.ListBalances(context.Background())
	if err != nil {
		t.Fatalf("ListBalances failed: %v", err)
	}
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("code = %v, want %v (err: %v)", got, want, err)
	}
}

package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/pkg/api"
)

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "  Dana@Demo.com ", Name: "Dana", Password: "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" || reg.Msg.User.Email != "dana@demo.com" {
		t.Fatalf("unexpected register response: %+v", reg.Msg)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "dana@demo.com", Name: "Dana", Password: "correct-horse",
		}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "eve@demo.com", Name: "Eve", Password: "short",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("login", func(t *testing.T) {
		login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "dana@demo.com", Password: "correct-horse"}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		me, err := env.auth.GetCurrentUser(ctx, as(user{token: login.Msg.Token}, &api.GetCurrentUserRequest{}))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if me.Msg.User.Name != "Dana" || me.Msg.User.ID != reg.Msg.User.ID {
			t.Errorf("unexpected current user: %+v", me.Msg.User)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "dana@demo.com", Password: "nope-nope"}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("bad token", func(t *testing.T) {
		_, err := env.auth.GetCurrentUser(ctx, as(user{token: "garbage"}, &api.GetCurrentUserRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestUserDirectory(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	env.createUser(t, "Bob", "bob@demo.com")

	list, err := env.users.ListUsers(ctx, as(alice, &api.ListUsersRequest{}))
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list.Msg.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list.Msg.Users))
	}
	for _, u := range list.Msg.Users {
		if u.Email == "" || u.Name == "" {
			t.Errorf("incomplete user: %+v", u)
		}
	}

	got, err := env.users.GetUser(ctx, as(alice, &api.GetUserRequest{UserID: alice.ID}))
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Msg.User.Email != "alice@demo.com" {
		t.Errorf("email = %q", got.Msg.User.Email)
	}

	_, err = env.users.GetUser(ctx, as(alice, &api.GetUserRequest{UserID: "ghost"}))
	assertCode(t, err, connect.CodeNotFound)
}

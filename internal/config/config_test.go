package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Interpreter.Model != "mistral" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("dev should get a JWT secret")
	}
	if cfg.Splits.AssignRemainderToPayer {
		t.Error("remainder assignment should be off by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
env: prod
server:
  port: 9000
auth:
  jwt_secret: from-file
  token_ttl: 2h
interpreter:
  timeout: 5s
splits:
  assign_remainder_to_payer: true
`)
	t.Setenv("PORT", "9100")
	t.Setenv("OLLAMA_MODEL", "llama3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, env should win", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-file" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Interpreter.Model != "llama3" || cfg.Interpreter.Timeout != 5*time.Second {
		t.Errorf("interpreter = %+v", cfg.Interpreter)
	}
	if !cfg.Splits.AssignRemainderToPayer {
		t.Error("expected remainder assignment from file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres without url",
			yaml:    "database:\n  driver: postgres\n",
			wantErr: "DATABASE_URL",
		},
		{
			name:    "prod without secret",
			yaml:    "env: prod\n",
			wantErr: "jwt_secret",
		},
		{
			name:    "unknown driver",
			yaml:    "database:\n  driver: mysql\n",
			wantErr: "unknown database driver",
		},
		{
			name:    "bad env bool",
			env:     map[string]string{"ASSIGN_REMAINDER_TO_PAYER": "sometimes"},
			wantErr: "ASSIGN_REMAINDER_TO_PAYER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, tt.yaml)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

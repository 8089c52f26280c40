package config_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mootai/moot/pkg/cli/config"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/service/policy"
)

func TestLogger_NewLogger(t *testing.T) {
	t.Run("json output redacts secrets", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("debug", "json", "").NewLogger(&buf)
		gt.NoError(t, err).Required()

		type credential struct {
			User  string
			Token string `masq:"secret"`
		}
		logger.Info("hello", "cred", credential{User: "alice", Token: "s3cr3t"})
		gt.S(t, buf.String()).Contains("alice")
		gt.S(t, buf.String()).NotContains("s3cr3t")
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("warn", "json", "").NewLogger(&buf)
		gt.NoError(t, err).Required()

		logger.Info("quiet")
		gt.V(t, buf.Len()).Equal(0)
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("info", "console", "").NewLogger(&buf)
		gt.NoError(t, err).Required()
		logger.Info("console line")
		gt.S(t, buf.String()).Contains("console line")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "json", "").NewLogger(&bytes.Buffer{})
		gt.Error(t, err).Is(config.ErrUnknownChoice)

		_, err = config.NewLoggerForTest("info", "xml", "").NewLogger(&bytes.Buffer{})
		gt.Error(t, err).Is(config.ErrUnknownChoice)
	})
}

func TestLogger_ConfigureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moot.log")
	closer, err := config.NewLoggerForTest("info", "json", path).Configure()
	gt.NoError(t, err).Required()
	closer()

	_, err = os.Stat(path)
	gt.NoError(t, err)
}

func TestStorage_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("fs store with memory index", func(t *testing.T) {
		artifacts, err := config.NewStorageForTest("fs", t.TempDir(), "memory").Configure(ctx)
		gt.NoError(t, err).Required()
		defer func() { gt.NoError(t, artifacts.Close()) }()

		gt.V(t, artifacts.Store).NotNil()
		gt.V(t, artifacts.Index).NotNil()

		stored, err := artifacts.Store.Put(ctx, "u1", "a.txt", strings.NewReader("x"))
		gt.NoError(t, err).Required()
		gt.V(t, stored.OriginalName).Equal("a.txt")
	})

	t.Run("memory store without index", func(t *testing.T) {
		artifacts, err := config.NewStorageForTest("memory", "", "none").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.V(t, artifacts.Index).Nil()
	})

	t.Run("gcs requires a bucket", func(t *testing.T) {
		_, err := config.NewStorageForTest("gcs", "", "none").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("firestore index requires a project", func(t *testing.T) {
		_, err := config.NewStorageForTest("memory", "", "firestore").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backends", func(t *testing.T) {
		_, err := config.NewStorageForTest("s3", "", "none").Configure(ctx)
		gt.Error(t, err).Is(config.ErrUnknownChoice)

		_, err = config.NewStorageForTest("memory", "", "redis").Configure(ctx)
		gt.Error(t, err).Is(config.ErrUnknownChoice)
	})
}

func TestBackend_ConfigureHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":"来自后端"}`))
	}))
	defer srv.Close()

	be, err := config.NewBackendForTest("http", srv.URL, time.Second).Configure(context.Background())
	gt.NoError(t, err).Required()

	text, err := be.Generate(context.Background(), &model.Directive{AgentRole: "原告律师"})
	gt.NoError(t, err).Required()
	gt.V(t, text).Equal("来自后端")

	_, err = config.NewBackendForTest("grpc", srv.URL, 0).Configure(context.Background())
	gt.Error(t, err).Is(config.ErrUnknownChoice)
}

func TestPolicy_Configure(t *testing.T) {
	t.Run("built-in table", func(t *testing.T) {
		table, err := config.NewPolicyForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.V(t, table.Version).Equal(policy.Default().Version)
	})

	t.Run("table from file", func(t *testing.T) {
		src := strings.Replace(string(policy.DefaultSource()), `version = "2025.1"`, `version = "custom-1"`, 1)
		path := filepath.Join(t.TempDir(), "policy.toml")
		gt.NoError(t, os.WriteFile(path, []byte(src), 0o600)).Required()

		table, err := config.NewPolicyForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.V(t, table.Version).Equal("custom-1")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.NewPolicyForTest(filepath.Join(t.TempDir(), "nope.toml")).Configure()
		gt.Error(t, err)
	})
}

func TestAccess_Configure(t *testing.T) {
	t.Run("open mode uses the fixed owner", func(t *testing.T) {
		resolve, err := config.NewAccessForTest("open", "", "team-a").Configure()
		gt.NoError(t, err).Required()

		owner, err := resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		gt.NoError(t, err).Required()
		gt.V(t, owner).Equal(model.OwnerID("team-a"))
	})

	t.Run("open mode rejects an invalid owner", func(t *testing.T) {
		_, err := config.NewAccessForTest("open", "", "a/b").Configure()
		gt.Error(t, err).Is(model.ErrInvalidOwner)
	})

	t.Run("header mode", func(t *testing.T) {
		resolve, err := config.NewAccessForTest("header", "X-User", "").Configure()
		gt.NoError(t, err).Required()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", "bob")
		owner, err := resolve(req)
		gt.NoError(t, err).Required()
		gt.V(t, owner).Equal(model.OwnerID("bob"))
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := config.NewAccessForTest("oauth", "", "").Configure()
		gt.Error(t, err).Is(config.ErrUnknownChoice)
	})
}

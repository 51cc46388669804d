package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/config"
	"github.com/lwmacct/260112-go-pkg-confdiff/internal/server"
	"github.com/lwmacct/260112-go-pkg-confdiff/internal/submit"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/confdiff"
)

func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("a.yaml", "seed: 42\nwandb:\n  use: true\n")
	write("b.yaml", "seed: 18\nwandb:\n  use: false\n")
	write("sub/exp1.yaml", "lr: 0.01\n")
	write("sub/exp2.yaml", "lr: 0.1\n")

	analyzer := confdiff.NewAnalyzer(root)
	require.NoError(t, analyzer.Refresh())

	slurm := config.SlurmConfig{
		Partition:     "general",
		Time:          "12:00:00",
		Nodes:         1,
		OutputPattern: "slurm-%j.out",
		ErrorPattern:  "slurm-%j.err",
		WorkingDir:    t.TempDir(),
	}
	ssh := config.SSHConfig{
		Host:            "login.example.org",
		Port:            22,
		CredentialsFile: filepath.Join(t.TempDir(), "missing-secret.txt"),
		Timeout:         time.Second,
	}

	return server.New(analyzer, submit.New(slurm, ssh), "").Handler(), root
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// mux 自带的 404/405 响应是纯文本，只解码 JSON 响应
	var payload map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}

	return rec, payload
}

func TestHandler_Health(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, payload := doJSON(t, handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
}

func TestHandler_Index(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, payload := doJSON(t, handler, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confdiff", payload["message"])

	// {$} 只匹配根路径；mux 的 404 响应是纯文本
	rec, payload = doJSON(t, handler, http.MethodGet, "/no-such-page", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, payload)
}

func TestHandler_Tree(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/tree", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, payload, "a.yaml")
	require.Contains(t, payload, "sub")
}

func TestHandler_Differences(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/differences", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	entries, ok := payload["entries"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 3)
}

func TestHandler_DifferencesWithPath(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/differences/sub", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	entries, ok := payload["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sub/lr", entry["key"])
}

func TestHandler_Refresh(t *testing.T) {
	handler, root := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "c.yaml"), []byte("seed: 99\n"), 0o644))

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refreshed", payload["status"])

	_, payload = doJSON(t, handler, http.MethodGet, "/api/differences", "")
	entries, ok := payload["entries"].([]any)
	require.True(t, ok)
	// c.yaml 的 seed=99 加入根目录对比
	assert.Len(t, entries, 3)
}

func TestHandler_RefreshMissingRoot(t *testing.T) {
	analyzer := confdiff.NewAnalyzer(filepath.Join(t.TempDir(), "does-not-exist"))
	handler := server.New(analyzer, submit.New(config.SlurmConfig{}, config.SSHConfig{}), "").Handler()

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, payload["error"], "not found")
}

func TestHandler_CreateConfig(t *testing.T) {
	handler, root := newTestServer(t)

	body := `{"filename": "variant", "directory": "", "overrides": {"seed": "7"}}`
	rec, payload := doJSON(t, handler, http.MethodPost, "/api/create-config", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "created", payload["status"])
	assert.Equal(t, "variant.yaml", payload["path"])

	_, err := os.Stat(filepath.Join(root, "variant.yaml"))
	require.NoError(t, err)

	// 同名再次创建被拒绝
	rec, payload = doJSON(t, handler, http.MethodPost, "/api/create-config", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "exists")
}

func TestHandler_CreateConfig_BadRequests(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/create-config", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/create-config", `{"filename": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "filename")

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/create-config", `{"filename": "x", "directory": "no-such-dir"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Submit_ManualFallback(t *testing.T) {
	handler, _ := newTestServer(t)

	body := `{"jobName": "exp-seed42", "configPath": "configs/a.yaml", "useGpu": true}`
	rec, payload := doJSON(t, handler, http.MethodPost, "/api/submit-slurm", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "ready_for_manual_submission", payload["status"])
	assert.Equal(t, true, payload["manual"])
	instructions, ok := payload["instructions"].(string)
	require.True(t, ok)
	assert.Contains(t, instructions, "sbatch run_exp-seed42.sh")
}

func TestHandler_Submit_BadRequests(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/submit-slurm", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/submit-slurm", `{"configPath": "a.yaml"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "job name")
}

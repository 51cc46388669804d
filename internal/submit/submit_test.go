package submit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/config"
)

func testSlurmConfig(workDir string) config.SlurmConfig {
	return config.SlurmConfig{
		Partition:     "general",
		Time:          "12:00:00",
		Nodes:         1,
		OutputPattern: "slurm-%j.out",
		ErrorPattern:  "slurm-%j.err",
		WorkingDir:    workDir,
	}
}

func testSSHConfig(credFile string) config.SSHConfig {
	return config.SSHConfig{
		Host:            "login.example.org",
		Port:            22,
		CredentialsFile: credFile,
		Timeout:         5 * time.Second,
	}
}

func TestParseJobID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"standard output", "Submitted batch job 123456\n", "123456"},
		{"with noise lines", "sbatch: some warning\nSubmitted batch job 42\n", "42"},
		{"no match", "sbatch: error: invalid partition\n", ""},
		{"empty output", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseJobID(tt.output))
		})
	}
}

func TestReadCredentials(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\nhunter2\n"), 0o600))

	creds, err := readCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.User)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestReadCredentials_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := readCredentials(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)

	oneLine := filepath.Join(dir, "oneline.txt")
	require.NoError(t, os.WriteFile(oneLine, []byte("alice\n"), 0o600))
	_, err = readCredentials(oneLine)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials file format")
}

func TestSubmit_ValidationErrors(t *testing.T) {
	s := New(testSlurmConfig(t.TempDir()), testSSHConfig("secret.txt"))

	tests := []struct {
		name string
		req  Request
	}{
		{"empty job name", Request{ConfigPath: "a.yaml", Memory: "64G"}},
		{"job name with spaces", Request{JobName: "bad name", ConfigPath: "a.yaml", Memory: "64G"}},
		{"job name with slash", Request{JobName: "../evil", ConfigPath: "a.yaml", Memory: "64G"}},
		{"empty config path", Request{JobName: "job1", Memory: "64G"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Submit(context.Background(), tt.req)
			require.Error(t, err)
		})
	}
}

func TestSubmit_TemplateRenderError(t *testing.T) {
	dir := t.TempDir()
	slurm := testSlurmConfig(dir)
	slurm.TemplateFile = filepath.Join(dir, "template.sh")
	// 模板缺少 {config_path}
	require.NoError(t, os.WriteFile(slurm.TemplateFile,
		[]byte("#SBATCH --job-name={job_name}\n#SBATCH --mem={memory}\n"), 0o600))

	s := New(slurm, testSSHConfig(filepath.Join(dir, "secret.txt")))

	_, err := s.Submit(context.Background(), Request{
		JobName:    "job1",
		ConfigPath: "configs/a.yaml",
		Memory:     "64G",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config_path")
}

func TestSubmit_ManualFallbackWhenNoCredentials(t *testing.T) {
	dir := t.TempDir()
	s := New(testSlurmConfig(dir), testSSHConfig(filepath.Join(dir, "missing-secret.txt")))

	result, err := s.Submit(context.Background(), Request{
		JobName:    "exp-seed42",
		ConfigPath: "configs/a.yaml",
		Memory:     "32G",
	})
	require.NoError(t, err)

	assert.True(t, result.Manual)
	assert.Contains(t, result.Reason, "read credentials")
	assert.Contains(t, result.Instructions, "sbatch run_exp-seed42.sh")
	assert.Contains(t, result.Instructions, "login.example.org")

	// 脚本必须已经写盘，手动提交才有意义
	content, readErr := os.ReadFile(filepath.Join(dir, "run_exp-seed42.sh"))
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "--job-name=exp-seed42")
	assert.Contains(t, string(content), "--mem=32G")
	assert.Contains(t, string(content), "configs/a.yaml")
}

func TestSubmit_ManualFallbackWhenNoHost(t *testing.T) {
	dir := t.TempDir()
	credFile := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(credFile, []byte("alice\nhunter2\n"), 0o600))

	ssh := testSSHConfig(credFile)
	ssh.Host = ""
	s := New(testSlurmConfig(dir), ssh)

	result, err := s.Submit(context.Background(), Request{
		JobName:    "job1",
		ConfigPath: "configs/a.yaml",
		Memory:     "64G",
	})
	require.NoError(t, err)

	assert.True(t, result.Manual)
	assert.Contains(t, result.Reason, "ssh host not configured")
	assert.Contains(t, result.Instructions, "<login-node>")
}

func TestSubmit_UnreadableTemplateUsesFallback(t *testing.T) {
	dir := t.TempDir()
	slurm := testSlurmConfig(dir)
	slurm.TemplateFile = filepath.Join(dir, "no-such-template.sh")

	s := New(slurm, testSSHConfig(filepath.Join(dir, "missing-secret.txt")))

	result, err := s.Submit(context.Background(), Request{
		JobName:    "job1",
		ConfigPath: "configs/a.yaml",
		Memory:     "64G",
		UseGPU:     true,
	})
	require.NoError(t, err)
	assert.True(t, result.Manual)

	content, readErr := os.ReadFile(filepath.Join(dir, "run_job1.sh"))
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "#!/bin/sh")
	assert.Contains(t, string(content), "--gres=gpu:1")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'/scratch/jobs'", shellQuote("/scratch/jobs"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

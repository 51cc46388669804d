// Package submit 负责把渲染好的 sbatch 脚本写盘并经 SSH 提交到登录节点。
//
// 凭据缺失或 SSH 失败时不报 500，而是回退为"手动提交"：脚本已写好，
// 结果里带上复制粘贴即可执行的指令和失败原因。
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/config"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/sbatch"
)

var jobNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Request 一次提交请求。
type Request struct {
	JobName    string
	ConfigPath string
	Memory     string
	UseGPU     bool
}

// Result 提交结果。
//
// Manual 为 true 表示自动提交不可用，脚本已写盘，Instructions 是
// 手动提交步骤，Reason 是回退原因。
type Result struct {
	JobID        string `json:"jobId,omitempty"`
	ScriptPath   string `json:"scriptPath"`
	Message      string `json:"message"`
	Manual       bool   `json:"manual"`
	Instructions string `json:"instructions,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Output       string `json:"output,omitempty"`
}

// Submitter 持有 SLURM 与 SSH 配置。
type Submitter struct {
	slurm config.SlurmConfig
	ssh   config.SSHConfig
}

// New 创建 Submitter。
func New(slurm config.SlurmConfig, ssh config.SSHConfig) *Submitter {
	return &Submitter{slurm: slurm, ssh: ssh}
}

// Submit 渲染模板、写入脚本并提交作业。
//
// 模板渲染失败（占位符缺失/未知）直接返回错误；脚本写盘后的 SSH
// 失败回退为手动提交，不算错误。
func (s *Submitter) Submit(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	content, err := s.render(req)
	if err != nil {
		return Result{}, err
	}

	scriptPath, err := s.writeScript(req.JobName, content)
	if err != nil {
		return Result{}, err
	}

	creds, err := readCredentials(s.ssh.CredentialsFile)
	if err != nil {
		return s.manual(scriptPath, fmt.Errorf("read credentials: %w", err)), nil
	}
	if s.ssh.Host == "" {
		return s.manual(scriptPath, errors.New("ssh host not configured")), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, s.ssh.Timeout)
	defer cancel()

	output, err := s.runRemote(runCtx, creds, filepath.Base(scriptPath))
	if err != nil {
		return s.manual(scriptPath, fmt.Errorf("ssh submission: %w", err)), nil
	}

	result := Result{ScriptPath: scriptPath, Output: output}
	if jobID := parseJobID(output); jobID != "" {
		result.JobID = jobID
		result.Message = fmt.Sprintf("Job submitted successfully with ID: %s", jobID)
		slog.Info("Job submitted", "jobId", jobID, "script", scriptPath)
	} else {
		result.Message = fmt.Sprintf("Job submission status unclear. Output: %s", strings.TrimSpace(output))
		slog.Warn("Job submission unclear", "output", output)
	}

	return result, nil
}

func validate(req Request) error {
	if req.JobName == "" {
		return errors.New("submit: job name is required")
	}
	if !jobNameRe.MatchString(req.JobName) {
		return fmt.Errorf("submit: invalid job name %q", req.JobName)
	}
	if req.ConfigPath == "" {
		return errors.New("submit: config path is required")
	}

	return nil
}

// render 读取模板文件，不可用时退回内置模板。
func (s *Submitter) render(req Request) (string, error) {
	template := sbatch.Fallback
	if s.slurm.TemplateFile != "" {
		content, err := os.ReadFile(s.slurm.TemplateFile)
		if err != nil {
			slog.Warn("Template file unreadable, using fallback", "path", s.slurm.TemplateFile, "error", err)
		} else {
			template = string(content)
		}
	}

	return sbatch.Render(template, sbatch.Options{
		JobName:       req.JobName,
		ConfigPath:    req.ConfigPath,
		Memory:        req.Memory,
		UseGPU:        req.UseGPU,
		Partition:     s.slurm.Partition,
		Time:          s.slurm.Time,
		Nodes:         s.slurm.Nodes,
		OutputPattern: s.slurm.OutputPattern,
		ErrorPattern:  s.slurm.ErrorPattern,
	})
}

// writeScript 将脚本以 run_<job>.sh 写入工作目录，0755。
func (s *Submitter) writeScript(jobName, content string) (string, error) {
	dir := s.slurm.WorkingDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, "run_"+jobName+".sh")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil { //nolint:gosec // sbatch scripts must be executable
		return "", fmt.Errorf("write sbatch script: %w", err)
	}
	slog.Info("Created sbatch script", "path", path)

	return path, nil
}

// manual 组装手动提交回退结果。
func (s *Submitter) manual(scriptPath string, reason error) Result {
	slog.Warn("Falling back to manual submission", "error", reason)

	host := s.ssh.Host
	if host == "" {
		host = "<login-node>"
	}
	instructions := fmt.Sprintf(`MANUAL SUBMISSION REQUIRED:

Copy and paste these commands in your terminal:

ssh %s
cd %s
sbatch %s
squeue -u $USER
exit

After the job completes, check the output:

ssh %s
cat slurm-*.out
exit

The sbatch script has been created at: %s
`, host, s.slurm.WorkingDir, filepath.Base(scriptPath), host, scriptPath)

	return Result{
		ScriptPath:   scriptPath,
		Message:      "Sbatch script created for manual submission",
		Manual:       true,
		Instructions: instructions,
		Reason:       reason.Error(),
	}
}

package submit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
)

type credentials struct {
	User     string
	Password string
}

// readCredentials 读取凭据文件：第一行用户名，第二行密码。
func readCredentials(path string) (credentials, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return credentials{}, err
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) < 2 {
		return credentials{}, errors.New("invalid credentials file format")
	}

	return credentials{
		User:     strings.TrimSpace(lines[0]),
		Password: strings.TrimSpace(lines[1]),
	}, nil
}

// runRemote 在登录节点执行 sbatch 并返回合并输出。
//
// 前提：工作目录位于共享文件系统上，登录节点可见本地写入的脚本。
func (s *Submitter) runRemote(ctx context.Context, creds credentials, scriptName string) (string, error) {
	clientConfig := &ssh.ClientConfig{
		User:            creds.User,
		Auth:            []ssh.AuthMethod{ssh.Password(creds.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // 与原工具一致：密码登录的站内节点不校验指纹
		Timeout:         s.ssh.Timeout,
	}

	addr := net.JoinHostPort(s.ssh.Host, strconv.Itoa(s.ssh.Port))
	client, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	cmd := fmt.Sprintf("cd %s && sbatch %s", shellQuote(s.slurm.WorkingDir), shellQuote(scriptName))

	type remoteResult struct {
		output []byte
		err    error
	}
	done := make(chan remoteResult, 1)
	go func() {
		output, err := session.CombinedOutput(cmd)
		done <- remoteResult{output: output, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()

		return "", fmt.Errorf("remote command: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("remote command: %w (output: %s)", res.err, strings.TrimSpace(string(res.output)))
		}

		return string(res.output), nil
	}
}

// parseJobID 从 sbatch 输出中提取作业 ID（"Submitted batch job <id>"）。
// 找不到返回空串。
func parseJobID(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Submitted batch job") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			return fields[len(fields)-1]
		}
	}

	return ""
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package sbatch

import (
	"fmt"
	"strconv"
	"strings"
)

// GPULine 申请 GPU 时注入 {gpu_line} 的 SBATCH 指令。
const GPULine = "#SBATCH --gres=gpu:1"

// Fallback 未配置模板文件时使用的内置模板。
const Fallback = `#!/bin/sh
#SBATCH --job-name={job_name}
#SBATCH --partition={partition}
#SBATCH --time={time}
#SBATCH --nodes={nodes}
#SBATCH --tasks-per-node=1
{gpu_line}
#SBATCH --mem={memory}
#SBATCH --output=./output/{output_pattern}
#SBATCH --error=./output/{error_pattern}

srun python -m main --cfg {config_path}
`

// Options 一次作业提交所选的渲染参数。
type Options struct {
	JobName       string
	ConfigPath    string
	Memory        string
	UseGPU        bool
	Partition     string
	Time          string
	Nodes         int
	OutputPattern string
	ErrorPattern  string
}

func (o Options) values() map[string]string {
	gpuLine := ""
	if o.UseGPU {
		gpuLine = GPULine
	}

	return map[string]string{
		"job_name":       o.JobName,
		"memory":         o.Memory,
		"config_path":    o.ConfigPath,
		"gpu_line":       gpuLine,
		"partition":      o.Partition,
		"time":           o.Time,
		"nodes":          strconv.Itoa(o.Nodes),
		"output_pattern": o.OutputPattern,
		"error_pattern":  o.ErrorPattern,
	}
}

// required 本次选项下模板必须包含的占位符。
func (o Options) required() []string {
	req := []string{"job_name", "config_path", "memory"}
	if o.UseGPU {
		req = append(req, "gpu_line")
	}

	return req
}

// Render 对模板执行占位符替换。
//
// 未知占位符、未配对的大括号、以及所需占位符缺失都返回错误。
func Render(template string, opts Options) (string, error) {
	values := opts.values()
	seen := make(map[string]bool, len(values))

	var buf strings.Builder
	buf.Grow(len(template))

	for i := 0; i < len(template); {
		ch := template[i]
		switch ch {
		case '$':
			// shell 的 ${VAR} 原样透传，留给远端的 shell 处理
			if i+1 < len(template) && template[i+1] == '{' {
				end := findMatchingBrace(template, i+2)
				if end == -1 {
					return "", fmt.Errorf("sbatch: unmatched '${' at offset %d", i)
				}
				buf.WriteString(template[i : end+1])
				i = end + 1

				continue
			}
			buf.WriteByte(ch)
			i++
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				buf.WriteByte('{')
				i += 2

				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end == -1 {
				return "", fmt.Errorf("sbatch: unmatched '{' at offset %d", i)
			}
			name := template[i+1 : i+1+end]
			if !isPlaceholderName(name) {
				return "", fmt.Errorf("sbatch: invalid placeholder {%s}", name)
			}
			val, ok := values[name]
			if !ok {
				return "", fmt.Errorf("sbatch: unknown placeholder {%s}", name)
			}
			seen[name] = true
			buf.WriteString(val)
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				buf.WriteByte('}')
				i += 2

				continue
			}

			return "", fmt.Errorf("sbatch: unmatched '}' at offset %d", i)
		default:
			buf.WriteByte(ch)
			i++
		}
	}

	for _, name := range opts.required() {
		if !seen[name] {
			return "", fmt.Errorf("sbatch: template missing required placeholder {%s}", name)
		}
	}

	return buf.String(), nil
}

// findMatchingBrace 返回与 start 前的 "${" 配对的 '}' 下标，支持嵌套。
func findMatchingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '{' {
			depth++
			i++

			continue
		}
		if text[i] == '}' {
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}

func isPlaceholderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameChar(name[i]) {
			return false
		}
	}

	return true
}

func isNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '_'
}

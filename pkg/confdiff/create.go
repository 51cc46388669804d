package confdiff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yamlv3 "go.yaml.in/yaml/v3"
)

// ErrNoBaseConfig 目标目录中没有可作为模板的可读文档。
var ErrNoBaseConfig = errors.New("confdiff: no base config in directory")

// ErrConfigExists 目标文件已存在，拒绝覆盖。
var ErrConfigExists = errors.New("confdiff: config file already exists")

// CreateConfig 以 dir 目录中按文件名排序的首个可读文档为模板创建新配置。
//
// overrides 的键是 FlatKey（允许带 "dir/" 前缀，会被剥掉），值是标量的
// 字符串形式，按 YAML 标量规则还原类型（true/false/null/数字），无法解析
// 时保留为字符串；空值跳过。写入成功后刷新快照，返回相对根目录的路径。
func (a *Analyzer) CreateConfig(dir, filename string, overrides map[string]string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", errors.New("confdiff: filename is required")
	}
	if !isYAMLPath(filename) {
		filename += ".yaml"
	}

	base, err := a.baseConfig(dir)
	if err != nil {
		return "", err
	}

	data, ok := copyValue(base).(map[string]any)
	if !ok {
		data = map[string]any{}
	}
	for key, raw := range overrides {
		if raw == "" {
			continue
		}
		setByPath(data, stripDirPrefix(key), parseScalar(raw))
	}

	targetDir := filepath.Join(a.root, filepath.FromSlash(dir))
	target := filepath.Join(targetDir, filename)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, filename)
	}

	out, err := yamlv3.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal new config: %w", err)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return "", fmt.Errorf("write new config: %w", err)
	}

	if err := a.Refresh(); err != nil {
		return "", err
	}

	rel, err := filepath.Rel(a.root, target)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// baseConfig 返回 dir 中按文件名排序的首个可读文档的数据。
func (a *Analyzer) baseConfig(dir string) (map[string]any, error) {
	a.mu.RLock()
	groups := a.groups
	a.mu.RUnlock()

	for _, group := range groups {
		if group.Dir != dir {
			continue
		}
		candidates := make([]Document, 0, len(group.Docs))
		for _, doc := range group.Docs {
			if doc.Err == nil {
				candidates = append(candidates, doc)
			}
		}
		if len(candidates) == 0 {
			break
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

		return candidates[0].Data, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNoBaseConfig, dir)
}

// stripDirPrefix 剥掉复合键中的目录前缀；FlatKey 本身不含 "/"。
func stripDirPrefix(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}

	return key
}

// parseScalar 按 YAML 标量规则还原字符串取值的类型。
func parseScalar(raw string) any {
	var val any
	if err := yamlv3.Unmarshal([]byte(raw), &val); err != nil {
		return raw
	}
	switch val.(type) {
	case nil, bool, int, int64, uint64, float64, string:
		return val
	default:
		// 复杂结构不在覆盖项的契约内，保留原始字符串
		return raw
	}
}

func setByPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value

			return
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
}

func copyValue(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = copyValue(value)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = copyValue(value)
		}

		return out
	default:
		return val
	}
}

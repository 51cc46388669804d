package confdiff

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	yamlv3 "go.yaml.in/yaml/v3"
)

// ErrRootNotFound 配置根目录不存在或不是目录。
//
// 这是调用方的配置错误，与单个文档的解析错误严格区分。
var ErrRootNotFound = errors.New("confdiff: configs root not found")

// Analyzer 绑定一个配置根目录，持有最近一次 [Analyzer.Refresh] 的快照。
//
// 根目录在构造时显式传入，不存在进程级单例。快照的读取与刷新可以
// 并发进行：每次差异计算都基于刷新时读到的完整快照。
type Analyzer struct {
	root string

	mu     sync.RWMutex
	docs   []Document
	groups []Group
}

// NewAnalyzer 创建绑定 root 的分析器。构造不做 IO，首次使用前需要
// 调用 [Analyzer.Refresh]。
func NewAnalyzer(root string) *Analyzer {
	return &Analyzer{root: root}
}

// Root 返回绑定的配置根目录。
func (a *Analyzer) Root() string {
	return a.root
}

// Refresh 重新遍历根目录并解析全部 YAML 文档，整体替换快照。
//
// 单个文档解析失败不会中断刷新，错误记录在 [Document].Err 上；
// 根目录不存在返回 [ErrRootNotFound]。
func (a *Analyzer) Refresh() error {
	info, err := os.Stat(a.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotFound, a.root)
	}

	var docs []Document
	walkErr := filepath.WalkDir(a.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLPath(p) {
			return nil
		}

		rel, err := filepath.Rel(a.root, p)
		if err != nil {
			return err
		}

		doc := Document{Path: filepath.ToSlash(rel), Name: d.Name()}
		content, err := os.ReadFile(p)
		if err != nil {
			doc.Err = err
		} else if data, parseErr := parseDocument(content); parseErr != nil {
			doc.Err = parseErr
		} else {
			doc.Data = data
		}
		docs = append(docs, doc)

		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk configs root: %w", walkErr)
	}

	groups := groupDocuments(docs)

	a.mu.Lock()
	a.docs = docs
	a.groups = groups
	a.mu.Unlock()

	return nil
}

// Documents 返回当前快照中的全部文档，按遍历顺序。
func (a *Analyzer) Documents() []Document {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Document, len(a.docs))
	copy(out, a.docs)

	return out
}

// Diffs 返回全部组的差异，组顺序与目录遍历顺序一致。
//
// 每次调用基于当前快照重新计算，没有增量缓存。
func (a *Analyzer) Diffs() []GroupDiff {
	a.mu.RLock()
	groups := a.groups
	a.mu.RUnlock()

	out := make([]GroupDiff, 0, len(groups))
	for _, group := range groups {
		out = append(out, DiffGroup(group))
	}

	return out
}

// PathDiff 带目录前缀的差异条目，复合键形如 "dir/flat.key"。
// 根目录组的复合键就是 FlatKey 本身。
type PathDiff struct {
	Key    string            `json:"key"`
	Values map[string]string `json:"values"`
}

// PathDiffs 按树路径过滤后的差异结果。
type PathDiffs struct {
	Entries    []PathDiff        `json:"entries"`
	Unreadable map[string]string `json:"unreadable,omitempty"`
}

// DiffsForPath 返回复合键以 prefix 开头的差异条目；prefix 为空表示全部。
// Unreadable 以文档相对路径为键，同样按前缀过滤。
func (a *Analyzer) DiffsForPath(prefix string) PathDiffs {
	result := PathDiffs{Entries: []PathDiff{}}

	for _, gd := range a.Diffs() {
		for _, entry := range gd.Entries {
			key := compositeKey(gd.Dir, entry.Key)
			if prefix != "" && !strings.HasPrefix(key, prefix) {
				continue
			}
			result.Entries = append(result.Entries, PathDiff{Key: key, Values: entry.Values})
		}
		for name, msg := range gd.Unreadable {
			docPath := compositeKey(gd.Dir, name)
			if prefix != "" && !strings.HasPrefix(docPath, prefix) {
				continue
			}
			if result.Unreadable == nil {
				result.Unreadable = make(map[string]string)
			}
			result.Unreadable[docPath] = msg
		}
	}

	return result
}

func compositeKey(dir, key string) string {
	if dir == "" {
		return key
	}

	return dir + "/" + key
}

// groupDocuments 按父目录的字节相等划分组，保持遍历顺序。
func groupDocuments(docs []Document) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, doc := range docs {
		dir := path.Dir(doc.Path)
		if dir == "." {
			dir = ""
		}
		i, ok := index[dir]
		if !ok {
			i = len(groups)
			index[dir] = i
			groups = append(groups, Group{Dir: dir})
		}
		groups[i].Docs = append(groups[i].Docs, doc)
	}

	return groups
}

func isYAMLPath(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))

	return ext == ".yaml" || ext == ".yml"
}

// parseDocument 解析一份 YAML 文档并统一键类型。
// 空文档视为空映射；根节点不是映射按解析错误处理。
func parseDocument(content []byte) (map[string]any, error) {
	var raw any
	if err := yamlv3.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	normalized := normalizeMapKeys(raw)
	if normalized == nil {
		return map[string]any{}, nil
	}
	data, ok := normalized.(map[string]any)
	if !ok {
		return nil, errors.New("document root must be a mapping")
	}

	return data, nil
}

func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = normalizeMapKeys(value)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeMapKeys(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeMapKeys(typed[i])
		}

		return typed
	default:
		return val
	}
}

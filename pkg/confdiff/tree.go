package confdiff

import "strings"

// TreeNode 配置树节点，Type 为 "directory" 或 "file"。
//
// 文件节点携带解析后的原始数据供前端展示；解析失败的文件
// Data 为空、Error 带错误描述。
type TreeNode struct {
	Type     string               `json:"type"`
	Path     string               `json:"path,omitempty"`
	Data     map[string]any       `json:"data,omitempty"`
	Error    string               `json:"error,omitempty"`
	Children map[string]*TreeNode `json:"children,omitempty"`
}

// Tree 基于当前快照构建目录/文件层级树。
func (a *Analyzer) Tree() map[string]*TreeNode {
	a.mu.RLock()
	docs := a.docs
	a.mu.RUnlock()

	tree := make(map[string]*TreeNode)
	for _, doc := range docs {
		parts := strings.Split(doc.Path, "/")
		current := tree
		for _, part := range parts[:len(parts)-1] {
			node, ok := current[part]
			if !ok {
				node = &TreeNode{Type: "directory", Children: make(map[string]*TreeNode)}
				current[part] = node
			}
			current = node.Children
		}

		file := &TreeNode{Type: "file", Path: doc.Path, Data: doc.Data}
		if doc.Err != nil {
			file.Error = doc.Err.Error()
		}
		current[parts[len(parts)-1]] = file
	}

	return tree
}

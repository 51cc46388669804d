package confdiff

import "sort"

// Missing 键在某份文档中不存在时写入 Values 的哨兵值。
const Missing = "(missing)"

// Document 一份已解析的配置文档。
type Document struct {
	Path string         // 相对根目录的路径（斜杠分隔）
	Name string         // 文件名，组内展示用的文档 ID
	Data map[string]any // 解析后的映射；解析失败时为 nil
	Err  error          // 解析错误；nil 表示可读
}

// Group 同一目录下的文档集合，按遍历顺序排列。
type Group struct {
	Dir  string
	Docs []Document
}

// DiffEntry 一个组内某个 FlatKey 的取值差异。
//
// Values 以文件名为键；键在该文档中不存在时取 [Missing]。
type DiffEntry struct {
	Key    string            `json:"key"`
	Values map[string]string `json:"values"`
}

// GroupDiff 一个组的全部差异，Entries 按键排序。
//
// Unreadable 记录组内解析失败的文档（文件名 → 错误描述），
// 这些文档不参与取值比较，但绝不静默丢弃。
type GroupDiff struct {
	Dir        string            `json:"dir"`
	Entries    []DiffEntry       `json:"entries"`
	Unreadable map[string]string `json:"unreadable,omitempty"`
}

// DiffGroup 计算一个组内各文档之间的键差异。
//
// 纯函数：对可读文档取 FlatKey 并集，凡取值（含 [Missing]）不完全一致
// 的键输出一条 [DiffEntry]。单文档组与空组返回空差异。
func DiffGroup(group Group) GroupDiff {
	result := GroupDiff{Dir: group.Dir}

	flat := make(map[string]map[string]string, len(group.Docs))
	for _, doc := range group.Docs {
		if doc.Err != nil {
			if result.Unreadable == nil {
				result.Unreadable = make(map[string]string)
			}
			result.Unreadable[doc.Name] = doc.Err.Error()

			continue
		}
		flat[doc.Name] = Flatten(doc.Data)
	}

	if len(flat) <= 1 {
		return result
	}

	keySet := make(map[string]struct{})
	for _, keys := range flat {
		for key := range keys {
			keySet[key] = struct{}{}
		}
	}
	allKeys := make([]string, 0, len(keySet))
	for key := range keySet {
		allKeys = append(allKeys, key)
	}
	sort.Strings(allKeys)

	for _, key := range allKeys {
		values := make(map[string]string, len(flat))
		distinct := make(map[string]struct{}, len(flat))
		for name, keys := range flat {
			val, ok := keys[key]
			if !ok {
				val = Missing
			}
			values[name] = val
			distinct[val] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}
		result.Entries = append(result.Entries, DiffEntry{Key: key, Values: values})
	}

	return result
}

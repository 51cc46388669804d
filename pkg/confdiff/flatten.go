package confdiff

import (
	"fmt"
	"strconv"
)

// Flatten 将嵌套映射展开为 FlatKey → 规范字符串 的映射。
//
// 映射键用 "." 连接，序列元素按下标展开。空映射与空序列没有叶子，
// 不产生条目。纯函数，除宿主调用栈外不限制嵌套深度。
func Flatten(data map[string]any) map[string]string {
	out := make(map[string]string)
	flattenValue(data, "", out)

	return out
}

func flattenValue(val any, prefix string, out map[string]string) {
	switch typed := val.(type) {
	case map[string]any:
		for key, child := range typed {
			flattenValue(child, joinKey(prefix, key), out)
		}
	case []any:
		for i, child := range typed {
			flattenValue(child, joinKey(prefix, strconv.Itoa(i)), out)
		}
	default:
		if prefix == "" {
			return
		}
		out[prefix] = CanonicalString(val)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

// CanonicalString 返回标量的规范字符串形式。
//
// 规则见包文档：布尔 → true/false，空值 → null，数字走 strconv，
// 字符串原样。差异比较只使用这份字符串。
func CanonicalString(val any) string {
	switch typed := val.(type) {
	case nil:
		return "null"
	case bool:
		if typed {
			return "true"
		}

		return "false"
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	case float32:
		return strconv.FormatFloat(float64(typed), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// Package confdiff 提供 YAML 实验配置的扁平化与组内差异分析。
//
// 同一目录下的配置文件视为一个对比组（ConfigGroup）：把每份文档的嵌套
// 键展开成点分路径（FlatKey），对组内全部文档取键的并集，凡取值（含缺失）
// 不完全一致的键输出一条差异记录（DiffEntry）。
//
// # 标量规范化
//
// 比较前所有标量先渲染为规范字符串，跨文档比较只看这份字符串：
//   - 布尔值 → "true" / "false"
//   - 空值 → "null"
//   - 整数 / 浮点数 → strconv 十进制形式
//   - 字符串 → 原样
//
// 注意：字符串 "true" 与布尔 true 渲染结果相同，二者跨文档视为相等。
// 这是有意为之——工具按研究者阅读配置的"逻辑值"口径对比，规则在比较
// 之前统一应用，不依赖各文档的字面标量类型。
//
// # 序列
//
// 序列元素按下标展开，如 {a: [1, 2]} → a.0 = "1"、a.1 = "2"。
// 同一路径在一份文档里是序列、在另一份里是映射时，不做类型标记，
// 仅按展开后的字符串差异报告。
//
// # 错误语义
//
// 三类结果必须可区分：
//   - 根目录不存在 → [ErrRootNotFound]（配置错误）
//   - 单个文档无法解析 → 记录在 [GroupDiff].Unreadable，组内其余文档照常对比
//   - 没有差异 → 空的差异序列，不是错误
//
// # 快速开始
//
//	analyzer := confdiff.NewAnalyzer("configs")
//	if err := analyzer.Refresh(); err != nil { ... }
//	for _, gd := range analyzer.Diffs() {
//	    for _, entry := range gd.Entries {
//	        fmt.Println(entry.Key, entry.Values)
//	    }
//	}
package confdiff

// Package cfgload 提供应用配置的分层加载。
//
// 支持 YAML/JSON，按默认值、配置文件、环境变量与 CLI flags 逐层覆盖。
// 配置 key 使用 json tag 统一描述，YAML 与 JSON 共享同一套 key。
//
// # 加载优先级 (从低到高)
//
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 [WithConfigPaths] 或 [WithAppName] 设置，命中首个即停止
//  3. 环境变量(前缀) - 通过 [WithEnvPrefix] 自动生成绑定
//  4. CLI flags - 通过 [WithCommand] 设置，仅用户显式指定的 flag 生效
//
// # 环境变量与 flag 映射
//
// 配置 key 中的 "." 和 "-" 转为 "_" 后大写再加前缀即环境变量名；
// CLI flag 名仅把 "." 换成 "-"：
//   - server.addr → CONFDIFF_SERVER_ADDR / --server-addr
//   - slurm.output-pattern → CONFDIFF_SLURM_OUTPUT_PATTERN / --slurm-output-pattern
//
// # 快速开始
//
//	cfg, err := cfgload.LoadCmd(cmd, config.DefaultConfig(), "confdiff",
//	    cfgload.WithEnvPrefix("CONFDIFF_"),
//	)
package cfgload

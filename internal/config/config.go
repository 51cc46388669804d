// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - config.yaml / config.json（见 pkg/cfgload 的搜索路径）
//  3. 环境变量 - CONFDIFF_ 前缀
//  4. CLI flags - 各子命令定义
package config

import "time"

// EnvPrefix 环境变量前缀。
const EnvPrefix = "CONFDIFF_"

// AppName 应用名称，用于生成配置文件搜索路径。
const AppName = "confdiff"

// Config 应用配置。
type Config struct {
	Server  ServerConfig  `json:"server" desc:"服务端配置"`
	Configs ConfigsConfig `json:"configs" desc:"实验配置目录"`
	Slurm   SlurmConfig   `json:"slurm" desc:"SLURM 作业配置"`
	SSH     SSHConfig     `json:"ssh" desc:"SSH 提交配置"`
	Watch   WatchConfig   `json:"watch" desc:"文件监听配置"`
}

// ServerConfig 服务端配置。
type ServerConfig struct {
	Addr     string        `json:"addr" desc:"服务器监听地址"`
	Assets   string        `json:"assets" desc:"前端静态文件目录路径"`
	Timeout  time.Duration `json:"timeout" desc:"HTTP 读写超时"`
	Idletime time.Duration `json:"idletime" desc:"HTTP 空闲超时"`
}

// ConfigsConfig 实验配置目录。
type ConfigsConfig struct {
	Root string `json:"root" desc:"YAML 实验配置根目录"`
}

// SlurmConfig SLURM 作业配置。
//
//nolint:tagliatelle
type SlurmConfig struct {
	Partition     string `json:"partition" desc:"默认分区"`
	Time          string `json:"time" desc:"默认运行时长 (wall-clock)"`
	Nodes         int    `json:"nodes" desc:"默认节点数"`
	OutputPattern string `json:"output-pattern" desc:"标准输出文件模式"`
	ErrorPattern  string `json:"error-pattern" desc:"标准错误文件模式"`
	TemplateFile  string `json:"template-file" desc:"sbatch 模板文件路径，留空使用内置模板"`
	WorkingDir    string `json:"working-dir" desc:"作业脚本写入目录（需登录节点可见）"`
}

// SSHConfig SSH 提交配置。
//
//nolint:tagliatelle
type SSHConfig struct {
	Host            string        `json:"host" desc:"登录节点主机名"`
	Port            int           `json:"port" desc:"SSH 端口"`
	CredentialsFile string        `json:"credentials-file" desc:"凭据文件（第一行用户名，第二行密码）"`
	Timeout         time.Duration `json:"timeout" desc:"远端命令超时"`
}

// WatchConfig 文件监听配置。
type WatchConfig struct {
	Enabled  bool          `json:"enabled" desc:"启用文件变更自动刷新"`
	Debounce time.Duration `json:"debounce" desc:"刷新防抖间隔"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":40121",
			Assets:   "web/dist",
			Timeout:  15 * time.Second,
			Idletime: 60 * time.Second,
		},
		Configs: ConfigsConfig{
			Root: "configs",
		},
		Slurm: SlurmConfig{
			Partition:     "general",
			Time:          "12:00:00",
			Nodes:         1,
			OutputPattern: "slurm-%j.out",
			ErrorPattern:  "slurm-%j.err",
			TemplateFile:  "",
			WorkingDir:    ".",
		},
		SSH: SSHConfig{
			Host:            "",
			Port:            22,
			CredentialsFile: "secret.txt",
			Timeout:         30 * time.Second,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: time.Second,
		},
	}
}

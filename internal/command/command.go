// Package command 提供各子命令共享的命令行基础。
package command

import "github.com/lwmacct/260112-go-pkg-confdiff/internal/config"

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

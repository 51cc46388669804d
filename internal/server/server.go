// Package server 提供 Web API 层。
//
// 所有接口返回 JSON。三类结果严格区分：无差异（200，空列表）、
// 文档不可读（载荷中的 unreadable 标记）、根目录不存在（500 配置
// 错误），绝不合并成一个笼统的失败。
package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/submit"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/confdiff"
)

// Server 持有 HTTP 层的协作对象。
type Server struct {
	analyzer  *confdiff.Analyzer
	submitter *submit.Submitter
	assets    string
}

// New 创建 Server。assets 为空时根路径只返回欢迎 JSON。
func New(analyzer *confdiff.Analyzer, submitter *submit.Submitter, assets string) *Server {
	return &Server{analyzer: analyzer, submitter: submitter, assets: assets}
}

// Handler 组装全部路由。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/differences", s.handleDifferences)
	mux.HandleFunc("GET /api/differences/{path...}", s.handleDifferences)
	mux.HandleFunc("GET /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/create-config", s.handleCreateConfig)
	mux.HandleFunc("POST /api/submit-slurm", s.handleSubmit)

	if s.assets != "" {
		assetsFS := http.FileServer(http.Dir(s.assets))
		mux.Handle("/ui/", http.StripPrefix("/ui/", assetsFS))
	}

	// {$} 精确匹配根路径
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.assets != "" {
		index := filepath.Join(s.assets, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)

			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "confdiff", "ui": "/ui/"})
}

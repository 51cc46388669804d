package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/submit"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/confdiff"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Tree())
}

func (s *Server) handleDifferences(w http.ResponseWriter, r *http.Request) {
	prefix := r.PathValue("path")
	writeJSON(w, http.StatusOK, s.analyzer.DiffsForPath(prefix))
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if err := s.analyzer.Refresh(); err != nil {
		status := http.StatusInternalServerError
		slog.Error("Refresh failed", "error", err)
		writeError(w, status, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

type createConfigRequest struct {
	Filename  string            `json:"filename"`
	Directory string            `json:"directory"`
	Overrides map[string]string `json:"overrides"`
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req createConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")

		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeError(w, http.StatusBadRequest, "filename is required")

		return
	}

	path, err := s.analyzer.CreateConfig(req.Directory, req.Filename, req.Overrides)
	if err != nil {
		switch {
		case errors.Is(err, confdiff.ErrConfigExists), errors.Is(err, confdiff.ErrNoBaseConfig):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Create config failed", "error", err)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create config: %v", err))
		}

		return
	}

	slog.Info("Created config", "path", path)
	writeJSON(w, http.StatusOK, map[string]string{"status": "created", "path": path})
}

type submitRequest struct {
	JobName    string `json:"jobName"`
	UseGPU     bool   `json:"useGpu"`
	Memory     string `json:"memory"`
	ConfigPath string `json:"configPath"`
}

type submitResponse struct {
	Status string `json:"status"`
	submit.Result
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")

		return
	}
	if req.Memory == "" {
		req.Memory = "64G"
	}

	result, err := s.submitter.Submit(r.Context(), submit.Request{
		JobName:    strings.TrimSpace(req.JobName),
		ConfigPath: strings.TrimSpace(req.ConfigPath),
		Memory:     req.Memory,
		UseGPU:     req.UseGPU,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	status := "submitted"
	if result.Manual {
		status = "ready_for_manual_submission"
	}
	writeJSON(w, http.StatusOK, submitResponse{Status: status, Result: result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package sbatch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/sbatch"
)

func baseOptions() sbatch.Options {
	return sbatch.Options{
		JobName:       "ppo-seed42",
		ConfigPath:    "configs/ppo/seed42.yaml",
		Memory:        "64G",
		Partition:     "general",
		Time:          "12:00:00",
		Nodes:         1,
		OutputPattern: "slurm-%j.out",
		ErrorPattern:  "slurm-%j.err",
	}
}

func TestRender(t *testing.T) {
	template := "#SBATCH --job-name={job_name}\n#SBATCH --mem={memory}\n{gpu_line}\npython train.py --cfg {config_path}\n"

	tests := []struct {
		name     string
		template string
		mutate   func(*sbatch.Options)
		want     []string
		absent   []string
		wantErr  string
	}{
		{
			name:     "basic substitution",
			template: template,
			want:     []string{"--job-name=ppo-seed42", "--mem=64G", "--cfg configs/ppo/seed42.yaml"},
			absent:   []string{"{", "}"},
		},
		{
			name:     "gpu requested injects gres line",
			template: template,
			mutate:   func(o *sbatch.Options) { o.UseGPU = true },
			want:     []string{sbatch.GPULine},
		},
		{
			name:     "gpu not requested leaves line empty",
			template: template,
			absent:   []string{"--gres"},
		},
		{
			name:     "missing required placeholder",
			template: "#SBATCH --job-name={job_name}\npython train.py --cfg {config_path}\n",
			wantErr:  "missing required placeholder {memory}",
		},
		{
			name:     "gpu required but template has no gpu_line",
			template: "{job_name} {memory} {config_path}",
			mutate:   func(o *sbatch.Options) { o.UseGPU = true },
			wantErr:  "missing required placeholder {gpu_line}",
		},
		{
			name:     "unknown placeholder",
			template: "{job_name} {memory} {config_path} {account}",
			wantErr:  "unknown placeholder {account}",
		},
		{
			name:     "invalid placeholder name",
			template: "{job_name} {memory} {config_path} {Account}",
			wantErr:  "invalid placeholder {Account}",
		},
		{
			name:     "escaped braces",
			template: "{job_name} {memory} {config_path} awk '{{print $1}}'",
			want:     []string{"awk '{print $1}'"},
		},
		{
			name:     "shell variables pass through",
			template: "{job_name} {memory} {config_path}\nexport ROOT=${APPTAINER_ROOT:-/opt}\n",
			want:     []string{"${APPTAINER_ROOT:-/opt}"},
		},
		{
			name:     "unmatched closing brace",
			template: "{job_name} {memory} {config_path} }",
			wantErr:  "unmatched '}'",
		},
		{
			name:     "unmatched opening brace",
			template: "{job_name} {memory} {config_path} {oops",
			wantErr:  "unmatched '{'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}

			got, err := sbatch.Render(tt.template, opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
			for _, absent := range tt.absent {
				assert.NotContains(t, got, absent)
			}
		})
	}
}

func TestRender_Fallback(t *testing.T) {
	opts := baseOptions()
	opts.UseGPU = true

	got, err := sbatch.Render(sbatch.Fallback, opts)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "#!/bin/sh"))
	assert.Contains(t, got, "#SBATCH --job-name=ppo-seed42")
	assert.Contains(t, got, "#SBATCH --partition=general")
	assert.Contains(t, got, "#SBATCH --time=12:00:00")
	assert.Contains(t, got, "#SBATCH --nodes=1")
	assert.Contains(t, got, sbatch.GPULine)
	assert.Contains(t, got, "slurm-%j.out")
	assert.Contains(t, got, "--cfg configs/ppo/seed42.yaml")
	assert.NotContains(t, got, "{")
}

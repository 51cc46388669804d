// Package sbatch 提供 SLURM 作业脚本模板的占位符替换。
//
// 模板是普通文本，占位符写作 {name}，只做字面替换，不执行命令、
// 不引入模板引擎。"{{" 与 "}}" 表示字面大括号，shell 的 ${VAR}
// 语法不受影响。
//
// # 占位符集合
//
//	{job_name} {memory} {config_path} {gpu_line} {partition}
//	{time} {nodes} {output_pattern} {error_pattern}
//
// # 失败语义
//
// 出现未知的 {identifier} 占位符、或本次提交所需的占位符在模板中
// 缺失（{job_name}、{config_path}、{memory} 恒为必需，申请 GPU 时
// {gpu_line} 也必需）都会返回错误，绝不静默忽略。
//
// # 快速开始
//
//	script, err := sbatch.Render(sbatch.Fallback, sbatch.Options{
//	    JobName:    "ppo-seed42",
//	    ConfigPath: "configs/ppo/seed42.yaml",
//	    Memory:     "64G",
//	})
package sbatch

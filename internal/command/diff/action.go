package diff

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/config"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/cfgload"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/confdiff"
)

func action(_ context.Context, cmd *cli.Command) error {
	cfg, err := cfgload.LoadCmd(cmd, config.DefaultConfig(), config.AppName,
		cfgload.WithEnvPrefix(config.EnvPrefix),
	)
	if err != nil {
		return err
	}

	analyzer := confdiff.NewAnalyzer(cfg.Configs.Root)
	if err := analyzer.Refresh(); err != nil {
		return err
	}

	dirFilter := cmd.Args().First()
	diffs := analyzer.Diffs()
	if dirFilter != "" {
		filtered := diffs[:0]
		for _, gd := range diffs {
			if gd.Dir == dirFilter {
				filtered = append(filtered, gd)
			}
		}
		diffs = filtered
	}

	if cmd.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(diffs)
	}

	printDiffs(diffs)

	return nil
}

func printDiffs(diffs []confdiff.GroupDiff) {
	total := 0
	for _, gd := range diffs {
		if len(gd.Entries) == 0 && len(gd.Unreadable) == 0 {
			continue
		}

		dir := gd.Dir
		if dir == "" {
			dir = "."
		}
		fmt.Printf("== %s\n", dir)

		for name, msg := range sortedMap(gd.Unreadable) {
			fmt.Printf("  !! %s: unreadable: %s\n", name, msg)
		}
		for _, entry := range gd.Entries {
			fmt.Printf("  %s\n", entry.Key)
			for name, val := range sortedMap(entry.Values) {
				fmt.Printf("    %-24s %s\n", name, val)
			}
		}
		total += len(gd.Entries)
	}

	if total == 0 {
		fmt.Println("No differences found.")
	}
}

// sortedMap 按键排序遍历，保证输出稳定。
func sortedMap(m map[string]string) func(func(string, string) bool) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return func(yield func(string, string) bool) {
		for _, key := range keys {
			if !yield(key, m[key]) {
				return
			}
		}
	}
}

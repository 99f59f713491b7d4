package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodMac/go-treesitter-maybe-async/model"
)

// WriteInPlace 把发生改写的文件写回原路径，返回写出的文件数
func WriteInPlace(results []*model.FileResult) (int, error) {
	count := 0
	for _, res := range results {
		if !res.Changed {
			continue
		}
		if err := os.WriteFile(res.Path, res.Output, 0o644); err != nil {
			return count, fmt.Errorf("failed to write %s: %w", res.Path, err)
		}
		count++
	}
	return count, nil
}

// WriteToDir 把全部结果（含未改写的文件）镜像写入输出目录，
// 目录结构以 root 为基准保持不变。
func WriteToDir(results []*model.FileResult, root, outDir string) (int, error) {
	count := 0
	for _, res := range results {
		rel, err := filepath.Rel(root, res.Path)
		if err != nil {
			rel = filepath.Base(res.Path)
		}
		target := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return count, fmt.Errorf("failed to create directory for %s: %w", target, err)
		}
		if err := os.WriteFile(target, res.Output, 0o644); err != nil {
			return count, fmt.Errorf("failed to write %s: %w", target, err)
		}
		count++
	}
	return count, nil
}

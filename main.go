package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/output"
	"github.com/CodMac/go-treesitter-maybe-async/processor"
	"github.com/CodMac/go-treesitter-maybe-async/rewrite"

	// 导入语言实现，触发其 init() 注册语言对象与改写器
	_ "github.com/CodMac/go-treesitter-maybe-async/x/rust"
)

var (
	inputPath  string
	language   string
	modeFlag   string
	workers    int
	writeBack  bool
	outDir     string
	reportPath string
	verbose    bool
)

func init() {
	// 命令行参数定义
	flag.StringVar(&inputPath, "path", ".", "要预处理的源码目录或文件路径")
	flag.StringVar(&language, "lang", "rust", "源码语言 (目前支持 rust)")
	flag.StringVar(&modeFlag, "mode", "", "编译模式特性开关：async 或 sync，缺省为 sync")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "并发处理文件的协程数量 (默认 CPU 核心数)")
	flag.BoolVar(&writeBack, "write", false, "将改写结果写回原文件")
	flag.StringVar(&outDir, "out", "", "将结果镜像写入指定输出目录")
	flag.StringVar(&reportPath, "report", "", "将改写记录以 JSONL 格式写入指定文件")
	flag.BoolVar(&verbose, "v", false, "输出调试日志")
}

func main() {
	flag.Parse()

	logger := newLogger(verbose)
	defer logger.Sync()

	// 1. 验证输入语言
	lang := model.Language(language)
	if _, err := rewrite.GetFileRewriter(lang); err != nil {
		fmt.Fprintf(os.Stderr, "Error: unsupported language or rewriter not registered: %s\n", language)
		os.Exit(1)
	}
	mode := model.ParseMode(modeFlag)

	// 2. 查找所有要处理的文件
	filePaths, err := discoverFiles(inputPath, lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering files: %v\n", err)
		os.Exit(1)
	}
	if len(filePaths) == 0 {
		fmt.Println("No source files found to process.")
		return
	}

	logger.Info("starting rewrite",
		zap.String("lang", string(lang)),
		zap.String("mode", string(mode)),
		zap.Int("files", len(filePaths)),
		zap.Int("workers", workers))

	// 3. 启动处理器
	proc := processor.NewFileProcessor(lang, mode, workers, logger)
	results, err := proc.ProcessFiles(context.Background(), filePaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal processing error: %v\n", err)
		os.Exit(1)
	}

	changed := 0
	rewrites := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
		rewrites += len(res.Rewrites)
	}
	logger.Info("rewrite complete",
		zap.Int("files", len(results)),
		zap.Int("changed", changed),
		zap.Int("rewrites", rewrites))

	// 4. 输出结果
	switch {
	case writeBack:
		n, err := output.WriteInPlace(results)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing files: %v\n", err)
			os.Exit(1)
		}
		logger.Info("files written in place", zap.Int("count", n))
	case outDir != "":
		n, err := output.WriteToDir(results, inputPath, outDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing files: %v\n", err)
			os.Exit(1)
		}
		logger.Info("files written", zap.String("dir", outDir), zap.Int("count", n))
	default:
		// 未指定输出时为演练模式，仅把改写记录打到标准输出
		if _, err := output.NewJSONLWriter(os.Stdout).WriteAllRewrites(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	}

	if reportPath != "" {
		n, err := output.ExportReport(reportPath, results)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		logger.Info("report written", zap.String("path", reportPath), zap.Int("entries", n))
	}
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// discoverFiles 递归查找目录下所有符合语言要求的文件路径。
func discoverFiles(root string, lang model.Language) ([]string, error) {
	ext := model.FileExtension(lang)

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(root) == ext {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// 忽略隐藏目录与构建产物目录
			name := d.Name()
			if path != root && (name[0] == '.' || name == "target") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ext {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

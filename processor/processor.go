package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/rewrite"
)

// FileProcessor 负责并发预处理文件列表，并聚合所有改写结果。
// 转换本身是纯函数且文件之间无共享状态，按文件粒度并发是安全的。
type FileProcessor struct {
	Language model.Language
	Mode     model.Mode
	Workers  int // 并发协程数量

	log *zap.Logger
}

// NewFileProcessor 创建 FileProcessor 实例
func NewFileProcessor(lang model.Language, mode model.Mode, workers int, log *zap.Logger) *FileProcessor {
	if workers <= 0 {
		workers = 4 // 默认并发数
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileProcessor{
		Language: lang,
		Mode:     mode,
		Workers:  workers,
		log:      log,
	}
}

// ProcessFiles 并发读取并改写所有文件，按路径排序返回结果。
// 任一文件失败（表达式无法解析）即取消整个批次。
func (fp *FileProcessor) ProcessFiles(ctx context.Context, filePaths []string) ([]*model.FileResult, error) {
	if len(filePaths) == 0 {
		return nil, nil
	}

	rw, err := rewrite.GetFileRewriter(fp.Language)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	filesChan := make(chan string, len(filePaths))
	resultsChan := make(chan *model.FileResult, len(filePaths))
	errChan := make(chan error, fp.Workers)
	var wg sync.WaitGroup

	for i := 0; i < fp.Workers; i++ {
		wg.Add(1)
		go fp.worker(ctx, &wg, rw, filesChan, resultsChan, errChan)
	}

	for _, path := range filePaths {
		filesChan <- path
	}
	close(filesChan)

	go func() {
		wg.Wait()
		close(resultsChan)
		close(errChan)
	}()

	var results []*model.FileResult
	for res := range resultsChan {
		results = append(results, res)
	}
	if err := <-errChan; err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

func (fp *FileProcessor) worker(ctx context.Context, wg *sync.WaitGroup, rw rewrite.FileRewriter,
	files <-chan string, results chan<- *model.FileResult, errChan chan<- error) {
	defer wg.Done()

	for path := range files {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := fp.processOne(rw, path)
		if err != nil {
			select {
			case errChan <- err:
			default:
			}
			return
		}
		results <- res
	}
}

func (fp *FileProcessor) processOne(rw rewrite.FileRewriter, path string) (*model.FileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	out, rewrites, err := rw.RewriteFile(path, src, fp.Mode)
	if err != nil {
		return nil, err
	}

	for _, r := range rewrites {
		if r.Shape == model.ShapeUnrecognized {
			// 静默透传是声明转换器的契约；这里仅以调试日志暴露可疑标注
			fp.log.Debug("attribute on unrecognized item dropped",
				zap.String("path", path),
				zap.Int("line", lineOf(r.Location)))
		}
	}
	fp.log.Debug("file processed",
		zap.String("path", path),
		zap.Int("rewrites", len(rewrites)),
		zap.Bool("changed", !bytes.Equal(src, out)))

	return &model.FileResult{
		Path:     path,
		Output:   out,
		Rewrites: rewrites,
		Changed:  !bytes.Equal(src, out),
	}, nil
}

func lineOf(loc *model.Location) int {
	if loc == nil {
		return 0
	}
	return loc.StartLine
}

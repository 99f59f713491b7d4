package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/CodMac/go-treesitter-maybe-async/model"
)

type JSONLWriter struct {
	encoder *json.Encoder
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		encoder: json.NewEncoder(w),
	}
}

func (w *JSONLWriter) Write(v interface{}) error {
	return w.encoder.Encode(v)
}

// reportEntry 报告中的一行：一次改写及其所在文件
type reportEntry struct {
	File string `json:"file"`
	model.Rewrite
}

// WriteAllRewrites 把所有文件的改写记录逐行写出
func (w *JSONLWriter) WriteAllRewrites(results []*model.FileResult) (int, error) {
	count := 0
	for _, res := range results {
		for _, r := range res.Rewrites {
			if err := w.Write(reportEntry{File: res.Path, Rewrite: r}); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// ExportReport 封装了导出改写报告的核心逻辑
func ExportReport(path string, results []*model.FileResult) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return NewJSONLWriter(f).WriteAllRewrites(results)
}

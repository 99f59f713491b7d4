package rewrite

import (
	"fmt"

	"github.com/CodMac/go-treesitter-maybe-async/model"
)

// ExprParseError 表示表达式片段无法解析为单个完整表达式。
//
// 表达式转换器没有 "未识别" 的回退形状，解析失败即中止所在编译单元。
// tree-sitter 不提供解析器报错文本，因此错误携带首个出错节点的原始位置
// 与片段摘录，保证失败点可定位。
type ExprParseError struct {
	Location model.Location
	// Reason 描述失败类别（语法错误 / 多余内容 / 非表达式输入）
	Reason string
	// Snippet 为片段中出错处附近的源码摘录
	Snippet string
}

func (e *ExprParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Location.StartLine, e.Location.StartColumn)
	if e.Location.FilePath != "" {
		loc = e.Location.FilePath + ":" + loc
	}
	if e.Snippet != "" {
		return fmt.Sprintf("%s: cannot parse expression: %s near %q", loc, e.Reason, e.Snippet)
	}
	return fmt.Sprintf("%s: cannot parse expression: %s", loc, e.Reason)
}

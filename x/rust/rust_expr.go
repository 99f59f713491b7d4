package rust

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/parser"
	"github.com/CodMac/go-treesitter-maybe-async/rewrite"
)

// Rust 语法中裸表达式不是合法的顶层条目，解析时包装为合成函数的尾表达式。
// 前缀恰好占一行，片段内的行号按 "包装行号 == 片段行号" 直接对应。
const (
	exprWrapPrefix = "fn __maybe_await__() {\n"
	exprWrapSuffix = "\n}\n"
)

// exprInfo 是一次表达式片段解析的结果（偏移均为片段内坐标）
type exprInfo struct {
	// end 表达式结束偏移，挂起标记的追加位置
	end int
	// awaits 片段内出现的 maybe_await! 宏调用（文件级预处理使用）
	awaits []awaitCall
}

// awaitCall 记录一次 maybe_await! 宏调用的整体区间与实参区间
type awaitCall struct {
	start      int
	end        int
	innerStart int
	innerEnd   int
}

// RewriteExpr 对单个表达式片段执行转换。
//
// 输入必须恰好是一个完整表达式。异步模式下在表达式尾部追加一次 .await
// 标记，同步模式下原样返回；两种模式都先做解析校验，校验失败返回
// *rewrite.ExprParseError，中止所在编译单元——这是系统唯一的硬失败边界。
func (r *Rewriter) RewriteExpr(src []byte, mode model.Mode) ([]byte, error) {
	info, err := r.parseExpr("", 1, 0, src)
	if err != nil {
		return nil, err
	}
	if !mode.Enabled() {
		return src, nil
	}
	return applyEdits(src, []edit{{start: info.end, end: info.end, text: AwaitMarker}}), nil
}

// parseExpr 在表达式上下文中解析片段并校验其恰好为一个表达式。
// filePath/baseLine/baseCol 描述片段在宿主文件中的起点，用于错误定位；
// 片段独立存在时传 ("", 1, 0)。
func (r *Rewriter) parseExpr(filePath string, baseLine, baseCol int, src []byte) (*exprInfo, error) {
	p, err := parser.NewParser(model.LangRust)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s parser: %w", model.LangRust, err)
	}
	defer p.Close()

	wrapped := make([]byte, 0, len(exprWrapPrefix)+len(src)+len(exprWrapSuffix))
	wrapped = append(wrapped, exprWrapPrefix...)
	wrapped = append(wrapped, src...)
	wrapped = append(wrapped, exprWrapSuffix...)

	tree, err := p.Parse(wrapped)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		errNode := findErrorNode(root)
		return nil, exprError(filePath, baseLine, baseCol, src, errNode, "syntax error")
	}
	// 片段内不平衡的花括号会逃逸出合成函数体，表现为多出的顶层条目
	if root.NamedChildCount() != 1 {
		var extra *sitter.Node
		if root.NamedChildCount() > 1 {
			extra = root.NamedChild(1)
		}
		return nil, exprError(filePath, baseLine, baseCol, src, extra, "expected a single expression")
	}

	body := root.NamedChild(0).ChildByFieldName(FieldBody)
	if body == nil {
		return nil, exprError(filePath, baseLine, baseCol, src, nil, "expected a single expression")
	}
	var exprNode *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(uint(i))
		switch child.Kind() {
		case KindLineComment, KindBlockComment:
			continue
		}
		if exprNode != nil {
			return nil, exprError(filePath, baseLine, baseCol, src, child, "expected a single expression")
		}
		exprNode = child
	}
	if exprNode == nil {
		return nil, exprError(filePath, baseLine, baseCol, src, nil, "empty expression")
	}
	// 块类表达式（{..}、if、match、loop）即便不带分号也会被包成
	// expression_statement；没有分号时剥掉这层，有分号则拒绝
	if exprNode.Kind() == KindExpressionStatement {
		if hasSemicolonChild(exprNode) || exprNode.NamedChildCount() != 1 {
			return nil, exprError(filePath, baseLine, baseCol, src, exprNode, "unexpected trailing `;`")
		}
		exprNode = exprNode.NamedChild(0)
	}
	if reason, ok := nonExprReason(exprNode.Kind()); !ok {
		return nil, exprError(filePath, baseLine, baseCol, src, exprNode, reason)
	}

	info := &exprInfo{end: int(exprNode.EndByte()) - len(exprWrapPrefix)}
	collectAwaitCalls(exprNode, wrapped, &info.awaits)
	return info, nil
}

// hasSemicolonChild 报告语句节点是否以分号结尾
func hasSemicolonChild(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(uint(i)).Kind() == ";" {
			return true
		}
	}
	return false
}

// nonExprReason 判断节点类型是否为表达式；不是时给出失败原因。
// 合成函数体内，语句与声明条目会以这些节点类型出现。
func nonExprReason(kind string) (string, bool) {
	switch kind {
	case KindExpressionStatement:
		// 尾表达式不带分号；出现 expression_statement 说明片段带了 `;`
		return "unexpected trailing `;`", false
	case KindLetDeclaration, KindEmptyStatement:
		return "input is a statement, not an expression", false
	}
	if strings.HasSuffix(kind, "_item") || strings.HasSuffix(kind, "_declaration") {
		return "input is a declaration, not an expression", false
	}
	return "", true
}

// collectAwaitCalls 收集节点下全部 maybe_await! 宏调用（坐标换算到片段内）。
// 匹配到的调用不再深入：其实参是未解析的 token 序列，嵌套调用由
// 预处理器对实参文本递归展开。
func collectAwaitCalls(n *sitter.Node, wrapped []byte, out *[]awaitCall) {
	if n.Kind() == KindMacroInvocation && macroName(n, wrapped) == MacroMaybeAwait {
		if tt := tokenTreeChild(n); tt != nil {
			*out = append(*out, awaitCall{
				start:      int(n.StartByte()) - len(exprWrapPrefix),
				end:        int(n.EndByte()) - len(exprWrapPrefix),
				innerStart: int(tt.StartByte()) + 1 - len(exprWrapPrefix),
				innerEnd:   int(tt.EndByte()) - 1 - len(exprWrapPrefix),
			})
			return
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectAwaitCalls(n.NamedChild(uint(i)), wrapped, out)
	}
}

// macroName 返回宏调用路径的末段名称
func macroName(inv *sitter.Node, src []byte) string {
	macro := inv.ChildByFieldName(FieldMacro)
	if macro == nil {
		return ""
	}
	path := macro.Utf8Text(src)
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		path = path[idx+2:]
	}
	return path
}

// tokenTreeChild 返回宏调用的实参 token 树
func tokenTreeChild(inv *sitter.Node) *sitter.Node {
	for i := 0; i < int(inv.NamedChildCount()); i++ {
		if child := inv.NamedChild(uint(i)); child.Kind() == KindTokenTree {
			return child
		}
	}
	return nil
}

// findErrorNode 定位语法树中首个出错或缺失的节点
func findErrorNode(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if child.HasError() || child.IsMissing() {
			if found := findErrorNode(child); found != nil {
				return found
			}
		}
	}
	return nil
}

// exprError 构造带片段定位的解析错误，行列号换算回宿主文件坐标
func exprError(filePath string, baseLine, baseCol int, src []byte, n *sitter.Node, reason string) error {
	e := &rewrite.ExprParseError{
		Location: model.Location{FilePath: filePath, StartLine: baseLine, StartColumn: baseCol},
		Reason:   reason,
	}
	if n == nil {
		return e
	}

	// 包装前缀占一行：包装内 Row k 对应片段内第 k 行（1 起）
	fragLine := int(n.StartPosition().Row)
	fragCol := int(n.StartPosition().Column)
	offset := int(n.StartByte()) - len(exprWrapPrefix)

	// 错误可能落在包装后缀上（如未闭合的括号），收敛到片段末尾
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	if fragLine < 1 {
		fragLine, fragCol = 1, 0
	}

	if fragLine == 1 {
		e.Location.StartColumn = baseCol + fragCol
	} else {
		e.Location.StartColumn = fragCol
	}
	e.Location.StartLine = baseLine + fragLine - 1
	e.Snippet = snippetAt(src, offset)
	return e
}

// snippetAt 截取偏移处的一小段源码用于错误展示
func snippetAt(src []byte, offset int) string {
	s := string(src[offset:])
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 24 {
		s = s[:24]
	}
	return strings.TrimSpace(s)
}

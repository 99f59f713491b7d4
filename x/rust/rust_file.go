package rust

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/parser"
)

// RewriteFile 对整个源文件执行预处理：展开 #[maybe_async] 属性与
// maybe_await! 宏调用，是声明/表达式两个转换器的构建管线入口形态。
//
// 属性展开规则：属性本身总是被消费掉；异步模式下被标注的条目经过声明
// 转换（trait/impl 的属性原位替换为 async_trait 兼容注解），同步模式下
// 条目保持原样。标注在无法识别的条目上时属性同样被移除，条目不动——
// 与声明转换器的静默透传语义一致。
//
// 宏展开规则：maybe_await!(expr) 被替换为转换后的实参表达式，嵌套调用
// 对实参文本递归展开。实参无法解析为单个表达式时整个文件处理失败。
func (r *Rewriter) RewriteFile(filePath string, src []byte, mode model.Mode) ([]byte, []model.Rewrite, error) {
	p, err := parser.NewParser(model.LangRust)
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()

	tree, err := p.Parse(src)
	if err != nil {
		return nil, nil, err
	}
	defer tree.Close()

	w := &fileWalk{
		rewriter: r,
		filePath: filePath,
		src:      src,
		mode:     mode,
		seen:     make(map[int]bool),
	}
	if err := w.visit(tree.RootNode()); err != nil {
		return nil, nil, err
	}
	return applyEdits(src, w.edits), w.rewrites, nil
}

// fileWalk 持有一次文件遍历中累积的改写
type fileWalk struct {
	rewriter *Rewriter
	filePath string
	src      []byte
	mode     model.Mode
	// seen 去重 async 插入点：trait/impl 与其内部方法可能分别被标注
	seen     map[int]bool
	edits    []edit
	rewrites []model.Rewrite
}

func (w *fileWalk) visit(n *sitter.Node) error {
	switch n.Kind() {
	case KindAttributeItem:
		// 属性内部不再下钻
		if attrPathName(n, w.src) == AttrMaybeAsync {
			w.handleAttribute(n)
		}
		return nil
	case KindMacroInvocation:
		// 宏实参是未解析的 token 序列，无论是否匹配都无需下钻
		if macroName(n, w.src) == MacroMaybeAwait {
			return w.handleAwaitMacro(n)
		}
		return nil
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := w.visit(n.NamedChild(uint(i))); err != nil {
			return err
		}
	}
	return nil
}

// handleAttribute 展开一个 #[maybe_async] 属性及其标注的条目
func (w *fileWalk) handleAttribute(attr *sitter.Node) {
	item := attributedItem(attr)
	shape := model.ShapeUnrecognized
	if item != nil {
		_, shape = shapeOfItem(item)
	}

	wrapShape := shape == model.ShapeTrait || shape == model.ShapeImpl
	if w.mode.Enabled() && wrapShape {
		// trait/impl：属性原位替换为兼容注解，保留行与缩进
		w.edits = append(w.edits, edit{
			start: int(attr.StartByte()),
			end:   int(attr.EndByte()),
			text:  AsyncTraitAttr,
		})
	} else {
		w.edits = append(w.edits, attrDeleteEdit(w.src, attr))
	}

	if shape == model.ShapeUnrecognized {
		// 标注打在非函数/trait/impl 条目上：属性被吞掉，条目原样保留。
		// 记录下来供调用方以调试日志暴露，但不构成错误。
		w.rewrites = append(w.rewrites, model.Rewrite{
			Shape:    shape,
			Location: nodeLocation(attr, w.filePath),
		})
		return
	}
	if !w.mode.Enabled() {
		return
	}

	medits, markers := methodMarkerEdits(item, shape, w.seen)
	w.edits = append(w.edits, medits...)
	w.rewrites = append(w.rewrites, model.Rewrite{
		Shape:    shape,
		Location: nodeLocation(item, w.filePath),
		Markers:  markers,
		Wrapped:  wrapShape,
	})
}

// handleAwaitMacro 展开一个 maybe_await! 宏调用
func (w *fileWalk) handleAwaitMacro(inv *sitter.Node) error {
	tt := tokenTreeChild(inv)
	if tt == nil {
		return nil
	}
	innerStart := int(tt.StartByte()) + 1
	innerEnd := int(tt.EndByte()) - 1
	inner := w.src[innerStart:innerEnd]

	baseLine := int(tt.StartPosition().Row) + 1
	baseCol := int(tt.StartPosition().Column) + 1

	expanded, markers, err := w.rewriter.expandAwait(w.filePath, baseLine, baseCol, inner, w.mode)
	if err != nil {
		return err
	}

	w.edits = append(w.edits, edit{
		start: int(inv.StartByte()),
		end:   int(inv.EndByte()),
		text:  expanded,
	})
	w.rewrites = append(w.rewrites, model.Rewrite{
		Shape:    model.ShapeExpression,
		Location: nodeLocation(inv, w.filePath),
		Markers:  markers,
	})
	return nil
}

// expandAwait 递归展开一个表达式片段：先展开嵌套的 maybe_await! 调用，
// 再按模式决定是否在表达式尾部追加挂起标记。返回展开文本与注入的标记数。
func (r *Rewriter) expandAwait(filePath string, baseLine, baseCol int, frag []byte, mode model.Mode) (string, int, error) {
	info, err := r.parseExpr(filePath, baseLine, baseCol, frag)
	if err != nil {
		return "", 0, err
	}

	markers := 0
	var edits []edit
	for _, ac := range info.awaits {
		nestedLine, nestedCol := relocate(baseLine, baseCol, frag, ac.innerStart)
		expanded, m, err := r.expandAwait(filePath, nestedLine, nestedCol, frag[ac.innerStart:ac.innerEnd], mode)
		if err != nil {
			return "", 0, err
		}
		markers += m
		edits = append(edits, edit{start: ac.start, end: ac.end, text: expanded})
	}

	out := applyEdits(frag, edits)
	if mode.Enabled() {
		// 嵌套替换全部位于表达式区间之内，结束偏移按长度差平移
		insertAt := info.end + (len(out) - len(frag))
		out = applyEdits(out, []edit{{start: insertAt, end: insertAt, text: AwaitMarker}})
		markers++
	}
	return string(out), markers, nil
}

// relocate 把片段内偏移换算为宿主文件中的行列（片段自身起于 baseLine/baseCol）
func relocate(baseLine, baseCol int, frag []byte, offset int) (int, int) {
	line := baseLine
	col := baseCol
	for i := 0; i < offset && i < len(frag); i++ {
		if frag[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// attributedItem 返回属性所标注的条目：其后首个非属性、非注释的命名兄弟节点
func attributedItem(attr *sitter.Node) *sitter.Node {
	for n := attr.NextNamedSibling(); n != nil; n = n.NextNamedSibling() {
		switch n.Kind() {
		case KindAttributeItem, KindLineComment, KindBlockComment:
			continue
		}
		return n
	}
	return nil
}

// shapeOfItem 按声明转换器的固定优先级映射条目类型到形状
func shapeOfItem(item *sitter.Node) (*sitter.Node, model.Shape) {
	switch item.Kind() {
	case KindFunctionItem:
		return item, model.ShapeFreeFunction
	case KindFunctionSignatureItem:
		return item, model.ShapeTraitMethod
	case KindTraitItem:
		return item, model.ShapeTrait
	case KindImplItem:
		return item, model.ShapeImpl
	default:
		return nil, model.ShapeUnrecognized
	}
}

// attrPathName 返回属性路径的末段名称（#[a::b::maybe_async] -> maybe_async），
// 带参数形式 #[maybe_async(...)] 同样匹配，参数文本被忽略
func attrPathName(attr *sitter.Node, src []byte) string {
	if attr.NamedChildCount() == 0 {
		return ""
	}
	meta := attr.NamedChild(0)
	if meta.ChildCount() == 0 {
		return ""
	}
	path := meta.Child(0).Utf8Text(src)
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		path = path[idx+2:]
	}
	return path
}

// attrDeleteEdit 计算移除属性的删除区间。属性独占一行时连同整行删除，
// 与条目同行时额外吞掉其后的一个空格。
func attrDeleteEdit(src []byte, attr *sitter.Node) edit {
	start := int(attr.StartByte())
	end := int(attr.EndByte())

	lineStart := start
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	onOwnLine := strings.TrimLeft(string(src[lineStart:start]), " \t") == ""

	lineEnd := end
	if lineEnd < len(src) && src[lineEnd] == '\r' {
		lineEnd++
	}
	if onOwnLine && lineEnd < len(src) && src[lineEnd] == '\n' {
		return edit{start: lineStart, end: lineEnd + 1}
	}
	if end < len(src) && src[end] == ' ' {
		end++
	}
	return edit{start: start, end: end}
}

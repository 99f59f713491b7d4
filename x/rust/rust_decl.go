package rust

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/parser"
)

// Rewriter 实现了 rewrite.DeclRewriter / ExprRewriter / FileRewriter 接口。
// 无内部状态，每次调用独立创建解析器，相同输入加相同模式必然产生相同输出。
type Rewriter struct{}

func NewRustRewriter() *Rewriter {
	return &Rewriter{}
}

// RewriteDecl 对单个声明片段执行转换。
//
// 形状分派按固定优先级：自由函数 -> trait 方法签名 -> trait 定义 -> impl 块。
// 异步模式下向每个函数类条目的签名注入 async 标记（已有标记则跳过），
// trait/impl 形状额外在整体前追加 async_trait 兼容注解。
// 同步模式以及未识别形状下，输入逐字节原样返回。
// 改写通过字节拼接完成，属性、可见性、泛型参数、supertrait、where 子句、
// self 类型与函数体等未触碰的部分全部原样保留。
func (r *Rewriter) RewriteDecl(attrArgs string, src []byte, mode model.Mode) ([]byte, []model.Rewrite) {
	_ = attrArgs // 注解参数文本接受但忽略

	p, err := parser.NewParser(model.LangRust)
	if err != nil {
		// 语言未注册时没有报错通道，按未识别形状透传
		return src, nil
	}
	defer p.Close()

	tree, err := p.Parse(src)
	if err != nil {
		return src, nil
	}
	defer tree.Close()

	item, shape := classifyDecl(tree.RootNode())
	if shape == model.ShapeUnrecognized {
		return src, nil
	}
	if !mode.Enabled() {
		// 同步模式：识别成功也不做任何改写
		return src, nil
	}

	edits, markers, wrapped := asyncDeclEdits(item, shape, src, nil)
	if len(edits) == 0 {
		// 签名已带 async 标记，无需改写
		return src, nil
	}

	rec := model.Rewrite{
		Shape:    shape,
		Location: nodeLocation(item, ""),
		Markers:  markers,
		Wrapped:  wrapped,
	}
	return applyEdits(src, edits), []model.Rewrite{rec}
}

// classifyDecl 对声明片段做结构分类，返回匹配的条目节点。
//
// 片段允许携带前置属性与注释；除此之外必须恰好包含一个顶层条目。
// 解析出错、条目多于一个或条目类型不在四种形状之内时归为 UNRECOGNIZED。
func classifyDecl(root *sitter.Node) (*sitter.Node, model.Shape) {
	if root == nil || root.HasError() {
		return nil, model.ShapeUnrecognized
	}

	var item *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(uint(i))
		switch child.Kind() {
		case KindLineComment, KindBlockComment, KindAttributeItem, KindInnerAttributeItem:
			continue
		}
		if item != nil {
			// 片段内出现第二个条目
			return nil, model.ShapeUnrecognized
		}
		item = child
	}
	if item == nil {
		return nil, model.ShapeUnrecognized
	}

	// 优先级顺序固定：自由函数 -> trait 方法签名 -> trait 定义 -> impl 块
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

// asyncDeclEdits 为一个已分类的条目生成异步模式下的全部改写。
func asyncDeclEdits(item *sitter.Node, shape model.Shape, src []byte, seen map[int]bool) ([]edit, int, bool) {
	edits, markers := methodMarkerEdits(item, shape, seen)

	switch shape {
	case model.ShapeTrait, model.ShapeImpl:
		// 兼容注解置于条目自身的属性之后、条目文本之前
		pos := int(item.StartByte())
		edits = append(edits, edit{start: pos, end: pos, text: AsyncTraitAttr + "\n" + lineIndent(src, pos)})
		return edits, markers, true
	}
	return edits, markers, false
}

// methodMarkerEdits 生成条目内全部 async 标记注入。
// seen 用于跨多次调用去重同一插入点（文件级预处理时 trait 与其方法
// 可能分别被标注）；传 nil 表示单片段调用，无需去重。
func methodMarkerEdits(item *sitter.Node, shape model.Shape, seen map[int]bool) ([]edit, int) {
	var edits []edit
	markers := 0

	switch shape {
	case model.ShapeFreeFunction, model.ShapeTraitMethod:
		if e := asyncMarkerEdit(item, seen); e != nil {
			edits = append(edits, *e)
			markers++
		}

	case model.ShapeTrait, model.ShapeImpl:
		body := item.ChildByFieldName(FieldBody)
		if body == nil {
			return nil, 0
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(uint(i))
			switch member.Kind() {
			case KindFunctionItem, KindFunctionSignatureItem:
				if e := asyncMarkerEdit(member, seen); e != nil {
					edits = append(edits, *e)
					markers++
				}
			}
			// 关联常量、关联类型等非函数条目保持原样
		}
	}
	return edits, markers
}

// asyncMarkerEdit 计算向一个函数类条目签名注入 async 标记的插入位置。
// 签名已含 async 时返回 nil。标记插入在修饰符列表之前（async unsafe fn），
// 没有修饰符时插入在 fn 关键字之前。
func asyncMarkerEdit(fnItem *sitter.Node, seen map[int]bool) *edit {
	var insertAt = -1
	for i := 0; i < int(fnItem.ChildCount()); i++ {
		child := fnItem.Child(uint(i))
		switch child.Kind() {
		case KindFunctionModifiers:
			for j := 0; j < int(child.ChildCount()); j++ {
				if child.Child(uint(j)).Kind() == KindAsync {
					return nil
				}
			}
			insertAt = int(child.StartByte())
		case KindFn:
			if insertAt < 0 {
				insertAt = int(child.StartByte())
			}
		}
	}
	if insertAt < 0 {
		return nil
	}
	if seen != nil {
		if seen[insertAt] {
			return nil
		}
		seen[insertAt] = true
	}
	return &edit{start: insertAt, end: insertAt, text: AsyncMarker}
}

// lineIndent 返回 pos 所在行在 pos 之前的缩进文本（仅空格和制表符时）
func lineIndent(src []byte, pos int) string {
	lineStart := pos
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	prefix := string(src[lineStart:pos])
	if strings.TrimLeft(prefix, " \t") != "" {
		return ""
	}
	return prefix
}

// nodeLocation 提取节点的源码位置
func nodeLocation(n *sitter.Node, filePath string) *model.Location {
	if n == nil {
		return nil
	}
	return &model.Location{
		FilePath:    filePath,
		StartLine:   int(n.StartPosition().Row) + 1,
		StartColumn: int(n.StartPosition().Column),
	}
}

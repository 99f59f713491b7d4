package rust

// Tree-sitter Rust 语法树节点类型
const (
	KindFunctionItem          = "function_item"
	KindFunctionSignatureItem = "function_signature_item"
	KindTraitItem             = "trait_item"
	KindImplItem              = "impl_item"
	KindDeclarationList       = "declaration_list"
	KindFunctionModifiers     = "function_modifiers"
	KindAttributeItem         = "attribute_item"
	KindInnerAttributeItem    = "inner_attribute_item"
	KindMacroInvocation       = "macro_invocation"
	KindTokenTree             = "token_tree"
	KindExpressionStatement   = "expression_statement"
	KindLetDeclaration        = "let_declaration"
	KindEmptyStatement        = "empty_statement"
	KindLineComment           = "line_comment"
	KindBlockComment          = "block_comment"
	KindAsync                 = "async"
	KindFn                    = "fn"

	FieldBody  = "body"
	FieldMacro = "macro"
)

// 改写时注入的源码文本
const (
	// AsyncMarker 注入到函数签名中的异步标记
	AsyncMarker = "async "
	// AwaitMarker 追加到表达式尾部的挂起标记
	AwaitMarker = ".await"
	// AsyncTraitAttr trait 对象兼容注解：把异步方法的返回类型擦除为
	// 堆分配的 boxed future，并限制 trait 对象不跨线程共享（?Send）
	AsyncTraitAttr = "#[async_trait::async_trait(?Send)]"
)

// 预处理器识别的标注名称
const (
	// AttrMaybeAsync 声明级属性：#[maybe_async] / #[utils::maybe_async]
	AttrMaybeAsync = "maybe_async"
	// MacroMaybeAwait 表达式级宏：maybe_await!(expr)
	MacroMaybeAwait = "maybe_await"
)

package rust

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/rewrite"
)

func init() {
	// 注册 Tree-sitter Rust 语言对象
	model.RegisterLanguage(model.LangRust, sitter.NewLanguage(tree_sitter_rust.Language()))

	r := NewRustRewriter()
	// 注册声明转换器
	rewrite.RegisterDeclRewriter(model.LangRust, r)
	// 注册表达式转换器
	rewrite.RegisterExprRewriter(model.LangRust, r)
	// 注册文件级预处理器
	rewrite.RegisterFileRewriter(model.LangRust, r)
}

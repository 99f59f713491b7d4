package rewrite

import (
	"fmt"

	"github.com/CodMac/go-treesitter-maybe-async/model"
)

// DeclRewriter 是声明转换器的通用接口。
//
// 输入是一个声明片段的原始源码文本。实现必须按固定优先级完成形状分派：
// 自由函数 -> trait 方法签名 -> trait 定义 -> impl 块，均不匹配时原样返回
// （UNRECOGNIZED 形状，静默透传，不产生诊断）。attrArgs 为注解参数文本，
// 接受但忽略。该转换没有失败路径。
type DeclRewriter interface {
	RewriteDecl(attrArgs string, src []byte, mode model.Mode) ([]byte, []model.Rewrite)
}

// ExprRewriter 是表达式转换器的通用接口。
//
// 输入必须恰好是一个完整表达式，否则返回 *ExprParseError —— 这是整个系统
// 唯一的硬失败边界。两种模式下都进行解析校验。
type ExprRewriter interface {
	RewriteExpr(src []byte, mode model.Mode) ([]byte, error)
}

// FileRewriter 把两个转换器应用到整个源文件：
// 展开属性标注的声明与挂起宏调用，返回改写后的源码与改写记录。
type FileRewriter interface {
	RewriteFile(filePath string, src []byte, mode model.Mode) ([]byte, []model.Rewrite, error)
}

var (
	declRewriters = make(map[model.Language]DeclRewriter)
	exprRewriters = make(map[model.Language]ExprRewriter)
	fileRewriters = make(map[model.Language]FileRewriter)
)

// RegisterDeclRewriter 注册语言对应的声明转换器（由 x/<lang> 包的 init 调用）
func RegisterDeclRewriter(lang model.Language, r DeclRewriter) {
	declRewriters[lang] = r
}

// RegisterExprRewriter 注册语言对应的表达式转换器
func RegisterExprRewriter(lang model.Language, r ExprRewriter) {
	exprRewriters[lang] = r
}

// RegisterFileRewriter 注册语言对应的文件级预处理器
func RegisterFileRewriter(lang model.Language, r FileRewriter) {
	fileRewriters[lang] = r
}

// GetFileRewriter 获取已注册的文件级预处理器
func GetFileRewriter(lang model.Language) (FileRewriter, error) {
	r, ok := fileRewriters[lang]
	if !ok {
		return nil, fmt.Errorf("file rewriter for language %s not registered", lang)
	}
	return r, nil
}

// Decl 对单个声明片段执行转换（编译管线的声明入口）
func Decl(lang model.Language, attrArgs string, src []byte, mode model.Mode) ([]byte, []model.Rewrite, error) {
	r, ok := declRewriters[lang]
	if !ok {
		return nil, nil, fmt.Errorf("decl rewriter for language %s not registered", lang)
	}
	out, rewrites := r.RewriteDecl(attrArgs, src, mode)
	return out, rewrites, nil
}

// Expr 对单个表达式片段执行转换（编译管线的表达式入口）
func Expr(lang model.Language, src []byte, mode model.Mode) ([]byte, error) {
	r, ok := exprRewriters[lang]
	if !ok {
		return nil, fmt.Errorf("expr rewriter for language %s not registered", lang)
	}
	return r.RewriteExpr(src, mode)
}

// File 对整个源文件执行预处理
func File(lang model.Language, filePath string, src []byte, mode model.Mode) ([]byte, []model.Rewrite, error) {
	r, err := GetFileRewriter(lang)
	if err != nil {
		return nil, nil, err
	}
	return r.RewriteFile(filePath, src, mode)
}

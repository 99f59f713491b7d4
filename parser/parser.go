package parser

import (
	"fmt"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/CodMac/go-treesitter-maybe-async/model"
)

// ParserInterface 定义了所有语言解析器的通用能力
type ParserInterface interface {
	// Parse 解析一段源码，返回语法树。调用方负责 Close 返回的树。
	Parse(src []byte) (*sitter.Tree, error)
	// ParseFile 读取文件内容并解析，返回 AST 根节点及源码字节。
	ParseFile(filePath string) (*sitter.Node, []byte, error)
}

// TreeSitterParser 是 ParserInterface 的具体实现
type TreeSitterParser struct {
	Language model.Language // 当前解析器针对的语言
	tsParser *sitter.Parser

	// trees 持有 ParseFile 产生的语法树，统一在 Close 时释放
	trees []*sitter.Tree
}

// NewParser 创建一个新的 TreeSitterParser 实例
func NewParser(lang model.Language) (*TreeSitterParser, error) {
	tsLang, err := model.GetLanguage(lang)
	if err != nil {
		return nil, err
	}

	tsParser := sitter.NewParser()
	if err := tsParser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("failed to set language %s: %w", lang, err)
	}

	return &TreeSitterParser{
		Language: lang,
		tsParser: tsParser,
	}, nil
}

// Parse 实现了 ParserInterface 接口
func (p *TreeSitterParser) Parse(src []byte) (*sitter.Tree, error) {
	tree := p.tsParser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter failed to parse %s source (%d bytes)", p.Language, len(src))
	}
	return tree, nil
}

// ParseFile 实现了 ParserInterface 接口
func (p *TreeSitterParser) ParseFile(filePath string) (*sitter.Node, []byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	tree, err := p.Parse(content)
	if err != nil {
		return nil, nil, fmt.Errorf("tree-sitter failed to parse file %s: %w", filePath, err)
	}
	p.trees = append(p.trees, tree)

	return tree.RootNode(), content, nil
}

// Close 释放 Tree-sitter 内部资源
func (p *TreeSitterParser) Close() {
	for _, t := range p.trees {
		t.Close()
	}
	p.trees = nil
	if p.tsParser != nil {
		p.tsParser.Close()
	}
}

package main_test

import (
	"path/filepath"
	"testing"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/parser"
	_ "github.com/CodMac/go-treesitter-maybe-async/x/rust" // 确保注册 Rust 语言
)

// getTestFilePath 辅助函数，用于获取测试文件路径
func getTestFilePath(name string) string {
	currentDir, _ := filepath.Abs(filepath.Dir("."))
	return filepath.Join(currentDir, "x", "rust", "testdata", name)
}

func TestTreeSitterParser_ParseFile(t *testing.T) {
	// 1. 尝试获取并初始化 Rust 解析器
	rustParser, err := parser.NewParser(model.LangRust)
	if err != nil {
		t.Fatalf("Failed to create Rust parser: %v", err)
	}
	defer rustParser.Close()

	// 2. 尝试解析一个 Rust 文件
	filePath := getTestFilePath("client.rs")
	rootNode, sourceBytes, err := rustParser.ParseFile(filePath)

	if err != nil {
		t.Fatalf("ParseFile failed for %s: %v", filePath, err)
	}
	if rootNode == nil {
		t.Fatal("RootNode is nil after parsing")
	}
	if len(sourceBytes) == 0 {
		t.Fatal("SourceBytes is empty after parsing")
	}

	// 3. 根节点必须是 source_file 且无语法错误
	if rootNode.Kind() != "source_file" {
		t.Errorf("Expected root kind source_file, got %s", rootNode.Kind())
	}
	if rootNode.HasError() {
		t.Errorf("Unexpected syntax errors in %s", filePath)
	}
}

func TestTreeSitterParser_ParseFragment(t *testing.T) {
	rustParser, err := parser.NewParser(model.LangRust)
	if err != nil {
		t.Fatalf("Failed to create Rust parser: %v", err)
	}
	defer rustParser.Close()

	tree, err := rustParser.Parse([]byte("fn say_hello() { print_it(); }"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if got := root.NamedChild(0).Kind(); got != "function_item" {
		t.Errorf("Expected function_item, got %s", got)
	}
}

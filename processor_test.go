package main_test

import (
	"context"
	"strings"
	"testing"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/processor"
	_ "github.com/CodMac/go-treesitter-maybe-async/x/rust" // 确保注册 Rust
)

func TestFileProcessor_ProcessFiles_Async(t *testing.T) {
	clientPath := getTestFilePath("client.rs")

	// 1. 初始化处理器
	proc := processor.NewFileProcessor(model.LangRust, model.ModeAsync, 4, nil)

	// 2. 运行预处理
	ctx := context.Background()
	results, err := proc.ProcessFiles(ctx, []string{clientPath})
	if err != nil {
		t.Fatalf("Processor failed to process files: %v", err)
	}

	// 3. 验证结果
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	res := results[0]
	if !res.Changed {
		t.Error("Expected file to be rewritten in async mode")
	}
	// trait + impl + 2 个自由函数 + 2 处宏调用
	if len(res.Rewrites) != 6 {
		t.Errorf("Expected 6 rewrite records, got %d", len(res.Rewrites))
	}

	out := string(res.Output)
	if strings.Contains(out, "maybe_async") || strings.Contains(out, "maybe_await") {
		t.Error("Preprocessor must consume every maybe_async/maybe_await marker")
	}
	if strings.Count(out, "#[async_trait::async_trait(?Send)]") != 2 {
		t.Error("Expected trait and impl to be wrapped with the async_trait attribute")
	}
	if strings.Count(out, "async fn") != 6 {
		t.Errorf("Expected 6 async fn signatures, got %d", strings.Count(out, "async fn"))
	}

	// 标记注入总数：trait 2 + impl 2 + 自由函数 2 + 宏 2
	markers := 0
	for _, r := range res.Rewrites {
		markers += r.Markers
	}
	if markers != 8 {
		t.Errorf("Expected 8 injected markers, got %d", markers)
	}
}

func TestFileProcessor_ProcessFiles_Sync(t *testing.T) {
	clientPath := getTestFilePath("client.rs")

	proc := processor.NewFileProcessor(model.LangRust, model.ModeSync, 2, nil)
	results, err := proc.ProcessFiles(context.Background(), []string{clientPath})
	if err != nil {
		t.Fatalf("Processor failed to process files: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	out := string(results[0].Output)
	if strings.Contains(out, "async") || strings.Contains(out, ".await") {
		t.Error("Sync mode must not inject any asynchronous markers")
	}
	if !strings.Contains(out, "pub trait Transport {") {
		t.Error("Sync mode must leave the trait definition unwrapped")
	}
}

func TestFileProcessor_ProcessFiles_Empty(t *testing.T) {
	proc := processor.NewFileProcessor(model.LangRust, model.ModeAsync, 2, nil)
	results, err := proc.ProcessFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error on empty input, got %v", err)
	}
	if results != nil {
		t.Errorf("Expected nil results on empty input, got %d", len(results))
	}
}

package rust_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodMac/go-treesitter-maybe-async/model"
	"github.com/CodMac/go-treesitter-maybe-async/rewrite"
	"github.com/CodMac/go-treesitter-maybe-async/x/rust"
)

// 验证表达式转换：异步模式追加恰好一个挂起标记，同步模式原样返回
func TestRewriteExpr_Basic(t *testing.T) {
	r := rust.NewRustRewriter()

	out, err := r.RewriteExpr([]byte("world()"), model.ModeAsync)
	require.NoError(t, err)
	assert.Equal(t, "world().await", string(out))

	out, err = r.RewriteExpr([]byte("world()"), model.ModeSync)
	require.NoError(t, err)
	assert.Equal(t, "world()", string(out))
}

func TestRewriteExpr_MethodChain(t *testing.T) {
	r := rust.NewRustRewriter()

	out, err := r.RewriteExpr([]byte(`client.send(b"ping")`), model.ModeAsync)
	require.NoError(t, err)
	assert.Equal(t, `client.send(b"ping").await`, string(out))
}

// 标记按原始宏的 token 追加语义作用于整个表达式尾部
func TestRewriteExpr_BinaryExpression(t *testing.T) {
	r := rust.NewRustRewriter()

	out, err := r.RewriteExpr([]byte("a + b"), model.ModeAsync)
	require.NoError(t, err)
	assert.Equal(t, "a + b.await", string(out))
}

// 表达式后的行注释保留在标记之后
func TestRewriteExpr_TrailingComment(t *testing.T) {
	r := rust.NewRustRewriter()

	out, err := r.RewriteExpr([]byte("world() // ping"), model.ModeAsync)
	require.NoError(t, err)
	assert.Equal(t, "world().await // ping", string(out))
}

// 块表达式也是单个表达式
func TestRewriteExpr_BlockExpression(t *testing.T) {
	r := rust.NewRustRewriter()

	out, err := r.RewriteExpr([]byte("{ let x = make(); x }"), model.ModeAsync)
	require.NoError(t, err)
	assert.Equal(t, "{ let x = make(); x }.await", string(out))
}

// 验证硬失败边界：无法解析为单个表达式时两种模式都必须报错
func TestRewriteExpr_ParseFailures(t *testing.T) {
	r := rust.NewRustRewriter()

	cases := []struct {
		name  string
		input string
	}{
		{"trailing semicolon", "world();"},
		{"two expressions", "a(); b()"},
		{"let statement", "let x = 1;"},
		{"declaration", "struct S;"},
		{"unbalanced paren", "foo("},
		{"empty", ""},
		{"whitespace only", "   \n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, mode := range []model.Mode{model.ModeSync, model.ModeAsync} {
				out, err := r.RewriteExpr([]byte(tc.input), mode)
				require.Error(t, err, "mode %s", mode)
				assert.Nil(t, out)

				var perr *rewrite.ExprParseError
				require.True(t, errors.As(err, &perr))
				assert.GreaterOrEqual(t, perr.Location.StartLine, 1)
				assert.NotEmpty(t, perr.Reason)
			}
		})
	}
}

// 解析错误必须携带片段内的原始位置
func TestRewriteExpr_ErrorLocation(t *testing.T) {
	r := rust.NewRustRewriter()

	_, err := r.RewriteExpr([]byte("foo(\n    bar(,\n)"), model.ModeAsync)
	require.Error(t, err)

	var perr *rewrite.ExprParseError
	require.True(t, errors.As(err, &perr))
	assert.GreaterOrEqual(t, perr.Location.StartLine, 1)
	assert.Contains(t, err.Error(), "cannot parse expression")
}

// 相同输入与模式下输出恒定
func TestRewriteExpr_Deterministic(t *testing.T) {
	r := rust.NewRustRewriter()
	in := []byte("fetch_all(&mut conn)")

	first, err := r.RewriteExpr(in, model.ModeAsync)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		out, err := r.RewriteExpr(in, model.ModeAsync)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(out))
	}
}

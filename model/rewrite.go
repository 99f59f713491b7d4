package model

// Mode 表示编译期特性开关：同步输出或异步输出。
// 同一次编译中 Mode 固定不变，两个转换器读取同一个值。
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// ParseMode 解析特性开关的文本形式。未提供或无法识别时默认为同步模式。
func ParseMode(s string) Mode {
	switch s {
	case "async", "enabled", "on", "true":
		return ModeAsync
	default:
		return ModeSync
	}
}

// Enabled 报告异步模式是否开启
func (m Mode) Enabled() bool {
	return m == ModeAsync
}

// Shape 表示声明片段的结构分类。
// 分类按固定优先级顺序进行（自由函数 -> trait 方法签名 -> trait 定义 -> impl 块），
// 首个匹配成功的形状生效，保证同一输入的分类结果可复现。
type Shape string

const (
	ShapeFreeFunction Shape = "FREE_FUNCTION"
	ShapeTraitMethod  Shape = "TRAIT_METHOD"
	ShapeTrait        Shape = "TRAIT"
	ShapeImpl         Shape = "IMPL"
	ShapeUnrecognized Shape = "UNRECOGNIZED"

	// ShapeExpression 不参与声明分类，仅用于文件级预处理的改写记录：
	// 标识一次表达式（挂起标记）改写。
	ShapeExpression Shape = "EXPRESSION"
)

// Location 表示源码中的位置（行号从 1 开始，列号从 0 开始）
type Location struct {
	FilePath    string `json:"file_path,omitempty"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
}

// FileResult 表示一个源文件预处理的结果
type FileResult struct {
	Path     string    `json:"path"`
	Output   []byte    `json:"-"`
	Rewrites []Rewrite `json:"rewrites,omitempty"`
	// Changed 表示输出与输入是否存在字节差异
	Changed bool `json:"changed"`
}

// Rewrite 记录一次已应用的改写，供 JSONL 报告输出。
type Rewrite struct {
	Shape    Shape     `json:"shape"`
	Location *Location `json:"location,omitempty"`
	// Markers 为注入的 async 标记数量（trait/impl 形状下等于方法条目数）
	Markers int `json:"markers"`
	// Wrapped 表示是否追加了 async_trait 兼容注解
	Wrapped bool `json:"wrapped"`
}

package rust

import "sort"

// edit 表示对源码字节的一次替换：[start, end) 区间被 text 取代。
// start == end 即纯插入。所有 edit 区间互不重叠。
type edit struct {
	start int
	end   int
	text  string
}

// applyEdits 按偏移从后往前拼接，避免前面的替换使后面的偏移失效。
func applyEdits(src []byte, edits []edit) []byte {
	if len(edits) == 0 {
		return src
	}

	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].start > sorted[j].start
	})

	out := make([]byte, len(src))
	copy(out, src)
	for _, e := range sorted {
		tail := out[e.end:]
		head := out[:e.start]
		buf := make([]byte, 0, len(head)+len(e.text)+len(tail))
		buf = append(buf, head...)
		buf = append(buf, e.text...)
		buf = append(buf, tail...)
		out = buf
	}
	return out
}

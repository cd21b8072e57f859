package layout

import (
	"encoding/json"
	"os"
)

// Plan 为分页调试输出：容量、所用纸张与每页的 token 分配。
type Plan struct {
	Capacity float64       `json:"capacity"`
	Sheet    Sheet         `json:"sheet"`
	Pages    []PageContent `json:"pages"`
}

// WriteDebugJSON 将分页结果输出为 JSON，便于排查页面边界。
func WriteDebugJSON(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

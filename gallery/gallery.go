// Package gallery 保存生成出的页面位图，维护它们的顺序并通知订阅者。
package gallery

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIndexOutOfRange 表示位置不在 [0, Len) 内。
var ErrIndexOutOfRange = errors.New("index out of range")

// Listener 在每次变更后收到按顺序排列的完整列表与数量，回调中不能同步修改画廊。
type Listener func(items []*Artifact, count int)

// Gallery 是有序、并发安全的页面集合。顺序即导出顺序。
type Gallery struct {
	mu      sync.RWMutex
	items   []*Artifact
	next    int
	version uint64

	notifyMu  sync.Mutex
	delivered uint64
	listeners []Listener
}

// New 创建空画廊。
func New() *Gallery { return &Gallery{} }

// Subscribe 注册变更通知，返回的函数用于取消订阅。
func (g *Gallery) Subscribe(l Listener) (cancel func()) {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()
	g.listeners = append(g.listeners, l)
	idx := len(g.listeners) - 1
	return func() {
		g.notifyMu.Lock()
		defer g.notifyMu.Unlock()
		if idx < len(g.listeners) {
			g.listeners[idx] = nil
		}
	}
}

// Append 把位图追加到末尾，并分配稳定的创建序号。
func (g *Gallery) Append(a *Artifact) *Artifact {
	g.mu.Lock()
	a.ID = g.next
	g.next++
	g.items = append(g.items, a)
	g.commitLocked()
	return a
}

// RemoveAt 删除第 i 个位图，其余保持相对顺序。
func (g *Gallery) RemoveAt(i int) error {
	g.mu.Lock()
	if i < 0 || i >= len(g.items) {
		n := len(g.items)
		g.mu.Unlock()
		return fmt.Errorf("%w: 删除位置 %d，共 %d 项", ErrIndexOutOfRange, i, n)
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	g.commitLocked()
	return nil
}

// Clear 清空画廊，总会发出一次数量为 0 的通知。
func (g *Gallery) Clear() {
	g.mu.Lock()
	g.items = nil
	g.commitLocked()
}

// MoveLeft 与前一项交换位置；第一项左移不做任何事。
func (g *Gallery) MoveLeft(i int) error { return g.swap(i, i-1) }

// MoveRight 与后一项交换位置；最后一项右移不做任何事。
func (g *Gallery) MoveRight(i int) error { return g.swap(i, i+1) }

func (g *Gallery) swap(i, j int) error {
	g.mu.Lock()
	n := len(g.items)
	if i < 0 || i >= n {
		g.mu.Unlock()
		return fmt.Errorf("%w: 移动位置 %d，共 %d 项", ErrIndexOutOfRange, i, n)
	}
	if j < 0 || j >= n {
		g.mu.Unlock()
		return nil
	}
	g.items[i], g.items[j] = g.items[j], g.items[i]
	g.commitLocked()
	return nil
}

// Len 返回当前数量。
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// At 返回第 i 项。
func (g *Gallery) At(i int) (*Artifact, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i < 0 || i >= len(g.items) {
		return nil, fmt.Errorf("%w: 位置 %d，共 %d 项", ErrIndexOutOfRange, i, len(g.items))
	}
	return g.items[i], nil
}

// Snapshot 返回当前顺序的副本，导出时使用。
func (g *Gallery) Snapshot() []*Artifact {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

// Header 返回输出区标题，有内容时附带数量。
func (g *Gallery) Header() string {
	if n := g.Len(); n > 0 {
		return fmt.Sprintf("Output ( %d )", n)
	}
	return "Output"
}

func (g *Gallery) snapshotLocked() []*Artifact {
	if len(g.items) == 0 {
		return nil
	}
	out := make([]*Artifact, len(g.items))
	copy(out, g.items)
	return out
}

// commitLocked 在持有 mu 时调用并负责释放 mu，随后串行投递通知。
// 并发变更时，晚于最新已投递版本的快照才会送出，订阅者看到的状态不会倒退。
func (g *Gallery) commitLocked() {
	g.version++
	version := g.version
	items := g.snapshotLocked()
	g.mu.Unlock()

	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()
	if version <= g.delivered {
		return
	}
	g.delivered = version
	for _, l := range g.listeners {
		if l != nil {
			l(items, len(items))
		}
	}
}

package game

import (
	"context"
	"sort"
)

// Clock 游戏时钟
//
// 游戏时间只在 Advance 时前进，前进量为 dt × 时间缩放。
// 缩放为 0 时时间冻结，已安排的延迟回调也随之冻结（而不是取消）。
type Clock struct {
	now     float64
	scale   float64
	timers  []*Timer
	nextSeq uint64
}

// Timer 由 Clock.AfterFunc 安排的延迟回调
type Timer struct {
	due     float64
	seq     uint64
	ctx     context.Context
	fn      func()
	stopped bool
}

// Stop 取消回调；返回回调是否尚未执行
func (t *Timer) Stop() bool {
	if t == nil || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewClock 创建时间为 0、缩放为 1 的时钟
func NewClock() *Clock {
	return &Clock{scale: 1}
}

// Now 当前游戏时间（秒）
func (c *Clock) Now() float64 { return c.now }

// TimeScale 当前时间缩放
func (c *Clock) TimeScale() float64 { return c.scale }

// SetTimeScale 设置时间缩放，负值按 0 处理
func (c *Clock) SetTimeScale(scale float64) {
	c.scale = max(0, scale)
}

// Advance 推进时钟并执行到期的回调
//
// 参数：
//   - dt: 真实经过的时间（秒）
//
// 返回：
//   - float64: 缩放后的游戏时间增量
func (c *Clock) Advance(dt float64) float64 {
	if dt <= 0 || c.scale == 0 {
		return 0
	}
	scaled := dt * c.scale
	c.now += scaled
	c.fireDue()
	return scaled
}

// AfterFunc 在 delay 秒游戏时间后执行 fn
//
// ctx 被取消后回调不会执行；到期时再次检查 ctx.Err()。
func (c *Clock) AfterFunc(ctx context.Context, delay float64, fn func()) *Timer {
	if ctx == nil {
		ctx = context.Background()
	}
	c.nextSeq++
	t := &Timer{due: c.now + max(0, delay), seq: c.nextSeq, ctx: ctx, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pending 尚未执行也未取消的回调数量
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && t.ctx.Err() == nil {
			n++
		}
	}
	return n
}

func (c *Clock) fireDue() {
	var due []*Timer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped || t.ctx.Err() != nil:
		case t.due <= c.now:
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	for i := len(remaining); i < len(c.timers); i++ {
		c.timers[i] = nil
	}
	c.timers = remaining

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if t.stopped || t.ctx.Err() != nil {
			continue
		}
		t.stopped = true
		t.fn()
	}
}

package game

import (
	"context"
	"testing"
)

func TestClockAdvance(t *testing.T) {
	c := NewClock()
	if got := c.Advance(0.5); got != 0.5 || c.Now() != 0.5 {
		t.Errorf("期望推进 0.5，实际 dt=%f now=%f", got, c.Now())
	}

	c.SetTimeScale(2)
	if got := c.Advance(0.5); got != 1 {
		t.Errorf("缩放 2 时期望 dt=1，实际 %f", got)
	}

	c.SetTimeScale(0)
	if got := c.Advance(3); got != 0 || c.Now() != 1.5 {
		t.Errorf("缩放 0 时时间应冻结，实际 dt=%f now=%f", got, c.Now())
	}

	c.SetTimeScale(-1)
	if c.TimeScale() != 0 {
		t.Errorf("负缩放应按 0 处理，实际 %f", c.TimeScale())
	}
}

func TestClockAfterFunc(t *testing.T) {
	t.Run("到期后按时间顺序执行", func(t *testing.T) {
		c := NewClock()
		var order []int
		c.AfterFunc(context.Background(), 2, func() { order = append(order, 2) })
		c.AfterFunc(context.Background(), 1, func() { order = append(order, 1) })

		c.Advance(0.9)
		if len(order) != 0 {
			t.Fatalf("未到期的回调不应执行: %v", order)
		}
		c.Advance(1.5)
		if len(order) != 2 || order[0] != 1 || order[1] != 2 {
			t.Errorf("期望 [1 2]，实际 %v", order)
		}
		if c.Pending() != 0 {
			t.Errorf("执行后不应有待执行回调，实际 %d", c.Pending())
		}
	})

	t.Run("作用域取消后不执行", func(t *testing.T) {
		c := NewClock()
		ctx, cancel := context.WithCancel(context.Background())
		fired := false
		c.AfterFunc(ctx, 1, func() { fired = true })
		cancel()
		c.Advance(5)
		if fired {
			t.Error("取消的作用域内回调不应执行")
		}
	})

	t.Run("Stop 取消回调", func(t *testing.T) {
		c := NewClock()
		fired := false
		timer := c.AfterFunc(context.Background(), 1, func() { fired = true })
		if !timer.Stop() {
			t.Error("首次 Stop 应返回 true")
		}
		if timer.Stop() {
			t.Error("重复 Stop 应返回 false")
		}
		c.Advance(2)
		if fired {
			t.Error("已停止的回调不应执行")
		}
	})

	t.Run("缩放为 0 时冻结而非取消", func(t *testing.T) {
		c := NewClock()
		fired := false
		c.AfterFunc(context.Background(), 1, func() { fired = true })
		c.Advance(0.5)
		c.SetTimeScale(0)
		c.Advance(10)
		if fired {
			t.Fatal("冻结期间回调不应执行")
		}
		c.SetTimeScale(1)
		c.Advance(0.5)
		if !fired {
			t.Error("恢复后累计时间到期应执行回调")
		}
	})

	t.Run("回调中安排的新回调在之后执行", func(t *testing.T) {
		c := NewClock()
		count := 0
		c.AfterFunc(context.Background(), 1, func() {
			count++
			c.AfterFunc(context.Background(), 1, func() { count++ })
		})
		c.Advance(1)
		if count != 1 {
			t.Fatalf("期望 1 次，实际 %d", count)
		}
		c.Advance(1)
		if count != 2 {
			t.Errorf("期望 2 次，实际 %d", count)
		}
	})
}

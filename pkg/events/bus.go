package events

import (
	"log"
	"runtime/debug"
)

// anyKind 通配订阅的内部键
const anyKind Kind = "*"

// Subscription 订阅句柄，用于取消订阅
type Subscription struct {
	kind Kind
	id   uint64
}

type subscriber struct {
	id      uint64
	handler func(GameEvent)
}

// EventBus 类型化的发布/订阅中心
//
// 职责：
//   - 按事件种类保存订阅者，按订阅顺序同步调用（通配订阅者与专属订阅者统一按订阅顺序）
//   - 发布前对订阅者列表做快照：分发过程中的订阅/取消订阅只影响之后的发布
//   - 隔离处理函数：单个处理函数 panic 会被恢复并记录，其余处理函数照常执行
//   - 处理函数内再次发布事件时，嵌套事件先于外层剩余处理函数完成（深度优先）
//
// EventBus 不是并发安全的，只能在模拟线程内使用。
type EventBus struct {
	nextID   uint64
	handlers map[Kind][]subscriber
}

// NewEventBus 创建空的事件总线
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[Kind][]subscriber),
	}
}

// Subscribe 订阅 T 类型的事件
//
// T 只能是事件目录中的具体类型；订阅所有事件使用 SubscribeAll。
// 参数：
//   - bus: 事件总线
//   - handler: 处理函数，按订阅顺序调用
//
// 返回：
//   - Subscription: 传给 Unsubscribe 以取消订阅
func Subscribe[T Event](bus *EventBus, handler func(T)) Subscription {
	var zero T
	return bus.add(zero.Kind(), func(ev GameEvent) {
		if typed, ok := ev.(T); ok {
			handler(typed)
		}
	})
}

// SubscribeAll 订阅所有事件，与专属订阅者一起按订阅顺序调用
func (b *EventBus) SubscribeAll(handler func(GameEvent)) Subscription {
	return b.add(anyKind, handler)
}

func (b *EventBus) add(kind Kind, handler func(GameEvent)) Subscription {
	b.nextID++
	sub := subscriber{id: b.nextID, handler: handler}
	b.handlers[kind] = append(b.handlers[kind], sub)
	return Subscription{kind: kind, id: sub.id}
}

// Unsubscribe 取消订阅；重复取消或未知句柄是无操作
func (b *EventBus) Unsubscribe(sub Subscription) {
	list := b.handlers[sub.kind]
	for i, s := range list {
		if s.id != sub.id {
			continue
		}
		// 复制而不是原地修改，正在进行的分发持有旧快照
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, sub.kind)
		} else {
			b.handlers[sub.kind] = next
		}
		return
	}
}

// Publish 同步分发事件；没有订阅者时为无操作
func (b *EventBus) Publish(ev GameEvent) {
	if ev == nil {
		log.Printf("[EventBus] ERROR: Publish called with nil event")
		return
	}

	specific := b.handlers[ev.Kind()]
	wildcard := b.handlers[anyKind]
	if len(specific) == 0 && len(wildcard) == 0 {
		return
	}

	for _, s := range mergeByID(specific, wildcard) {
		b.invoke(s, ev)
	}
}

// mergeByID 按订阅 id 合并两个有序列表，返回新的切片作为分发快照
func mergeByID(a, b []subscriber) []subscriber {
	merged := make([]subscriber, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].id < b[j].id {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

// HandlerCount 返回某种事件的专属订阅者数量
func (b *EventBus) HandlerCount(kind Kind) int {
	return len(b.handlers[kind])
}

func (b *EventBus) invoke(s subscriber, ev GameEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EventBus] ERROR: handler %d for %s panicked: %v\n%s", s.id, ev.Kind(), r, debug.Stack())
		}
	}()
	s.handler(ev)
}

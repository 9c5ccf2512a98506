package events

import (
	"testing"

	"github.com/gonewx/towerdefense/pkg/types"
)

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(WaveCompleted{WaveNumber: 1})
}

func TestSubscribeReceivesTypedEvents(t *testing.T) {
	bus := NewEventBus()
	var got []int
	Subscribe(bus, func(e WaveStarted) { got = append(got, e.WaveNumber) })
	Subscribe(bus, func(e WaveCompleted) { t.Error("WaveCompleted 处理函数不应收到 WaveStarted") })

	bus.Publish(WaveStarted{WaveNumber: 3, EnemyCount: 9})

	if len(got) != 1 || got[0] != 3 {
		t.Errorf("期望收到波次 3，实际 %v", got)
	}
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string
	Subscribe(bus, func(WaveCompleted) { order = append(order, "a") })
	Subscribe(bus, func(WaveCompleted) { order = append(order, "b") })
	bus.SubscribeAll(func(GameEvent) { order = append(order, "all") })
	Subscribe(bus, func(WaveCompleted) { order = append(order, "c") })

	bus.Publish(WaveCompleted{WaveNumber: 1})

	want := []string{"a", "b", "all", "c"}
	if len(order) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, order)
		}
	}
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()
	called := false
	Subscribe(bus, func(GameOver) { panic("boom") })
	Subscribe(bus, func(GameOver) { called = true })

	bus.Publish(GameOver{PlayerWon: false})

	if !called {
		t.Error("panic 之后的处理函数仍应被调用")
	}
}

func TestSubscriptionChangesDuringDispatchApplyToLaterPublishes(t *testing.T) {
	bus := NewEventBus()
	lateCalls := 0
	var selfSub Subscription
	selfCalls := 0

	selfSub = Subscribe(bus, func(WaveCompleted) {
		selfCalls++
		bus.Unsubscribe(selfSub)
		Subscribe(bus, func(WaveCompleted) { lateCalls++ })
	})
	Subscribe(bus, func(WaveCompleted) {})

	bus.Publish(WaveCompleted{WaveNumber: 1})
	if selfCalls != 1 || lateCalls != 0 {
		t.Fatalf("第一次发布：selfCalls=%d lateCalls=%d，期望 1 和 0", selfCalls, lateCalls)
	}

	bus.Publish(WaveCompleted{WaveNumber: 2})
	if selfCalls != 1 {
		t.Errorf("已取消的订阅不应再被调用，实际 %d 次", selfCalls)
	}
	if lateCalls != 1 {
		t.Errorf("分发中新增的订阅应在下一次发布时生效，实际 %d 次", lateCalls)
	}
}

func TestUnsubscribeLaterHandlerDuringDispatchStillUsesSnapshot(t *testing.T) {
	bus := NewEventBus()
	var second Subscription
	secondCalls := 0
	Subscribe(bus, func(WaveStarted) { bus.Unsubscribe(second) })
	second = Subscribe(bus, func(WaveStarted) { secondCalls++ })

	bus.Publish(WaveStarted{WaveNumber: 1})
	bus.Publish(WaveStarted{WaveNumber: 2})

	if secondCalls != 1 {
		t.Errorf("快照中的处理函数应执行一次后被移除，实际 %d 次", secondCalls)
	}
	if bus.HandlerCount(KindWaveStarted) != 1 {
		t.Errorf("期望剩余 1 个订阅者，实际 %d", bus.HandlerCount(KindWaveStarted))
	}
}

func TestReentrantPublishIsDepthFirst(t *testing.T) {
	bus := NewEventBus()
	var trace []string
	Subscribe(bus, func(WaveCompleted) {
		trace = append(trace, "completed-1")
		bus.Publish(GameStateChanged{Previous: types.StateWave, New: types.StatePostwave})
	})
	Subscribe(bus, func(WaveCompleted) { trace = append(trace, "completed-2") })
	Subscribe(bus, func(GameStateChanged) { trace = append(trace, "state") })

	bus.Publish(WaveCompleted{WaveNumber: 1})

	want := []string{"completed-1", "state", "completed-2"}
	for i := range want {
		if i >= len(trace) || trace[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, trace)
		}
	}
}

func TestUnsubscribeUnknownIsNoop(t *testing.T) {
	bus := NewEventBus()
	sub := Subscribe(bus, func(WaveStarted) {})
	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)
	bus.Unsubscribe(Subscription{})
	if bus.HandlerCount(KindWaveStarted) != 0 {
		t.Error("取消订阅后不应有处理函数")
	}
}

func TestDescribe(t *testing.T) {
	r := Describe(GameStateChanged{Previous: types.StatePregame, New: types.StateWave})
	if r.Kind != "GameStateChanged" || r.Detail != "Pregame->Wave" {
		t.Errorf("状态切换描述错误: %+v", r)
	}

	r = Describe(EntityDamaged{Victim: nil, Attacker: nil, Damage: 7})
	if r.Amount != 7 || r.Subject != "" || r.Target != "" {
		t.Errorf("伤害描述错误: %+v", r)
	}

	r = Describe(GameOver{PlayerWon: true, WaveNumber: 4})
	if r.Detail != "won" || r.Wave != 4 {
		t.Errorf("结束描述错误: %+v", r)
	}
}

func subscribeCounter[T Event](bus *EventBus, counts map[Kind]int) {
	Subscribe(bus, func(e T) { counts[e.Kind()]++ })
}

func TestSubscribeCoversCatalog(t *testing.T) {
	bus := NewEventBus()
	counts := map[Kind]int{}
	subscribeCounter[EntitySpawned](bus, counts)
	subscribeCounter[EntityDied](bus, counts)
	subscribeCounter[EntityDamaged](bus, counts)
	subscribeCounter[AttackPerformed](bus, counts)
	subscribeCounter[WaveStarted](bus, counts)
	subscribeCounter[WaveCompleted](bus, counts)
	subscribeCounter[UpgradeCollected](bus, counts)
	subscribeCounter[UpgradeSpawned](bus, counts)
	subscribeCounter[GameStateChanged](bus, counts)
	subscribeCounter[GameOver](bus, counts)

	all := []GameEvent{
		EntitySpawned{}, EntityDied{}, EntityDamaged{}, AttackPerformed{}, WaveStarted{},
		WaveCompleted{}, UpgradeCollected{}, UpgradeSpawned{}, GameStateChanged{}, GameOver{},
	}
	for _, ev := range all {
		bus.Publish(ev)
	}
	for _, ev := range all {
		if counts[ev.Kind()] != 1 {
			t.Errorf("%s: 期望收到 1 次，实际 %d", ev.Kind(), counts[ev.Kind()])
		}
	}
}

func TestWildcardInterleavesWithSpecificSubscribers(t *testing.T) {
	bus := NewEventBus()
	var order []string
	bus.SubscribeAll(func(GameEvent) { order = append(order, "all-1") })
	Subscribe(bus, func(GameOver) { order = append(order, "over") })
	bus.SubscribeAll(func(GameEvent) { order = append(order, "all-2") })

	bus.Publish(GameOver{})
	bus.Publish(WaveCompleted{})

	want := []string{"all-1", "over", "all-2", "all-1", "all-2"}
	if len(order) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, order)
		}
	}
}

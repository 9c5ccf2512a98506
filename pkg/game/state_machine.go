package game

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/types"
)

var (
	// ErrSelfTransition 切换到当前状态
	ErrSelfTransition = errors.New("already in target state")
	// ErrInvalidTransition 状态表不允许的切换
	ErrInvalidTransition = errors.New("transition not allowed")
	// ErrUnknownState 状态没有注册处理器
	ErrUnknownState = errors.New("no handler registered for state")
)

// StateHandler 单个游戏状态的行为
//
// Enter 收到的 ctx 在离开该状态时被取消，状态内安排的延迟工作都应绑定到它。
// 暂停与恢复不会调用 Enter/Exit。
type StateHandler interface {
	Enter(ctx context.Context)
	Exit()
	Update(dt float64)
}

// TimeScaler 可选接口：进入状态时设置的时钟缩放
type TimeScaler interface {
	TimeScale() float64
}

// transitions 合法的状态切换表；Pause 通过 TogglePause 单独处理
var transitions = map[types.GameState][]types.GameState{
	types.StatePregame:  {types.StateWave},
	types.StateWave:     {types.StatePostwave, types.StateGameOver, types.StatePause},
	types.StatePostwave: {types.StateWave, types.StateGameOver, types.StatePregame},
	types.StateGameOver: {types.StatePregame},
}

// CanTransition 检查状态表是否允许 from → to
func CanTransition(from, to types.GameState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// pauseSnapshot 暂停时保存的被中断状态
type pauseSnapshot struct {
	state     types.GameState
	handler   StateHandler
	ctx       context.Context
	cancel    context.CancelFunc
	timeScale float64
}

// StateMachine 顶层游戏状态机
//
// 职责：
//   - 按状态表执行切换：Exit → 取消旧作用域 → Enter(新作用域) → 发布 GameStateChanged → 通知订阅者
//   - 切换过程中再次请求的切换会排队，在当前切换完成后依次执行
//   - 暂停保存被中断的状态及其作用域，恢复时原样还原，不调用 Enter/Exit
//   - 订阅 WaveCompleted 与 GameOver 事件，分别切换到 Postwave 与 GameOver
type StateMachine struct {
	bus   *events.EventBus
	clock *Clock

	handlers map[types.GameState]StateHandler

	current types.GameState
	handler StateHandler
	ctx     context.Context
	cancel  context.CancelFunc
	paused  *pauseSnapshot
	started bool

	transitioning bool
	pending       []func()

	listeners []func(previous, next types.GameState)
	subs      []events.Subscription
}

// NewStateMachine 创建状态机，初始状态为 Pregame
//
// 参数：
//   - bus: 事件总线，用于发布 GameStateChanged 并监听波次/结束事件
//   - clock: 游戏时钟，状态可通过 TimeScaler 调整其缩放
func NewStateMachine(bus *events.EventBus, clock *Clock) *StateMachine {
	sm := &StateMachine{
		bus:      bus,
		clock:    clock,
		handlers: make(map[types.GameState]StateHandler),
		current:  types.StatePregame,
	}
	sm.subs = append(sm.subs,
		events.Subscribe(bus, func(events.WaveCompleted) {
			_ = sm.SwitchState(types.StatePostwave)
		}),
		events.Subscribe(bus, func(events.GameOver) {
			_ = sm.SwitchState(types.StateGameOver)
		}),
	)
	return sm
}

// Register 注册状态处理器
func (sm *StateMachine) Register(state types.GameState, handler StateHandler) {
	sm.handlers[state] = handler
}

// Start 进入初始状态（调用其 Enter），不发布事件
func (sm *StateMachine) Start() error {
	if sm.started {
		return nil
	}
	handler, ok := sm.handlers[sm.current]
	if !ok {
		return fmt.Errorf("start in %s: %w", sm.current, ErrUnknownState)
	}
	sm.started = true
	sm.runTransition(func() {
		sm.enter(sm.current, handler)
	})
	return nil
}

// Close 取消事件订阅与当前作用域
func (sm *StateMachine) Close() {
	for _, sub := range sm.subs {
		sm.bus.Unsubscribe(sub)
	}
	sm.subs = nil
	if sm.cancel != nil {
		sm.cancel()
	}
	if sm.paused != nil && sm.paused.cancel != nil {
		sm.paused.cancel()
	}
}

// CurrentState 当前状态
func (sm *StateMachine) CurrentState() types.GameState { return sm.current }

// IsInState 是否处于指定状态
func (sm *StateMachine) IsInState(state types.GameState) bool { return sm.current == state }

// OnStateChanged 注册状态变化订阅者，在 GameStateChanged 发布之后调用
func (sm *StateMachine) OnStateChanged(fn func(previous, next types.GameState)) {
	sm.listeners = append(sm.listeners, fn)
}

// Update 驱动当前状态；暂停时不做任何事
func (sm *StateMachine) Update(dt float64) {
	if sm.handler != nil {
		sm.handler.Update(dt)
	}
}

// SwitchState 切换到目标状态
//
// 返回：
//   - ErrSelfTransition: 已处于目标状态（警告，状态不变）
//   - ErrInvalidTransition: 状态表不允许（错误，状态不变）
//   - ErrUnknownState: 目标状态没有处理器
//
// 在另一次切换进行中调用时，请求被排队并返回 nil；排队请求的结果无法返回给调用方，
// 被拒绝时记录警告日志。
func (sm *StateMachine) SwitchState(target types.GameState) error {
	if sm.transitioning {
		sm.pending = append(sm.pending, func() {
			if err := sm.SwitchState(target); err != nil {
				log.Printf("[StateMachine] Warning: queued switch to %s rejected: %v", target, err)
			}
		})
		return nil
	}

	if target == sm.current {
		log.Printf("[StateMachine] Warning: already in state %s", target)
		return ErrSelfTransition
	}
	if !CanTransition(sm.current, target) {
		log.Printf("[StateMachine] ERROR: invalid transition %s -> %s", sm.current, target)
		return fmt.Errorf("%s -> %s: %w", sm.current, target, ErrInvalidTransition)
	}
	if target == types.StatePause {
		return sm.TogglePause()
	}
	handler, ok := sm.handlers[target]
	if !ok {
		log.Printf("[StateMachine] ERROR: no handler for state %s", target)
		return fmt.Errorf("switch to %s: %w", target, ErrUnknownState)
	}

	previous := sm.current
	sm.runTransition(func() {
		if sm.handler != nil {
			sm.handler.Exit()
		}
		if sm.cancel != nil {
			sm.cancel()
		}
		sm.enter(target, handler)
		log.Printf("[StateMachine] %s -> %s", previous, target)
		sm.announce(previous, target)
	})
	return nil
}

// TogglePause 暂停或恢复
//
// 暂停时保存当前状态、处理器与作用域并将时钟缩放设为 0；
// 恢复时原样还原，不调用 Enter/Exit，作用域内的延迟工作继续计时。
// GameOver 状态下被拒绝。切换进行中调用时请求被排队并返回 nil，
// 排队请求被拒绝时记录警告日志。
func (sm *StateMachine) TogglePause() error {
	if sm.transitioning {
		sm.pending = append(sm.pending, func() {
			if err := sm.TogglePause(); err != nil {
				log.Printf("[StateMachine] Warning: queued pause toggle rejected: %v", err)
			}
		})
		return nil
	}

	if sm.current == types.StateGameOver {
		log.Printf("[StateMachine] Warning: cannot pause in GameOver")
		return fmt.Errorf("toggle pause in %s: %w", sm.current, ErrInvalidTransition)
	}

	if sm.current == types.StatePause {
		saved := sm.paused
		sm.paused = nil
		sm.runTransition(func() {
			sm.current = saved.state
			sm.handler = saved.handler
			sm.ctx = saved.ctx
			sm.cancel = saved.cancel
			sm.clock.SetTimeScale(saved.timeScale)
			log.Printf("[StateMachine] resumed %s", saved.state)
			sm.announce(types.StatePause, saved.state)
		})
		return nil
	}

	previous := sm.current
	sm.paused = &pauseSnapshot{
		state:     sm.current,
		handler:   sm.handler,
		ctx:       sm.ctx,
		cancel:    sm.cancel,
		timeScale: sm.clock.TimeScale(),
	}
	sm.runTransition(func() {
		sm.current = types.StatePause
		sm.handler = nil
		sm.ctx = nil
		sm.cancel = nil
		sm.clock.SetTimeScale(0)
		log.Printf("[StateMachine] paused in %s", previous)
		sm.announce(previous, types.StatePause)
	})
	return nil
}

// PausedState 暂停中被中断的状态；未暂停时返回 false
func (sm *StateMachine) PausedState() (types.GameState, bool) {
	if sm.paused == nil {
		return 0, false
	}
	return sm.paused.state, true
}

func (sm *StateMachine) enter(state types.GameState, handler StateHandler) {
	ctx, cancel := context.WithCancel(context.Background())
	sm.current = state
	sm.handler = handler
	sm.ctx = ctx
	sm.cancel = cancel
	if ts, ok := handler.(TimeScaler); ok {
		sm.clock.SetTimeScale(ts.TimeScale())
	}
	handler.Enter(ctx)
}

func (sm *StateMachine) announce(previous, next types.GameState) {
	sm.bus.Publish(events.GameStateChanged{Previous: previous, New: next})
	for _, fn := range append([]func(types.GameState, types.GameState){}, sm.listeners...) {
		fn(previous, next)
	}
}

// runTransition 执行一次切换，然后依次执行切换期间排队的请求
func (sm *StateMachine) runTransition(step func()) {
	sm.transitioning = true
	step()
	sm.transitioning = false

	for len(sm.pending) > 0 {
		next := sm.pending[0]
		sm.pending = sm.pending[1:]
		next()
	}
}

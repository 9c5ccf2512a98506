package game

import (
	"context"
	"log"

	"github.com/gonewx/towerdefense/pkg/types"
)

// WaveStarter 开始下一波；由 systems.WaveSystem 实现
type WaveStarter interface {
	StartWave()
	CurrentWave() int
}

// SessionResetter 重置整局会话（清场、重建基地与无人机、波次归零）
type SessionResetter interface {
	ResetSession()
}

// PregameState 开局前：重置会话，时间冻结，等待玩家开始
type PregameState struct {
	resetter SessionResetter
}

// NewPregameState resetter 可为 nil
func NewPregameState(resetter SessionResetter) *PregameState {
	return &PregameState{resetter: resetter}
}

func (s *PregameState) Enter(ctx context.Context) {
	log.Printf("[PregameState] Entered, waiting for player to start")
	if s.resetter != nil {
		s.resetter.ResetSession()
	}
}

func (s *PregameState) Exit()              {}
func (s *PregameState) Update(dt float64)  {}
func (s *PregameState) TimeScale() float64 { return 0 }

// WaveState 战斗中：进入时开始下一波
type WaveState struct {
	waves WaveStarter
}

func NewWaveState(waves WaveStarter) *WaveState {
	return &WaveState{waves: waves}
}

func (s *WaveState) Enter(ctx context.Context) {
	if s.waves != nil {
		s.waves.StartWave()
	}
}

func (s *WaveState) Exit()              {}
func (s *WaveState) Update(dt float64)  {}
func (s *WaveState) TimeScale() float64 { return 1 }

// PostwaveState 波次间隙：delay 秒后自动进入下一波
//
// 自动推进绑定在 Enter 收到的 ctx 上，离开该状态即取消；
// 同一时刻最多只有一个待执行的自动推进。
type PostwaveState struct {
	sm    *StateMachine
	clock *Clock
	delay float64
	timer *Timer
}

// NewPostwaveState 参数 delay 为波次间隔（秒）
func NewPostwaveState(sm *StateMachine, clock *Clock, delay float64) *PostwaveState {
	return &PostwaveState{sm: sm, clock: clock, delay: delay}
}

func (s *PostwaveState) Enter(ctx context.Context) {
	s.timer.Stop()
	log.Printf("[PostwaveState] Entered, next wave in %.1fs", s.delay)
	s.timer = s.clock.AfterFunc(ctx, s.delay, func() {
		if s.sm.IsInState(types.StatePostwave) {
			_ = s.sm.SwitchState(types.StateWave)
		}
	})
}

func (s *PostwaveState) Exit() {
	s.timer.Stop()
	s.timer = nil
}

func (s *PostwaveState) Update(dt float64)  {}
func (s *PostwaveState) TimeScale() float64 { return 1 }

// Remaining 距离自动推进的剩余游戏时间；没有待执行的推进时返回 0
func (s *PostwaveState) Remaining() float64 {
	if s.timer == nil || s.timer.stopped {
		return 0
	}
	return max(0, s.timer.due-s.clock.Now())
}

// GameOverState 游戏结束：时间冻结并记录最高分
type GameOverState struct {
	store HighScoreStore
	waves WaveStarter
}

// NewGameOverState store 可为 nil
func NewGameOverState(store HighScoreStore, waves WaveStarter) *GameOverState {
	return &GameOverState{store: store, waves: waves}
}

func (s *GameOverState) Enter(ctx context.Context) {
	if s.store == nil || s.waves == nil {
		return
	}
	wave := s.waves.CurrentWave()
	if _, err := s.store.UpdateHighScore(wave); err != nil {
		log.Printf("[GameOverState] Warning: failed to save high score %d: %v", wave, err)
	}
}

func (s *GameOverState) Exit()              {}
func (s *GameOverState) Update(dt float64)  {}
func (s *GameOverState) TimeScale() float64 { return 0 }

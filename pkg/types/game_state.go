package types

// GameState 顶层游戏模式
type GameState int

const (
	StatePregame GameState = iota
	StateWave
	StatePostwave
	StatePause
	StateGameOver
)

func (s GameState) String() string {
	switch s {
	case StatePregame:
		return "Pregame"
	case StateWave:
		return "Wave"
	case StatePostwave:
		return "Postwave"
	case StatePause:
		return "Pause"
	case StateGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

package events

import "github.com/gonewx/towerdefense/pkg/types"

// Record 事件的扁平化描述，供事件流和日志回放使用
//
// 只包含值与实体 id，不持有实体引用，可以安全地交给其他 goroutine。
type Record struct {
	Kind     string        `json:"kind" msgpack:"kind"`
	Subject  string        `json:"subject,omitempty" msgpack:"subject,omitempty"`
	Target   string        `json:"target,omitempty" msgpack:"target,omitempty"`
	Amount   float64       `json:"amount,omitempty" msgpack:"amount,omitempty"`
	Wave     int           `json:"wave,omitempty" msgpack:"wave,omitempty"`
	Position types.Vector2 `json:"position" msgpack:"position"`
	Detail   string        `json:"detail,omitempty" msgpack:"detail,omitempty"`
}

// Describe 将事件转换为 Record
func Describe(ev GameEvent) Record {
	r := Record{Kind: string(ev.Kind())}
	switch e := ev.(type) {
	case EntitySpawned:
		r.Subject = entityID(e.Entity)
		r.Position = e.Position
	case EntityDied:
		r.Subject = entityID(e.Entity)
		r.Position = e.Position
	case EntityDamaged:
		r.Subject = entityID(e.Attacker)
		r.Target = entityID(e.Victim)
		r.Amount = float64(e.Damage)
	case AttackPerformed:
		r.Subject = entityID(e.Attacker)
		r.Target = entityID(e.Target)
		r.Amount = float64(e.Damage)
	case WaveStarted:
		r.Wave = e.WaveNumber
		r.Amount = float64(e.EnemyCount)
	case WaveCompleted:
		r.Wave = e.WaveNumber
	case UpgradeCollected:
		r.Subject = entityID(e.Collector)
		r.Amount = e.Value
		r.Detail = e.UpgradeType.String()
	case UpgradeSpawned:
		r.Position = e.Position
		r.Detail = e.UpgradeType.String()
	case GameStateChanged:
		r.Detail = e.Previous.String() + "->" + e.New.String()
	case GameOver:
		r.Wave = e.WaveNumber
		if e.PlayerWon {
			r.Detail = "won"
		} else {
			r.Detail = "lost"
		}
	}
	return r
}

func entityID(e interface{ ID() string }) string {
	if e == nil {
		return ""
	}
	return e.ID()
}

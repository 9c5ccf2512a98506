// Package pool 提供按键分组的对象池，用于回收敌人、子弹、升级道具等
// 生命周期短、创建频繁的场景对象。
package pool

import (
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/towerdefense/pkg/types"
)

var (
	// ErrPoolExists 重复创建同名对象池
	ErrPoolExists = errors.New("pool already exists")
	// ErrUnknownPool 对象池不存在
	ErrUnknownPool = errors.New("unknown pool")
	// ErrNotActive 归还的对象不在活跃集合中（重复归还或来自其他池）
	ErrNotActive = errors.New("object is not active in this pool")
)

// PoolError 携带操作名与池键的错误
type PoolError struct {
	Op  string
	Key string
	Err error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("pool %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PoolError) Unwrap() error { return e.Err }

// Pose 取出对象时应用的位置与朝向
type Pose struct {
	Position types.Vector2
	Rotation float64
}

// Poolable 可被对象池管理的对象
type Poolable interface {
	SetActive(active bool)
	Place(pose Pose)
}

// Discarder 对象被永久丢弃时的回调（可选实现）
type Discarder interface {
	Discard()
}

// Factory 创建新的池对象；新对象应处于非活跃状态
type Factory func() Poolable

// Stats 单个对象池的计数
type Stats struct {
	Active   int
	Inactive int
	Created  int
}

type entry struct {
	factory  Factory
	inactive []Poolable // FIFO
	idle     map[Poolable]struct{}
	active   []Poolable
	inUse    map[Poolable]struct{}
	created  int
}

// ObjectPool 按键管理多个对象池
//
// 不变式：同一对象在任意时刻只属于 {非活跃队列, 活跃集合} 之一。
type ObjectPool struct {
	pools map[string]*entry
}

// NewObjectPool 创建空的对象池集合
func NewObjectPool() *ObjectPool {
	return &ObjectPool{pools: make(map[string]*entry)}
}

// CreatePool 创建对象池并预先生成 initialSize 个非活跃对象
func (p *ObjectPool) CreatePool(key string, factory Factory, initialSize int) error {
	if _, exists := p.pools[key]; exists {
		log.Printf("[ObjectPool] Warning: pool %q already exists, ignoring CreatePool", key)
		return &PoolError{Op: "create", Key: key, Err: ErrPoolExists}
	}
	if factory == nil {
		return &PoolError{Op: "create", Key: key, Err: errors.New("nil factory")}
	}

	e := &entry{
		factory:  factory,
		inactive: make([]Poolable, 0, initialSize),
		idle:     make(map[Poolable]struct{}, initialSize),
		inUse:    make(map[Poolable]struct{}),
	}
	for i := 0; i < initialSize; i++ {
		obj := e.fabricate()
		obj.SetActive(false)
		e.inactive = append(e.inactive, obj)
		e.idle[obj] = struct{}{}
	}
	p.pools[key] = e
	return nil
}

// HasPool 检查对象池是否存在
func (p *ObjectPool) HasPool(key string) bool {
	_, ok := p.pools[key]
	return ok
}

// Get 取出一个对象，激活并放置到 pose
//
// 非活跃队列为空时会新建对象并记录警告。
// 返回：
//   - Poolable: 已激活的对象；池不存在时为 nil
//   - error: 池不存在时返回 *PoolError
func (p *ObjectPool) Get(key string, pose Pose) (Poolable, error) {
	e, ok := p.pools[key]
	if !ok {
		log.Printf("[ObjectPool] ERROR: Get from unknown pool %q", key)
		return nil, &PoolError{Op: "get", Key: key, Err: ErrUnknownPool}
	}

	var obj Poolable
	if len(e.inactive) > 0 {
		obj = e.inactive[0]
		e.inactive[0] = nil
		e.inactive = e.inactive[1:]
		delete(e.idle, obj)
	} else {
		log.Printf("[ObjectPool] Warning: pool %q exhausted (%d created), creating a new instance", key, e.created)
		obj = e.fabricate()
	}

	obj.SetActive(true)
	obj.Place(pose)
	e.active = append(e.active, obj)
	e.inUse[obj] = struct{}{}
	return obj, nil
}

// Return 归还对象
//
// 池不存在时对象被永久丢弃；对象不在活跃集合中时拒绝归还。
func (p *ObjectPool) Return(key string, obj Poolable) error {
	if obj == nil {
		return &PoolError{Op: "return", Key: key, Err: errors.New("nil object")}
	}
	e, ok := p.pools[key]
	if !ok {
		log.Printf("[ObjectPool] Warning: Return to unknown pool %q, discarding instance", key)
		obj.SetActive(false)
		if d, ok := obj.(Discarder); ok {
			d.Discard()
		}
		return &PoolError{Op: "return", Key: key, Err: ErrUnknownPool}
	}
	if _, idle := e.idle[obj]; idle {
		log.Printf("[ObjectPool] Warning: object returned to %q twice without Get, ignoring", key)
		return &PoolError{Op: "return", Key: key, Err: ErrNotActive}
	}
	if _, active := e.inUse[obj]; !active {
		log.Printf("[ObjectPool] Warning: object returned to %q is not active, ignoring", key)
		return &PoolError{Op: "return", Key: key, Err: ErrNotActive}
	}

	e.release(obj)
	return nil
}

// ReturnAll 归还某个池的全部活跃对象
func (p *ObjectPool) ReturnAll(key string) error {
	e, ok := p.pools[key]
	if !ok {
		return &PoolError{Op: "return-all", Key: key, Err: ErrUnknownPool}
	}
	active := append([]Poolable(nil), e.active...)
	for _, obj := range active {
		e.release(obj)
	}
	return nil
}

// Active 返回某个池当前活跃对象的快照，按取出顺序排列
func (p *ObjectPool) Active(key string) []Poolable {
	e, ok := p.pools[key]
	if !ok {
		return nil
	}
	return append([]Poolable(nil), e.active...)
}

// Stats 返回某个池的计数
func (p *ObjectPool) Stats(key string) (Stats, bool) {
	e, ok := p.pools[key]
	if !ok {
		return Stats{}, false
	}
	return Stats{Active: len(e.active), Inactive: len(e.inactive), Created: e.created}, true
}

func (e *entry) fabricate() Poolable {
	e.created++
	return e.factory()
}

func (e *entry) release(obj Poolable) {
	delete(e.inUse, obj)
	for i, a := range e.active {
		if a == obj {
			e.active = append(e.active[:i], e.active[i+1:]...)
			break
		}
	}
	obj.SetActive(false)
	e.inactive = append(e.inactive, obj)
	e.idle[obj] = struct{}{}
}

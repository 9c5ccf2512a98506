// Package journal 将游戏事件以 msgpack 流的形式记录下来，供离线回放与分析
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// TimeSource 游戏时间来源；由 game.Clock 实现
type TimeSource interface {
	Now() float64
}

// Entry 日志中的一条记录
type Entry struct {
	ID       string        `msgpack:"id"`
	GameTime float64       `msgpack:"t"`
	Record   events.Record `msgpack:"event"`
}

// Writer 顺序写入日志条目
//
// 第一次写入失败后停止记录，错误通过 Err 返回。
type Writer struct {
	buf   *bufio.Writer
	enc   *msgpack.Encoder
	clock TimeSource
	count int
	err   error
}

// NewWriter 创建日志写入器；clock 可为 nil（游戏时间记为 0）
func NewWriter(w io.Writer, clock TimeSource) *Writer {
	buf := bufio.NewWriter(w)
	return &Writer{buf: buf, enc: msgpack.NewEncoder(buf), clock: clock}
}

// Attach 记录总线上的所有事件
func (w *Writer) Attach(bus *events.EventBus) events.Subscription {
	return bus.SubscribeAll(func(e events.GameEvent) {
		_ = w.Write(events.Describe(e))
	})
}

// Write 追加一条事件记录
func (w *Writer) Write(record events.Record) error {
	if w.err != nil {
		return w.err
	}
	entry := Entry{ID: ulid.Make().String(), Record: record}
	if w.clock != nil {
		entry.GameTime = w.clock.Now()
	}
	if err := w.enc.Encode(&entry); err != nil {
		w.err = fmt.Errorf("encode %s: %w", record.Kind, err)
		log.Printf("[Journal] ERROR: %v", w.err)
		return w.err
	}
	w.count++
	return nil
}

// Flush 将缓冲写入底层 io.Writer
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.buf.Flush(); err != nil {
		w.err = fmt.Errorf("flush journal: %w", err)
		return w.err
	}
	return nil
}

// Count 已写入的条目数
func (w *Writer) Count() int { return w.count }

// Err 第一次写入失败的错误
func (w *Writer) Err() error { return w.err }

// ReadAll 读取日志中的全部条目
func ReadAll(r io.Reader) ([]Entry, error) {
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	var entries []Entry
	for {
		var entry Entry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, fmt.Errorf("decode entry %d: %w", len(entries), err)
		}
		if _, err := ulid.Parse(entry.ID); err != nil {
			return entries, fmt.Errorf("entry %d has invalid id %q: %w", len(entries), entry.ID, err)
		}
		entries = append(entries, entry)
	}
}

package mccontrol

import (
	"sync"
	"time"
)

// Direction 表示控制台记录的方向
type Direction string

const (
	// DirectionSent 发出的命令
	DirectionSent Direction = ">"
	// DirectionReceived 收到的结果
	DirectionReceived Direction = "<"
)

// TranscriptEntry 控制台记录中的一行
type TranscriptEntry struct {
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
}

// Line 格式化为 "[15:04:05] > list" 形式
func (e TranscriptEntry) Line() string {
	return e.Time.Format("[15:04:05]") + " " + string(e.Direction) + " " + e.Text
}

// TranscriptSink 接收控制台记录，由调用方持有
type TranscriptSink interface {
	Append(entries ...TranscriptEntry) error
}

// Transcript 只追加的内存控制台记录，可并发使用
type Transcript struct {
	mu      sync.Mutex
	entries []TranscriptEntry
}

// Append 追加记录
func (t *Transcript) Append(entries ...TranscriptEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entries...)
	return nil
}

// Entries 返回记录的副本
func (t *Transcript) Entries() []TranscriptEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lines 返回格式化后的全部记录
func (t *Transcript) Lines() []string {
	entries := t.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	return lines
}

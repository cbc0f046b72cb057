package service

import (
	"context"
	"sync"
	"time"
)

// profileLock 串行化同一服务器连接上的命令，保证控制台记录按执行顺序追加
type profileLock struct {
	mu       chan struct{}
	lastUsed time.Time
	users    int
}

// ProfileLocks 按连接ID管理锁
type ProfileLocks struct {
	locks       map[string]*profileLock
	mutex       sync.Mutex
	idleTimeout time.Duration
	now         func() time.Time
}

// NewProfileLocks 创建锁管理器
func NewProfileLocks(idleTimeout time.Duration) *ProfileLocks {
	return &ProfileLocks{
		locks:       make(map[string]*profileLock),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Lock 获取连接的锁，ctx 取消时放弃等待。返回的函数用于释放锁。
func (p *ProfileLocks) Lock(ctx context.Context, profileID string) (func(), error) {
	p.mutex.Lock()
	l, ok := p.locks[profileID]
	if !ok {
		l = &profileLock{mu: make(chan struct{}, 1)}
		p.locks[profileID] = l
	}
	l.users++
	p.mutex.Unlock()

	select {
	case l.mu <- struct{}{}:
	case <-ctx.Done():
		p.release(l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.mu
			p.release(l)
		})
	}, nil
}

func (p *ProfileLocks) release(l *profileLock) {
	p.mutex.Lock()
	l.users--
	l.lastUsed = p.now()
	p.mutex.Unlock()
}

// Forget 删除连接的锁，用于退出登录
func (p *ProfileLocks) Forget(profileID string) {
	p.mutex.Lock()
	if l, ok := p.locks[profileID]; ok && l.users == 0 {
		delete(p.locks, profileID)
	}
	p.mutex.Unlock()
}

// Len 当前管理的锁数量
func (p *ProfileLocks) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.locks)
}

// CleanupIdle 清理空闲超时且无人使用的锁
func (p *ProfileLocks) CleanupIdle() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	removed := 0
	deadline := p.now().Add(-p.idleTimeout)
	for id, l := range p.locks {
		if l.users == 0 && l.lastUsed.Before(deadline) {
			delete(p.locks, id)
			removed++
		}
	}
	return removed
}

// StartCleanup 定期清理空闲锁，直到 ctx 结束
func (p *ProfileLocks) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.CleanupIdle()
			}
		}
	}()
}

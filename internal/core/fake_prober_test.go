package core

import (
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/RecoveryAshes/linkaudit/internal/links"
	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// outcome 一个URL的固定检测结果
type outcome struct {
	status int
	err    error
	panics bool
}

// probeTracker 记录每个源站以及全局的在途请求数
type probeTracker struct {
	mu             sync.Mutex
	inflight       map[string]int
	maxPerOrigin   map[string]int
	globalInflight int
	maxGlobal      int
	calls          []string
}

func newProbeTracker() *probeTracker {
	return &probeTracker{
		inflight:     make(map[string]int),
		maxPerOrigin: make(map[string]int),
	}
}

func (pt *probeTracker) enter(origin, rawURL string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.inflight[origin]++
	pt.maxPerOrigin[origin] = max(pt.maxPerOrigin[origin], pt.inflight[origin])
	pt.globalInflight++
	pt.maxGlobal = max(pt.maxGlobal, pt.globalInflight)
	pt.calls = append(pt.calls, rawURL)
}

func (pt *probeTracker) leave(origin string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.inflight[origin]--
	pt.globalInflight--
}

// fakeProber 按URL返回固定结果,并记录在途请求
type fakeProber struct {
	origin   string
	outcomes map[string]outcome
	tracker  *probeTracker
	delay    time.Duration

	// 首次探测时等待所有源站都开始,用于验证跨源站并发
	barrier *startBarrier

	closed bool
}

func (p *fakeProber) Probe(target *url.URL) (int, error) {
	p.tracker.enter(p.origin, target.String())
	defer p.tracker.leave(p.origin)

	if p.barrier != nil {
		p.barrier.arrive()
		p.barrier = nil
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	o, ok := p.outcomes[target.String()]
	if !ok {
		return 200, nil
	}
	if o.panics {
		panic("探测器内部错误")
	}
	return o.status, o.err
}

func (p *fakeProber) Close() {
	p.closed = true
}

// startBarrier 所有参与者到达后同时放行,超时则记录失败
type startBarrier struct {
	t       *testing.T
	wg      sync.WaitGroup
	all     chan struct{}
	once    sync.Once
	timeout time.Duration
}

func newStartBarrier(t *testing.T, parties int) *startBarrier {
	b := &startBarrier{t: t, all: make(chan struct{}), timeout: 5 * time.Second}
	b.wg.Add(parties)
	go func() {
		b.wg.Wait()
		b.once.Do(func() { close(b.all) })
	}()
	return b
}

func (b *startBarrier) arrive() {
	b.wg.Done()
	select {
	case <-b.all:
	case <-time.After(b.timeout):
		b.t.Errorf("等待其他源站开始超时: 源站之间没有并发执行")
	}
}

// fakeFactory 创建fakeProber的工厂
type fakeFactory struct {
	mu       sync.Mutex
	outcomes map[string]outcome
	tracker  *probeTracker
	delay    time.Duration
	barrier  *startBarrier
	failFor  map[string]error
	created  map[string]*fakeProber
}

func newFakeFactory(outcomes map[string]outcome) *fakeFactory {
	return &fakeFactory{
		outcomes: outcomes,
		tracker:  newProbeTracker(),
		failFor:  make(map[string]error),
		created:  make(map[string]*fakeProber),
	}
}

func (f *fakeFactory) New(origin string) (Prober, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failFor[origin]; ok {
		return nil, err
	}
	if _, exists := f.created[origin]; exists {
		return nil, errors.New("同一源站创建了多个探测器: " + origin)
	}

	p := &fakeProber{
		origin:   origin,
		outcomes: f.outcomes,
		tracker:  f.tracker,
		delay:    f.delay,
		barrier:  f.barrier,
	}
	f.created[origin] = p
	return p, nil
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("解析URL失败: %v", err)
	}
	return u
}

// indexEntry 测试输入中的一个链接
type indexEntry struct {
	row int
	url string
}

// buildTestIndex Ordinal按行内出现顺序分配
func buildTestIndex(t *testing.T, entries []indexEntry) *links.JobIndex {
	t.Helper()
	index := links.NewJobIndex()
	ordinals := make(map[int]int)
	for _, e := range entries {
		index.Add(models.Job{
			Row:      e.row,
			Ordinal:  ordinals[e.row],
			Location: "loc",
			URL:      mustURL(t, e.url),
		})
		ordinals[e.row]++
	}
	return index
}

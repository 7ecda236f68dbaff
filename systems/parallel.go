package systems

import (
	"runtime"
	"sync"
)

// ChunkFunc processes items [start, end) as chunk number id.
type ChunkFunc func(id, start, end int)

// workChunk represents a range of items for a worker to process.
type workChunk struct {
	id, start, end int
	fn             ChunkFunc
	done           *sync.WaitGroup
}

// Pool is a persistent set of workers that process fixed-size chunks.
// Chunk boundaries depend only on the item count and chunk size, so a
// per-chunk fold gives the same result for any worker count.
type Pool struct {
	numWorkers int
	chunkSize  int
	threshold  int

	workChan chan workChunk // sends work to workers
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

// NewPool creates a pool. workers <= 0 uses GOMAXPROCS; runs with fewer
// than threshold items are processed on the calling goroutine.
func NewPool(workers, chunkSize, threshold int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunkSize < 1 {
		chunkSize = 1024
	}
	return &Pool{
		numWorkers: workers,
		chunkSize:  chunkSize,
		threshold:  threshold,
	}
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.numWorkers }

// Chunks returns how many chunks Run splits n items into.
func (p *Pool) Chunks(n int) int {
	return (n + p.chunkSize - 1) / p.chunkSize
}

// start launches persistent worker goroutines.
func (p *Pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (p *Pool) Stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case c, ok := <-p.workChan:
			if !ok {
				return
			}
			c.fn(c.id, c.start, c.end)
			c.done.Done()
		}
	}
}

// Run calls fn for every chunk of n items and returns when all are done.
func (p *Pool) Run(n int, fn ChunkFunc) {
	chunks := p.Chunks(n)
	if chunks == 0 {
		return
	}

	if p.numWorkers == 1 || chunks == 1 || n < p.threshold {
		for id := 0; id < chunks; id++ {
			start, end := p.bounds(id, n)
			fn(id, start, end)
		}
		return
	}

	p.start()

	var done sync.WaitGroup
	done.Add(chunks)
	for id := 0; id < chunks; id++ {
		start, end := p.bounds(id, n)
		p.workChan <- workChunk{id: id, start: start, end: end, fn: fn, done: &done}
	}
	done.Wait()
}

func (p *Pool) bounds(id, n int) (int, int) {
	start := id * p.chunkSize
	end := start + p.chunkSize
	if end > n {
		end = n
	}
	return start, end
}

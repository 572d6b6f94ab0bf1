package parallel

import "sync"

// Result carries one fetched value or the error that produced it.
type Result[T any] struct {
	Value T
	Err   error
}

// Prefetch runs fetch over the index groups with at most workers concurrent
// calls and delivers the results strictly in group order on the returned
// channel, so upcoming groups are assembled while the consumer works on the
// current one. workers <= 0 degrades to synchronous fetching with identical
// results. The consumer must drain the channel.
func Prefetch[T any](groups [][]int, workers int, fetch func(group []int) (T, error)) <-chan Result[T] {
	out := make(chan Result[T])

	if workers <= 0 {
		go func() {
			defer close(out)
			for _, g := range groups {
				v, err := fetch(g)
				out <- Result[T]{Value: v, Err: err}
			}
		}()
		return out
	}

	// One slot per group keeps delivery ordered while the semaphore bounds
	// the number of in-flight fetches.
	slots := make(chan chan Result[T], workers)
	go func() {
		defer close(slots)
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for _, g := range groups {
			g := g
			slot := make(chan Result[T], 1)
			slots <- slot
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				v, err := fetch(g)
				slot <- Result[T]{Value: v, Err: err}
			}()
		}
		wg.Wait()
	}()
	go func() {
		defer close(out)
		for slot := range slots {
			out <- <-slot
		}
	}()
	return out
}

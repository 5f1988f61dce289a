package utils_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/termstat/termstat/internal/utils"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := utils.NewWorkerPool(4)

	var (
		count int64
		wg    sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()
	pool.Shutdown()

	assert.Equal(t, int64(100), atomic.LoadInt64(&count))
}

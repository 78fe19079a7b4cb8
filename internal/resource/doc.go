// Package resource budgets the three resources a triangulation handle consumes
// outside the kernel:
//
//   - Memory: bytes reserved by pending point buffers (non-blocking, fail-fast)
//   - Workers: concurrent goroutines used by batch point location
//   - IO: bytes per second written by archive uploads (token bucket)
//
// A Controller may be shared by many handles. All methods are safe for
// concurrent use and a nil *Controller is valid and imposes no limits:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	    MaxWorkers:       4,
//	})
//
//	if err := rc.AcquireMemory(rows * width * 8); err != nil {
//	    return err // ErrMemoryLimitExceeded
//	}
package resource

package observability

import (
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	t.Run("NewMetrics", func(t *testing.T) {
		if m == nil {
			t.Fatal("NewMetrics returned nil")
		}
		if m.RequestsTotal == nil {
			t.Error("RequestsTotal not initialized")
		}
		if m.RequestDuration == nil {
			t.Error("RequestDuration not initialized")
		}
		if m.InsertsTotal == nil {
			t.Error("InsertsTotal not initialized")
		}
		if m.CacheHits == nil {
			t.Error("CacheHits not initialized")
		}
	})

	t.Run("RecordRequest", func(t *testing.T) {
		duration := 100 * time.Millisecond
		m.RecordRequest("Insert", "success", duration)
		m.RecordRequest("Query", "error", 50*time.Millisecond)

		methods := []string{"Insert", "Query", "Reorder", "BatchInsert"}
		statuses := []string{"success", "error", "timeout"}
		for _, method := range methods {
			for _, status := range statuses {
				m.RecordRequest(method, status, duration)
			}
		}
	})

	t.Run("RecordError", func(t *testing.T) {
		m.RecordError("Insert", "dimension_mismatch")
		m.RecordError("Query", "timeout")
	})

	t.Run("RecordInsert", func(t *testing.T) {
		m.RecordInsert(1 * time.Millisecond)
		for i := 0; i < 100; i++ {
			m.RecordInsert(time.Duration(i) * time.Microsecond)
		}
	})

	t.Run("RecordQuery", func(t *testing.T) {
		m.RecordQuery(50*time.Millisecond, 10)
		m.RecordQuery(100*time.Millisecond, 25)
		for i := 1; i <= 50; i += 10 {
			m.RecordQuery(time.Millisecond*time.Duration(i), i)
		}
	})

	t.Run("UpdateGraphSize", func(t *testing.T) {
		m.UpdateGraphSize("default", 1000)
		m.UpdateGraphSize("production", 50000)
		m.UpdateGraphSize("default", 1500)
	})

	t.Run("UpdateGraphMemory", func(t *testing.T) {
		m.UpdateGraphMemory("default", 1024*1024*100)
		m.UpdateGraphMemory("production", 1024*1024*1024)
	})

	t.Run("RecordReorder", func(t *testing.T) {
		m.RecordReorder("default", 250*time.Millisecond)
		m.RecordReorder("production", 2*time.Second)
	})

	t.Run("RecordCacheHit", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			m.RecordCacheHit()
		}
	})

	t.Run("RecordCacheMiss", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			m.RecordCacheMiss()
		}
	})

	t.Run("UpdateCacheSize", func(t *testing.T) {
		m.UpdateCacheSize(100)
		m.UpdateCacheSize(500)
	})

	t.Run("RecordBatchInsert", func(t *testing.T) {
		m.RecordBatchInsert(500*time.Millisecond, 100)
		m.RecordBatchInsert(5*time.Second, 1000)
	})

	t.Run("UpdateTenantCount", func(t *testing.T) {
		m.UpdateTenantCount(5)
		m.UpdateTenantCount(10)
	})

	t.Run("UpdateTenantQuota", func(t *testing.T) {
		m.UpdateTenantQuota("tenant1", "vectors", 0.755)
		m.UpdateTenantQuota("tenant1", "dimensions", 0.6)

		resources := []string{"vectors", "dimensions"}
		for i, resource := range resources {
			m.UpdateTenantQuota("test_tenant", resource, float64(i)*0.1+0.05)
		}
	})

	t.Run("UpdateSystemMetrics", func(t *testing.T) {
		m.UpdateGoroutineCount(100)
		m.UpdateMemoryUsage(1024 * 1024 * 512)

		for i := 0; i < 10; i++ {
			m.UpdateGoroutineCount(100 + i*10)
			m.UpdateMemoryUsage(uint64(1024 * 1024 * (500 + i*100)))
		}
	})
}

// TestGoroutineFanOut only exercises goroutine fan-out shape and updates no
// metric; a second NewMetrics() call in this binary would panic on duplicate
// registration against Prometheus's default registry, so it uses no
// Metrics instance of its own.
func TestGoroutineFanOut(t *testing.T) {
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				_ = j
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

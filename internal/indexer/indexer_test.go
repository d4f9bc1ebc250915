// server/internal/indexer/indexer_test.go
package indexer

import (
	"sync"
	"testing"
	"time"

	"coffee-coop-ledger-api-server/internal/ledger"
)

// idleIndexer dựng một Indexer không chạy goroutine run, để quan sát
// queue và seq ngay sau Notify.
func idleIndexer(startSeq uint64) *Indexer {
	ix := &Indexer{seq: startSeq}
	ix.cond = sync.NewCond(&ix.mu)
	return ix
}

// Sau restart, seq phải đánh số tiếp tục từ giá trị đã ghi trong Mongo,
// không quay về 0 (quay về 0 sẽ va vào unique index trên seq và làm
// mất event một cách im lặng).
func TestSeqContinuesAfterRestart(t *testing.T) {
	ix := idleIndexer(41) // như thể lastIndexedSeq đọc được 41

	ix.Notify(ledger.BatchCreated{BatchID: 1, Quantity: 100})
	ix.Notify(ledger.BatchCreated{BatchID: 2, Quantity: 200})

	if len(ix.queue) != 2 {
		t.Fatalf("queue has %d events, want 2", len(ix.queue))
	}
	if ix.queue[0].seq != 42 || ix.queue[1].seq != 43 {
		t.Errorf("seqs = %d,%d, want 42,43", ix.queue[0].seq, ix.queue[1].seq)
	}
}

func TestLastIndexedSeqWithoutMongo(t *testing.T) {
	if got := lastIndexedSeq(nil); got != 0 {
		t.Errorf("lastIndexedSeq(nil) = %d, want 0", got)
	}
}

// Notify không được chặn commit path dù consumer không theo kịp: queue
// không giới hạn, nên đẩy nhiều event hơn hẳn buffer cũ vẫn phải xong
// ngay cả khi chưa có ai drain.
func TestNotifyNeverBlocks(t *testing.T) {
	ix := idleIndexer(0) // không có goroutine drain

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			ix.Notify(ledger.BatchCreated{BatchID: uint64(i + 1)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Notify blocked with no consumer running")
	}

	if len(ix.queue) != 10000 {
		t.Fatalf("queue has %d events, want 10000", len(ix.queue))
	}
	// Thứ tự trong queue phải trùng thứ tự Notify.
	for i, se := range ix.queue {
		if se.seq != uint64(i+1) {
			t.Fatalf("queue[%d].seq = %d, want %d", i, se.seq, i+1)
		}
	}
}

// New + Close với sink rỗng phải drain sạch queue và thoát, không deadlock.
func TestCloseDrainsQueue(t *testing.T) {
	ix := New(nil, nil)
	for i := 0; i < 100; i++ {
		ix.Notify(ledger.BatchCreated{BatchID: uint64(i + 1)})
	}

	done := make(chan struct{})
	go func() {
		ix.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not finish draining the queue")
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(ix.queue) != 0 {
		t.Errorf("queue has %d events after Close, want 0", len(ix.queue))
	}
}

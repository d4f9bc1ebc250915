// server/internal/indexer/indexer.go
package indexer

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"coffee-coop-ledger-api-server/internal/ledger"
	"coffee-coop-ledger-api-server/internal/models"
	"coffee-coop-ledger-api-server/internal/socket"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexer là một ledger.Notifier: nhận change event ngay sau commit, rồi
// ghi vào collection ledger_events và broadcast qua WebSocket một cách
// bất đồng bộ. Ledger không bao giờ chờ hay phụ thuộc vào hai sink này;
// lỗi ghi Mongo chỉ được log, không bao giờ quay ngược về core.
type Indexer struct {
	db  *mongo.Database
	hub *socket.Hub

	// Notify chỉ append vào queue dưới mu rồi signal; goroutine run
	// là bên duy nhất lấy event ra. Queue không giới hạn kích thước
	// nên commit path không bao giờ bị chặn, kể cả khi Mongo chậm.
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []seqEvent
	closed bool

	seq uint64
	wg  sync.WaitGroup
}

type seqEvent struct {
	seq   uint64
	event ledger.Event
}

func New(db *mongo.Database, hub *socket.Hub) *Indexer {
	ix := &Indexer{
		db:  db,
		hub: hub,
	}
	ix.cond = sync.NewCond(&ix.mu)
	// Đánh số tiếp tục từ seq lớn nhất đã ghi, để restart không va vào
	// unique index trên ledger_events.seq.
	ix.seq = lastIndexedSeq(db)
	ix.wg.Add(1)
	go ix.run()
	return ix
}

// lastIndexedSeq đọc seq lớn nhất đang có trong event index. Trả về 0
// với collection rỗng (hoặc khi chạy không có Mongo).
func lastIndexedSeq(db *mongo.Database) uint64 {
	if db == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var last models.LedgerEvent
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})
	err := db.Collection("ledger_events").FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("Failed to read last indexed seq, starting from 0: %v", err)
		}
		return 0
	}
	return last.Seq
}

// Notify được ledger gọi trong critical section của commit, nên chỉ gán
// seq và append vào queue; không có I/O và không chặn. Seq gán tại đây
// trùng với thứ tự commit vì ledger phát event dưới writer lock.
func (ix *Indexer) Notify(event ledger.Event) {
	ix.mu.Lock()
	ix.seq++
	ix.queue = append(ix.queue, seqEvent{seq: ix.seq, event: event})
	ix.mu.Unlock()
	ix.cond.Signal()
}

func (ix *Indexer) run() {
	defer ix.wg.Done()
	for {
		ix.mu.Lock()
		for len(ix.queue) == 0 && !ix.closed {
			ix.cond.Wait()
		}
		if len(ix.queue) == 0 && ix.closed {
			ix.mu.Unlock()
			return
		}
		batch := ix.queue
		ix.queue = nil
		ix.mu.Unlock()

		for _, se := range batch {
			ix.persist(se)
			ix.broadcast(se)
		}
	}
}

func (ix *Indexer) persist(se seqEvent) {
	if ix.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc := models.LedgerEvent{
		EventID:   uuid.New().String(),
		Seq:       se.seq,
		Name:      se.event.Name(),
		Payload:   se.event,
		IndexedAt: time.Now(),
	}
	if _, err := ix.db.Collection("ledger_events").InsertOne(ctx, doc); err != nil {
		log.Printf("Failed to index ledger event %s (seq %d): %v", se.event.Name(), se.seq, err)
	}
}

func (ix *Indexer) broadcast(se seqEvent) {
	if ix.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"seq":   se.seq,
		"name":  se.event.Name(),
		"event": se.event,
	})
	if err != nil {
		log.Printf("Failed to marshal ledger event %s: %v", se.event.Name(), err)
		return
	}
	ix.hub.Broadcast(msg)
}

// Close chờ queue được xử lý hết rồi dừng goroutine.
func (ix *Indexer) Close() {
	ix.mu.Lock()
	ix.closed = true
	ix.mu.Unlock()
	ix.cond.Broadcast()
	ix.wg.Wait()
}

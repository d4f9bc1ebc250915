// server/internal/anchor/anchor.go
package anchor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"coffee-coop-ledger-api-server/config"
	"coffee-coop-ledger-api-server/internal/ledger"
	"coffee-coop-ledger-api-server/internal/wallet"

	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
)

// FabricSetup giữ kết nối tới kênh anchor.
type FabricSetup struct {
	Gateway  *gateway.Gateway
	Contract *gateway.Contract
	SDK      *fabsdk.FabricSDK
	Wallet   *gateway.Wallet
}

// Initialize kết nối tới Fabric bằng identity mặc định của server.
func Initialize(cfg config.FabricConfig) (*FabricSetup, error) {
	os.Setenv("DISCOVERY_AS_LOCALHOST", "true")

	fsWallet, err := gateway.NewFileSystemWallet("wallet")
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	err = wallet.PopulateWallet(fsWallet, cfg.OrgName, cfg.UserName, cfg.UserCertPath, cfg.UserKeyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to populate wallet for anchor identity: %w", err)
	}

	sdk, err := fabsdk.New(fabconfig.FromFile(filepath.Clean(cfg.ConnectionProfile)))
	if err != nil {
		return nil, fmt.Errorf("failed to create fabsdk instance: %w", err)
	}

	gw, err := gateway.Connect(
		gateway.WithSDK(sdk),
		gateway.WithIdentity(fsWallet, cfg.UserName),
	)
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("failed to connect to gateway: %w", err)
	}

	network, err := gw.GetNetwork(cfg.ChannelName)
	if err != nil {
		gw.Close()
		sdk.Close()
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	contract := network.GetContract(cfg.ChaincodeName)

	return &FabricSetup{
		Gateway:  gw,
		Contract: contract,
		SDK:      sdk,
		Wallet:   fsWallet,
	}, nil
}

// Anchor là một ledger.Notifier: ghi digest của mỗi change event lên
// kênh Fabric để bên tài trợ có một vệt kiểm chứng độc lập với server.
// Chỉ digest đi lên chain; payload đầy đủ nằm ở event index trong Mongo.
type Anchor struct {
	setup *FabricSetup

	// Cùng kỷ luật với indexer: Notify chỉ append dưới mu, goroutine
	// run submit transaction. Queue không giới hạn nên một đợt Fabric
	// chậm không bao giờ chặn commit path.
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []anchorItem
	closed bool

	seq uint64
	wg  sync.WaitGroup
}

type anchorItem struct {
	seq   uint64
	name  string
	event ledger.Event
}

func NewAnchor(setup *FabricSetup) *Anchor {
	a := &Anchor{
		setup: setup,
	}
	a.cond = sync.NewCond(&a.mu)
	a.wg.Add(1)
	go a.run()
	return a
}

// Notify được gọi trong commit path của ledger nên chỉ đẩy vào queue;
// việc submit transaction chạy ở goroutine riêng và không bao giờ chặn
// hay làm fail một commit đã xong.
func (a *Anchor) Notify(event ledger.Event) {
	a.mu.Lock()
	a.seq++
	a.queue = append(a.queue, anchorItem{seq: a.seq, name: event.Name(), event: event})
	a.mu.Unlock()
	a.cond.Signal()
}

func (a *Anchor) run() {
	defer a.wg.Done()
	for {
		a.mu.Lock()
		for len(a.queue) == 0 && !a.closed {
			a.cond.Wait()
		}
		if len(a.queue) == 0 && a.closed {
			a.mu.Unlock()
			return
		}
		batch := a.queue
		a.queue = nil
		a.mu.Unlock()

		for _, item := range batch {
			a.submit(item)
		}
	}
}

func (a *Anchor) submit(item anchorItem) {
	payload, err := json.Marshal(item.event)
	if err != nil {
		log.Printf("Failed to marshal event %s for anchoring: %v", item.name, err)
		return
	}
	sum := sha256.Sum256(payload)
	digest := hex.EncodeToString(sum[:])

	_, err = a.setup.Contract.SubmitTransaction(
		"AnchorEvent",
		strconv.FormatUint(item.seq, 10),
		item.name,
		digest,
	)
	if err != nil {
		log.Printf("Failed to anchor event %s (seq %d): %v", item.name, item.seq, err)
	}
}

// Close chờ các event còn trong queue được anchor xong.
func (a *Anchor) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.cond.Broadcast()
	a.wg.Wait()
}

package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Caller is the JSON-RPC surface chain control needs. *rpc.Client
// implements it.
type Caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// Chain issues mining-control calls to a local development node.
type Chain struct {
	rpc    Caller
	closer func()
}

// DialChain connects to the node at url.
func DialChain(ctx context.Context, url string) (*Chain, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Chain{rpc: c, closer: c.Close}, nil
}

// NewChain wraps an existing JSON-RPC caller.
func NewChain(c Caller) *Chain {
	return &Chain{rpc: c}
}

// Close releases the connection when the chain was dialed.
func (c *Chain) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Automine mines every transaction as soon as it is submitted.
func (c *Chain) Automine(ctx context.Context) error {
	if err := c.rpc.CallContext(ctx, nil, "evm_setAutomine", true); err != nil {
		return fmt.Errorf("enable automine: %w", err)
	}
	return nil
}

// IntervalMining mines a block every interval and turns automine off.
func (c *Chain) IntervalMining(ctx context.Context, interval time.Duration) error {
	if err := c.rpc.CallContext(ctx, nil, "evm_setIntervalMining", uint64(interval/time.Second)); err != nil {
		return fmt.Errorf("set interval mining: %w", err)
	}
	return nil
}

// LatestBlockTime reads the timestamp of the chain head.
func (c *Chain) LatestBlockTime(ctx context.Context) (time.Time, error) {
	var head *struct {
		Timestamp hexutil.Uint64 `json:"timestamp"`
	}
	if err := c.rpc.CallContext(ctx, &head, "eth_getBlockByNumber", "latest", false); err != nil {
		return time.Time{}, fmt.Errorf("read latest block: %w", err)
	}
	if head == nil {
		return time.Time{}, errors.New("read latest block: node returned no block")
	}
	return time.Unix(int64(head.Timestamp), 0), nil
}

// SetNextBlockTimestamp pins the timestamp of the next mined block.
func (c *Chain) SetNextBlockTimestamp(ctx context.Context, ts time.Time) error {
	if err := c.rpc.CallContext(ctx, nil, "evm_setNextBlockTimestamp", uint64(ts.Unix())); err != nil {
		return fmt.Errorf("set next block timestamp: %w", err)
	}
	return nil
}

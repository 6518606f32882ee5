package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bowerhall/chainverse/internal/logger"
)

const (
	// MainnetRPCURL is the default Solana mainnet RPC endpoint.
	MainnetRPCURL = "https://api.mainnet-beta.solana.com"
	// DevnetRPCURL is the Solana devnet RPC endpoint, for testing.
	DevnetRPCURL = "https://api.devnet.solana.com"

	// Solana produces roughly 2 slots per second (400ms per slot).
	SlotsPerSecond = 2
	SlotsPerDay    = 24 * 60 * 60 * SlotsPerSecond

	// confirmationSlots is how far behind the tip we fetch so the block is
	// confirmed and served by public RPC nodes.
	confirmationSlots = 32
)

// ErrBlockNotAvailable is returned when the requested slot was skipped or
// its block has been pruned by the RPC node. Callers probing for a block
// near a target slot branch on this to try neighbouring slots.
var ErrBlockNotAvailable = errors.New("block not available for slot")

// Block is one block's worth of entropy material.
type Block struct {
	Slot              uint64   `json:"slot"`
	Blockhash         string   `json:"blockhash"`
	PreviousBlockhash string   `json:"previous_blockhash"`
	BlockTime         *int64   `json:"block_time"`
	BlockHeight       *uint64  `json:"block_height"`
	ParentSlot        uint64   `json:"parent_slot"`
	TransactionCount  int      `json:"transaction_count"`
	SampleSignatures  []string `json:"sample_signatures"`
}

// EntropySources lists every entropy string extractable from the block.
func (b *Block) EntropySources() []string {
	sources := []string{
		b.Blockhash,
		b.PreviousBlockhash,
		fmt.Sprintf("%d", b.Slot),
		fmt.Sprintf("%d", b.TransactionCount),
	}
	return append(sources, b.SampleSignatures...)
}

// Client talks JSON-RPC to a Solana node.
type Client struct {
	rpcURL string
	http   *http.Client
}

func New() *Client {
	return WithURL(MainnetRPCURL)
}

func WithURL(url string) *Client {
	return &Client{rpcURL: url, http: http.DefaultClient}
}

func (c *Client) RPCURL() string {
	return c.rpcURL
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

// Slot-skipped and block-pruned error codes per the Solana RPC spec.
func (e *rpcError) blockNotAvailable() bool {
	switch e.Code {
	case -32004, -32007, -32009, -32014:
		return true
	}
	return false
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read rpc response: %w", err)
	}

	if resp.StatusCode != 200 {
		return fmt.Errorf("rpc %s: status %d: %s", method, resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.blockNotAvailable() {
			return fmt.Errorf("%w: %s", ErrBlockNotAvailable, rpcResp.Error.Message)
		}
		return fmt.Errorf("rpc %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}

	return nil
}

// CurrentSlot returns the node's current confirmed slot.
func (c *Client) CurrentSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	err := c.call(ctx, "getSlot", []any{map[string]any{"commitment": "confirmed"}}, &slot)
	return slot, err
}

type rpcBlock struct {
	Blockhash         string   `json:"blockhash"`
	PreviousBlockhash string   `json:"previousBlockhash"`
	ParentSlot        uint64   `json:"parentSlot"`
	BlockTime         *int64   `json:"blockTime"`
	BlockHeight       *uint64  `json:"blockHeight"`
	Signatures        []string `json:"signatures"`
}

// GetBlock fetches a block at the given slot, with transaction signatures
// only. Up to 5 signatures are kept as entropy samples.
func (c *Client) GetBlock(ctx context.Context, slot uint64) (*Block, error) {
	params := []any{
		slot,
		map[string]any{
			"encoding":                       "base64",
			"transactionDetails":             "signatures",
			"rewards":                        false,
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var raw rpcBlock
	if err := c.call(ctx, "getBlock", params, &raw); err != nil {
		return nil, err
	}

	samples := raw.Signatures
	if len(samples) > 5 {
		samples = samples[:5]
	}

	return &Block{
		Slot:              slot,
		Blockhash:         raw.Blockhash,
		PreviousBlockhash: raw.PreviousBlockhash,
		BlockTime:         raw.BlockTime,
		BlockHeight:       raw.BlockHeight,
		ParentSlot:        raw.ParentSlot,
		TransactionCount:  len(raw.Signatures),
		SampleSignatures:  samples,
	}, nil
}

// LatestBlock fetches the most recent confirmed block, backing off from the
// tip so the slot is settled and available on public nodes.
func (c *Client) LatestBlock(ctx context.Context) (*Block, error) {
	slot, err := c.CurrentSlot(ctx)
	if err != nil {
		return nil, err
	}

	confirmed := slot
	if confirmed > confirmationSlots {
		confirmed -= confirmationSlots
	}

	return c.GetBlock(ctx, confirmed)
}

// Healthy reports whether the RPC node answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	var status string
	if err := c.call(ctx, "getHealth", nil, &status); err != nil {
		logger.Debug("rpc health check failed", "error", err)
		return false
	}
	return status == "ok"
}

type performanceSample struct {
	NumSlots         uint64 `json:"numSlots"`
	SamplePeriodSecs uint64 `json:"samplePeriodSecs"`
}

// BlockProductionRate samples the node's recent slot production in slots
// per second, falling back to the nominal rate when no sample is returned.
func (c *Client) BlockProductionRate(ctx context.Context) (float64, error) {
	var samples []performanceSample
	if err := c.call(ctx, "getRecentPerformanceSamples", []any{1}, &samples); err != nil {
		return 0, err
	}

	if len(samples) == 0 || samples[0].SamplePeriodSecs == 0 {
		return float64(SlotsPerSecond), nil
	}

	return float64(samples[0].NumSlots) / float64(samples[0].SamplePeriodSecs), nil
}

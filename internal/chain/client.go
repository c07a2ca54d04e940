package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/augmented-finance/augmented-cli/internal/chain/signer"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

type Options struct {
	PollInterval  time.Duration
	WaitTimeout   time.Duration
	GasMultiplier float64
	Logger        *zap.Logger
	// SignerErr explains why no signer was supplied; Send reports it.
	SignerErr error
}

func DefaultOptions() Options {
	return Options{
		PollInterval:  2 * time.Second,
		WaitTimeout:   2 * time.Minute,
		GasMultiplier: 1.2,
	}
}

// Client is the ledger backend: read calls, signed sends and receipt waits
// against one RPC endpoint.
type Client struct {
	eth     *ethclient.Client
	signer  signer.Signer
	opts    Options
	log     *zap.Logger
	chainID *big.Int
}

// Dial connects to rpcURL. txSigner may be nil for read-only use.
func Dial(ctx context.Context, rpcURL string, txSigner signer.Signer, opts Options) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "connect rpc", err)
	}
	defaults := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = defaults.WaitTimeout
	}
	if opts.GasMultiplier <= 1 {
		opts.GasMultiplier = defaults.GasMultiplier
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{eth: eth, signer: txSigner, opts: opts, log: log}, nil
}

func (c *Client) Close() {
	if c != nil && c.eth != nil {
		c.eth.Close()
	}
}

// From is the signer address, or the zero address without a signer.
func (c *Client) From() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, wrapEVMError("read chain id", err)
	}
	c.chainID = id
	return id, nil
}

func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{From: c.From(), To: &to, Data: data}
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, wrapEVMError("eth_call", err)
	}
	return out, nil
}

// Send signs and broadcasts a call. A zero gasLimit is estimated.
func (c *Client) Send(ctx context.Context, to common.Address, data []byte, gasLimit uint64) (common.Hash, error) {
	if c.signer == nil {
		if c.opts.SignerErr != nil {
			return common.Hash{}, clierr.Wrap(clierr.CodeSigner, "missing signer", c.opts.SignerErr)
		}
		return common.Hash{}, clierr.New(clierr.CodeSigner, "missing signer")
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	from := c.signer.Address()
	if gasLimit == 0 {
		estimated, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
		if err != nil {
			return common.Hash{}, wrapEVMError("estimate gas", err)
		}
		gasLimit = uint64(float64(estimated) * c.opts.GasMultiplier)
	}
	tipCap, feeCap := c.fees(ctx)
	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, wrapEVMError("fetch nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     new(big.Int),
		Data:      data,
	})
	signed, err := c.signer.SignTx(chainID, tx)
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeSigner, "sign transaction", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, wrapEVMError("broadcast transaction", err)
	}
	c.log.Debug("broadcast transaction",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gasLimit))
	return signed.Hash(), nil
}

func (c *Client) fees(ctx context.Context) (*big.Int, *big.Int) {
	tipCap, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		tipCap = big.NewInt(2_000_000_000)
	}
	var baseFee *big.Int
	if header, err := c.eth.HeaderByNumber(ctx, nil); err == nil && header.BaseFee != nil {
		baseFee = header.BaseFee
	} else if price, err := c.eth.SuggestGasPrice(ctx); err == nil {
		baseFee = price
	} else {
		baseFee = big.NewInt(1_000_000_000)
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(2))
	feeCap.Add(feeCap, tipCap)
	return tipCap, feeCap
}

// WaitMined polls for the receipt of hash. A failed receipt is a revert.
func (c *Client) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.opts.WaitTimeout)
	defer cancel()
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				return receipt, nil
			}
			return receipt, clierr.New(clierr.CodeRevert, "transaction reverted on-chain: "+hash.Hex())
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.log.Debug("receipt poll failed", zap.String("hash", hash.Hex()), zap.Error(err))
		}
		select {
		case <-waitCtx.Done():
			return nil, clierr.Wrap(clierr.CodeTimeout, "timed out waiting for receipt "+hash.Hex(), waitCtx.Err())
		case <-ticker.C:
		}
	}
}

package oracle

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"StakingLedger/internal/model"
)

// AggregatorABI covers the read-only part of a Chainlink AggregatorV3Interface.
const AggregatorABI = `[
	{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"latestRoundData","outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}
	],"stateMutability":"view","type":"function"}
]`

var aggregatorABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(AggregatorABI))
	if err != nil {
		panic(err)
	}
	aggregatorABI = parsed
}

// ChainlinkOracle reads an on-chain price aggregator.
type ChainlinkOracle struct {
	caller     ethereum.ContractCaller
	aggregator common.Address
	closer     func()

	mu        sync.Mutex
	decimals  uint8
	decLoaded bool
}

// DialChainlinkOracle connects to an RPC endpoint and reads the aggregator at address.
func DialChainlinkOracle(ctx context.Context, rpcURL string, aggregator common.Address) (*ChainlinkOracle, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", rpcURL)
	}
	o := NewChainlinkOracle(client, aggregator)
	o.closer = client.Close
	return o, nil
}

// NewChainlinkOracle reads the aggregator through an existing contract caller.
func NewChainlinkOracle(caller ethereum.ContractCaller, aggregator common.Address) *ChainlinkOracle {
	return &ChainlinkOracle{caller: caller, aggregator: aggregator}
}

func (o *ChainlinkOracle) Name() string { return "chainlink" }

// Close releases the RPC connection when the oracle owns one.
func (o *ChainlinkOracle) Close() {
	if o.closer != nil {
		o.closer()
	}
}

func (o *ChainlinkOracle) LatestPrice(ctx context.Context) (model.Price, error) {
	decimals, err := o.loadDecimals(ctx)
	if err != nil {
		return model.Price{}, err
	}

	out, err := o.call(ctx, "latestRoundData")
	if err != nil {
		return model.Price{}, err
	}
	answer, ok := out[1].(*big.Int)
	if !ok {
		return model.Price{}, errors.Errorf("latestRoundData: unexpected answer type %T", out[1])
	}
	updatedAt, ok := out[3].(*big.Int)
	if !ok {
		return model.Price{}, errors.Errorf("latestRoundData: unexpected updatedAt type %T", out[3])
	}
	if answer.Sign() <= 0 {
		return model.Price{}, errors.Errorf("aggregator %s returned non-positive answer %s", o.aggregator.Hex(), answer)
	}
	value, overflow := uint256.FromBig(answer)
	if overflow {
		return model.Price{}, errors.New("answer overflows uint256")
	}
	return model.Price{
		Value:     *value,
		Decimals:  decimals,
		Timestamp: updatedAt.Int64(),
		Source:    o.Name(),
	}, nil
}

// loadDecimals reads decimals() once; failures are retried on the next call.
func (o *ChainlinkOracle) loadDecimals(ctx context.Context) (uint8, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.decLoaded {
		return o.decimals, nil
	}
	out, err := o.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, errors.Errorf("decimals: unexpected type %T", out[0])
	}
	o.decimals, o.decLoaded = d, true
	return d, nil
}

func (o *ChainlinkOracle) call(ctx context.Context, method string) ([]interface{}, error) {
	data, err := aggregatorABI.Pack(method)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	to := o.aggregator
	raw, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	if len(raw) == 0 {
		return nil, errors.Errorf("call %s: no contract code at %s", method, o.aggregator.Hex())
	}
	out, err := aggregatorABI.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	return out, nil
}

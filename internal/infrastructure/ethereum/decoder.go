package ethereum

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/market-intel/internal/domain/rows"
)

// TransferEventSignature is the keccak256 hash of Transfer(address,address,uint256)
var TransferEventSignature = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// Decoder labels raw logs using the verified ABIs of their contracts.
type Decoder struct {
	abis map[string]abi.ABI
}

// NewDecoder parses the given ABI JSON documents, keyed by lowercase
// contract address. Contracts with unparseable ABIs are skipped.
func NewDecoder(abiJSON map[string]string) (*Decoder, []error) {
	d := &Decoder{abis: make(map[string]abi.ABI, len(abiJSON))}
	var errs []error
	for addr, doc := range abiJSON {
		parsed, err := abi.JSON(strings.NewReader(doc))
		if err != nil {
			errs = append(errs, fmt.Errorf("abi for %s: %w", addr, err))
			continue
		}
		d.abis[strings.ToLower(addr)] = parsed
	}
	return d, errs
}

// Known reports whether the decoder has an ABI for the contract.
func (d *Decoder) Known(address string) bool {
	_, ok := d.abis[strings.ToLower(address)]
	return ok
}

// Decode resolves one raw log into a labeled event. The decoded
// arguments are serialized as JSON with addresses lowercased and big
// integers rendered as decimal strings.
func (d *Decoder) Decode(log rows.RawLog) (*rows.LabeledEvent, error) {
	contractABI, ok := d.abis[strings.ToLower(log.Address)]
	if !ok {
		return nil, fmt.Errorf("no abi for contract %s", log.Address)
	}
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log %s:%d has no topics", log.TransactionHash, log.LogIndex)
	}

	topics := make([]common.Hash, len(log.Topics))
	for i, t := range log.Topics {
		topics[i] = common.HexToHash(t)
	}

	event, err := contractABI.EventByID(topics[0])
	if err != nil {
		return nil, fmt.Errorf("unknown event in log %s:%d: %w", log.TransactionHash, log.LogIndex, err)
	}

	args := make(map[string]any)
	data := common.FromHex(log.Data)
	if len(data) > 0 {
		if err := contractABI.UnpackIntoMap(args, event.Name, data); err != nil {
			return nil, fmt.Errorf("unpack %s data: %w", event.Name, err)
		}
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(args, indexed, topics[1:]); err != nil {
			return nil, fmt.Errorf("parse %s topics: %w", event.Name, err)
		}
	}

	encoded, err := json.Marshal(normalizeArgs(args))
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", event.Name, err)
	}

	return &rows.LabeledEvent{
		TransactionHash:    log.TransactionHash,
		LogIndex:           log.LogIndex,
		BlockNumber:        log.BlockNumber,
		ContractAddress:    strings.ToLower(log.Address),
		EventName:          event.Name,
		Args:               string(encoded),
		IngestionTimestamp: time.Now().UTC(),
	}, nil
}

// normalizeArgs converts decoded ABI values into JSON-friendly forms.
func normalizeArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case common.Address:
		return strings.ToLower(t.Hex())
	case common.Hash:
		return t.Hex()
	case *big.Int:
		return t.String()
	case []byte:
		return "0x" + common.Bytes2Hex(t)
	case [32]byte:
		return "0x" + common.Bytes2Hex(t[:])
	default:
		return v
	}
}

// IsTransfer reports whether a raw log is an ERC-20 style Transfer.
func IsTransfer(log rows.RawLog) bool {
	return len(log.Topics) == 3 && common.HexToHash(log.Topics[0]) == TransferEventSignature
}

// ParseTransfer flattens a Transfer log into a transfer row, scaling the
// raw value by the token's decimals.
func ParseTransfer(log rows.RawLog, decimals uint8) (*rows.TokenTransfer, error) {
	if !IsTransfer(log) {
		return nil, fmt.Errorf("log %s:%d is not a Transfer event", log.TransactionHash, log.LogIndex)
	}

	data := common.FromHex(log.Data)
	if len(data) != 32 {
		return nil, fmt.Errorf("invalid data length: expected 32, got %d", len(data))
	}

	from := common.BytesToAddress(common.HexToHash(log.Topics[1]).Bytes())
	to := common.BytesToAddress(common.HexToHash(log.Topics[2]).Bytes())
	raw := new(big.Int).SetBytes(data)

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), scale).Float64()

	return &rows.TokenTransfer{
		TransactionHash:    log.TransactionHash,
		LogIndex:           log.LogIndex,
		BlockNumber:        log.BlockNumber,
		TokenAddress:       strings.ToLower(log.Address),
		FromAddress:        strings.ToLower(from.Hex()),
		ToAddress:          strings.ToLower(to.Hex()),
		Value:              value,
		IngestionTimestamp: time.Now().UTC(),
	}, nil
}

package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// ZeroHash is the previous block hash used by the genesis block.
const ZeroHash = "0"

// progressInterval is the number of attempts between progress events.
var progressInterval uint64 = 1_000_000

// Block represents a payload batched together with the proof of work that
// links it to its parent.
type Block struct {
	Index         uint64   // Position of the block in the chain, genesis is 0.
	PrevBlockHash string   // Hash of the previous block in the chain.
	Payload       []string // Opaque data being recorded.
	TimeStamp     uint64   // Milliseconds since epoch when the block was constructed.
	Nonce         uint64   // Value identified to solve the hash solution.
	Hash          string   // Hash of the fields above once mined.
}

// NewBlock constructs a block that has not been mined yet. The timestamp is
// captured now and never changes after this call.
func NewBlock(index uint64, prevBlockHash string, payload []string, hasher digest.Hasher) Block {
	return newBlock(index, prevBlockHash, payload, uint64(time.Now().UnixMilli()), hasher)
}

func newBlock(index uint64, prevBlockHash string, payload []string, timeStamp uint64, hasher digest.Hasher) Block {
	if hasher == nil {
		hasher = digest.SHA256
	}

	pl := make([]string, len(payload))
	copy(pl, payload)

	b := Block{
		Index:         index,
		PrevBlockHash: prevBlockHash,
		Payload:       pl,
		TimeStamp:     timeStamp,
		Nonce:         0,
	}
	b.Hash = b.HashWith(hasher)

	return b
}

// POW constructs a new block and performs the work to find the nonce that
// solves the puzzle for the specified difficulty. This call blocks until
// a solution is found.
func POW(index uint64, prevBlockHash string, payload []string, difficulty uint, hasher digest.Hasher, obs Observer) Block {
	b := NewBlock(index, prevBlockHash, payload, hasher)
	b.Mine(difficulty, hasher, obs)

	return b
}

// Mine performs the proof of work for the block. There is no way to cancel
// this call, use MineContext if the work needs to be bounded.
func (b *Block) Mine(difficulty uint, hasher digest.Hasher, obs Observer) {
	b.MineContext(context.Background(), difficulty, hasher, obs)
}

// MineContext performs the proof of work for the block. The nonce starts at
// zero and is incremented by one until the hash is solved, so the nonce found
// is always the smallest one. Pointer semantics are being used since a nonce
// is being discovered.
func (b *Block) MineContext(ctx context.Context, difficulty uint, hasher digest.Hasher, obs Observer) error {
	if hasher == nil {
		hasher = digest.SHA256
	}
	obs = orNop(obs)
	prg, _ := obs.(progress)

	b.Nonce = 0

	var attempts uint64
	for {
		attempts++
		if attempts%progressInterval == 0 && prg != nil {
			prg.MiningProgress(b.Index, attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		hash := b.HashWith(hasher)
		if !IsHashSolved(difficulty, hash) {
			b.Nonce++
			continue
		}

		b.Hash = hash
		obs.BlockMined(b.Index, hash, attempts)

		return nil
	}
}

// ComputeHash returns the sha256 hash of the current block fields.
func (b Block) ComputeHash() string {
	return b.HashWith(digest.SHA256)
}

// HashWith returns the hash of the current block fields using the specified
// hasher. The stored Hash field is not part of the calculation.
func (b Block) HashWith(hasher digest.Hasher) string {
	var buf bytes.Buffer
	buf.WriteString(strconv.FormatUint(b.Index, 10))
	buf.WriteString(b.PrevBlockHash)
	buf.WriteString(strconv.FormatUint(b.TimeStamp, 10))
	buf.WriteString(strconv.FormatUint(b.Nonce, 10))
	buf.Write(encodePayload(b.Payload))

	return hasher(buf.Bytes())
}

// IsHashSolved checks the hash to make sure it complies with the POW
// rules. We need to match a difficulty number of leading 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}

// clone returns a copy of the block that doesn't share the payload.
func (b Block) clone() Block {
	pl := make([]string, len(b.Payload))
	copy(pl, b.Payload)
	b.Payload = pl

	return b
}

// encodePayload produces the deterministic JSON form of the payload. HTML
// escaping is turned off so characters like > are hashed as written.
func encodePayload(payload []string) []byte {
	if payload == nil {
		payload = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encoding a slice of strings can't fail.
	enc.Encode(payload)

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// =============================================================================

// BlockData represents what is exported for display and over the network.
// The field order is stable.
type BlockData struct {
	Index         uint64   `json:"index"`
	PrevBlockHash string   `json:"prev_block_hash"`
	Payload       []string `json:"payload"`
	TimeStamp     uint64   `json:"timestamp"`
	Nonce         uint64   `json:"nonce"`
	Hash          string   `json:"hash"`
}

// NewBlockData constructs the value to export.
func NewBlockData(block Block) BlockData {
	b := block.clone()

	return BlockData{
		Index:         b.Index,
		PrevBlockHash: b.PrevBlockHash,
		Payload:       b.Payload,
		TimeStamp:     b.TimeStamp,
		Nonce:         b.Nonce,
		Hash:          b.Hash,
	}
}

// ToBlock converts exported block data back into a block.
func ToBlock(bd BlockData) Block {
	b := Block{
		Index:         bd.Index,
		PrevBlockHash: bd.PrevBlockHash,
		Payload:       bd.Payload,
		TimeStamp:     bd.TimeStamp,
		Nonce:         bd.Nonce,
		Hash:          bd.Hash,
	}

	return b.clone()
}

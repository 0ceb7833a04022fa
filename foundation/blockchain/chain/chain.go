// Package chain implements an append only ledger of blocks secured by a
// proof of work puzzle. Nothing in this package is safe for concurrent use,
// a Chain must be owned by a single goroutine or protected by the caller.
package chain

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// DefaultDifficulty is the number of leading zeros required when no
// difficulty is provided by the application.
const DefaultDifficulty = 4

// GenesisPayload is the payload recorded in the genesis block.
var GenesisPayload = []string{"Genesis Block"}

// Option represents a function that configures a chain.
type Option func(*Chain)

// WithObserver sets the observer notified of mining and validation events.
func WithObserver(obs Observer) Option {
	return func(c *Chain) {
		c.observer = orNop(obs)
	}
}

// WithHasher sets the hash function used to fingerprint blocks.
func WithHasher(hasher digest.Hasher) Option {
	return func(c *Chain) {
		if hasher != nil {
			c.hasher = hasher
		}
	}
}

// Chain represents an ordered sequence of blocks starting with the
// genesis block.
type Chain struct {
	difficulty uint
	hasher     digest.Hasher
	observer   Observer
	blocks     []Block
}

// New constructs a chain and mines the genesis block. The difficulty is
// used for every block mined by this chain, genesis included.
func New(difficulty uint, options ...Option) *Chain {
	c := Chain{
		difficulty: difficulty,
		hasher:     digest.SHA256,
		observer:   nopObserver{},
	}

	for _, option := range options {
		option(&c)
	}

	genesis := POW(0, ZeroHash, GenesisPayload, c.difficulty, c.hasher, c.observer)
	c.blocks = []Block{genesis}

	return &c
}

// Difficulty returns the difficulty used to mine blocks.
func (c *Chain) Difficulty() uint {
	return c.difficulty
}

// Len returns the number of blocks in the chain, genesis included.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// LatestBlock returns a copy of the last block in the chain.
func (c *Chain) LatestBlock() Block {
	return c.blocks[len(c.blocks)-1].clone()
}

// Append mines a new block for the payload and links it to the end of the
// chain. This call blocks until the block is mined.
func (c *Chain) Append(payload []string) Block {
	blk, _ := c.AppendContext(context.Background(), payload)
	return blk
}

// AppendContext mines a new block for the payload and links it to the end
// of the chain. If the context is cancelled before the block is mined, the
// chain is left unmodified.
func (c *Chain) AppendContext(ctx context.Context, payload []string) (Block, error) {
	latest := c.blocks[len(c.blocks)-1]

	nb := NewBlock(uint64(len(c.blocks)), latest.Hash, payload, c.hasher)
	if err := nb.MineContext(ctx, c.difficulty, c.hasher, c.observer); err != nil {
		return Block{}, err
	}

	if err := c.Link(nb); err != nil {
		return Block{}, err
	}

	return nb.clone(), nil
}

// Link adds a block that was mined outside of the chain to the end of the
// chain. The block must sit at the next index, point at the latest block and
// carry a hash that matches its fields and solves the chain difficulty. If
// the chain moved on while the block was being mined, ErrStaleBlock is
// returned and the chain is left unmodified.
func (c *Chain) Link(blk Block) error {
	latest := c.blocks[len(c.blocks)-1]

	if blk.Index != uint64(len(c.blocks)) || blk.PrevBlockHash != latest.Hash {
		return ErrStaleBlock
	}

	if blk.HashWith(c.hasher) != blk.Hash {
		return ErrHashMismatch
	}

	if !IsHashSolved(c.difficulty, blk.Hash) {
		return ErrNotSolved
	}

	c.blocks = append(c.blocks, blk.clone())

	return nil
}

// Validate walks the chain and reports if every block is intact and
// properly linked to its parent.
func (c *Chain) Validate() bool {
	return c.ValidateChain() == nil
}

// ValidateChain walks the chain and returns a ValidationError for the first
// block that fails a check.
func (c *Chain) ValidateChain() error {
	return ValidateBlocks(c.blocks, c.hasher, c.observer)
}

// Blocks returns a copy of the blocks in the chain.
func (c *Chain) Blocks() []Block {
	blocks := make([]Block, len(c.blocks))
	for i, blk := range c.blocks {
		blocks[i] = blk.clone()
	}
	return blocks
}

// Block returns access to the block stored at the specified index. Any
// change made through this pointer is tampering with the chain and will be
// reported by Validate.
func (c *Chain) Block(index uint64) (*Block, error) {
	if index >= uint64(len(c.blocks)) {
		return nil, fmt.Errorf("block %d does not exist, chain length %d", index, len(c.blocks))
	}
	return &c.blocks[index], nil
}

// Export returns the chain in its serializable form.
func (c *Chain) Export() []BlockData {
	bds := make([]BlockData, len(c.blocks))
	for i, blk := range c.blocks {
		bds[i] = NewBlockData(blk)
	}
	return bds
}

// =============================================================================

// ValidateBlocks checks every block after the first one. The hash of each
// block is recalculated from its fields and compared against the stored
// hash, then the stored previous hash is compared against the parent's
// stored hash. The first failure stops the walk.
//
// The difficulty is not checked, a block with a recalculated hash that
// doesn't solve the puzzle will pass.
func ValidateBlocks(blocks []Block, hasher digest.Hasher, obs Observer) error {
	if hasher == nil {
		hasher = digest.SHA256
	}
	obs = orNop(obs)

	for i := 1; i < len(blocks); i++ {
		blk := blocks[i]
		parent := blocks[i-1]

		if blk.HashWith(hasher) != blk.Hash {
			return invalid(obs, uint64(i), ErrHashMismatch)
		}

		if blk.PrevBlockHash != parent.Hash {
			return invalid(obs, uint64(i), ErrLinkageMismatch)
		}
	}

	obs.ChainValidated(true)

	return nil
}

func invalid(obs Observer, index uint64, reason error) error {
	obs.BlockInvalid(index, reason)
	obs.ChainValidated(false)

	return &ValidationError{Index: index, Err: reason}
}

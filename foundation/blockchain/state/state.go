// Package state is the core API for the blockchain and serializes all
// access to the chain for the applications.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// maxDifficulty is the largest difficulty accepted from configuration. The
// chain itself accepts anything, but every extra zero multiplies the mining
// cost by 16.
const maxDifficulty = 8

// ErrNotFound is returned when a block index is outside the chain.
var ErrNotFound = errors.New("block not found")

// EventHandler defines a function that is called when events
// occur in the processing of mining and validating blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Difficulty uint
	Algorithm  string
	EvHandler  EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	algorithm string
	hasher    digest.Hasher
	evHandler EventHandler
	observer  chain.Observer
	chain     *chain.Chain
}

// New constructs a new blockchain for data management. The genesis block
// is mined before New returns.
func New(cfg Config) (*State, error) {
	if cfg.Difficulty > maxDifficulty {
		return nil, fmt.Errorf("difficulty %d is larger than the max of %d", cfg.Difficulty, maxDifficulty)
	}

	hasher, err := digest.Parse(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = digest.AlgSHA256
	}

	ev("state: New: mining genesis: difficulty[%d]: algorithm[%s]", cfg.Difficulty, algorithm)

	obs := chain.EventHandler(ev)

	c := chain.New(cfg.Difficulty,
		chain.WithHasher(hasher),
		chain.WithObserver(obs),
	)

	st := State{
		algorithm: algorithm,
		hasher:    hasher,
		evHandler: ev,
		observer:  obs,
		chain:     c,
	}

	return &st, nil
}

// =============================================================================

// AppendBlock mines a new block for the specified payload and adds it to the
// chain. The mining happens without holding the lock so queries are not
// blocked. If another block was linked while mining, the work is thrown
// away and the block is mined again on top of the new latest block.
func (s *State) AppendBlock(ctx context.Context, payload []string) (chain.BlockData, error) {
	s.evHandler("state: AppendBlock: started: payload[%d]", len(payload))
	defer s.evHandler("state: AppendBlock: completed")

	for {
		s.mu.RLock()
		index := uint64(s.chain.Len())
		prevHash := s.chain.LatestBlock().Hash
		difficulty := s.chain.Difficulty()
		s.mu.RUnlock()

		nb := chain.NewBlock(index, prevHash, payload, s.hasher)
		if err := nb.MineContext(ctx, difficulty, s.hasher, s.observer); err != nil {
			return chain.BlockData{}, fmt.Errorf("mining block: %w", err)
		}

		err := s.linkBlock(nb)
		switch {
		case err == nil:
			return chain.NewBlockData(nb), nil

		case errors.Is(err, chain.ErrStaleBlock):
			s.evHandler("state: AppendBlock: blk[%d]: stale, mining again", nb.Index)
			continue

		default:
			return chain.BlockData{}, fmt.Errorf("linking block: %w", err)
		}
	}
}

// linkBlock adds the mined block to the chain under the write lock.
func (s *State) linkBlock(blk chain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Link(blk)
}

// Validate walks the chain and returns a chain.ValidationError for the
// first block that fails validation.
func (s *State) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.ValidateChain()
}

// Tamper provides access to a stored block under the write lock so the
// function can change its fields. This exists to exercise validation.
func (s *State) Tamper(index uint64, fn func(blk *chain.Block)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blk, err := s.chain.Block(index)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	}

	s.evHandler("state: Tamper: blk[%d]", index)
	fn(blk)

	return nil
}

// =============================================================================

// Status represents a summary of the chain.
type Status struct {
	Length      int    `json:"length"`
	Difficulty  uint   `json:"difficulty"`
	Algorithm   string `json:"algorithm"`
	LatestIndex uint64 `json:"latest_index"`
	LatestHash  string `json:"latest_hash"`
}

// QueryStatus returns a summary of the chain.
func (s *State) QueryStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := s.chain.LatestBlock()

	return Status{
		Length:      s.chain.Len(),
		Difficulty:  s.chain.Difficulty(),
		Algorithm:   s.algorithm,
		LatestIndex: latest.Index,
		LatestHash:  latest.Hash,
	}
}

// QueryBlocks returns the blocks in the range of [from, to]. A to value
// past the end of the chain is clamped to the last block.
func (s *State) QueryBlocks(from uint64, to uint64) []chain.BlockData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bds := s.chain.Export()

	last := uint64(len(bds) - 1)
	if to > last {
		to = last
	}
	if from > to {
		return nil
	}

	return bds[from : to+1]
}

// QueryBlock returns the block at the specified index.
func (s *State) QueryBlock(index uint64) (chain.BlockData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blk, err := s.chain.Block(index)
	if err != nil {
		return chain.BlockData{}, fmt.Errorf("%w: %s", ErrNotFound, err)
	}

	return chain.NewBlockData(*blk), nil
}

// LatestBlock returns the last block in the chain.
func (s *State) LatestBlock() chain.BlockData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return chain.NewBlockData(s.chain.LatestBlock())
}

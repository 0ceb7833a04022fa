package public

import "github.com/ardanlabs/powchain/foundation/blockchain/chain"

// newBlock is what a client sends to append a block.
type newBlock struct {
	Payload []string `json:"payload" validate:"required,max=256,dive,max=4096"`
}

// tamperBlock is what a client sends to change a stored block.
type tamperBlock struct {
	Payload       []string `json:"payload" validate:"omitempty,dive,max=4096"`
	PrevBlockHash string   `json:"prev_block_hash" validate:"omitempty,hexadecimal"`
	Rehash        bool     `json:"rehash"`
}

// validation is the result of walking the chain.
type validation struct {
	Valid  bool    `json:"valid"`
	Index  *uint64 `json:"index,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

type blocks struct {
	Length int               `json:"length"`
	Blocks []chain.BlockData `json:"blocks"`
}

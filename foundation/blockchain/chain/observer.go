package chain

// Observer receives notifications about mining and validation. The chain
// never makes a decision based on an observer, these are output only.
type Observer interface {
	BlockMined(index uint64, hash string, attempts uint64)
	BlockInvalid(index uint64, err error)
	ChainValidated(valid bool)
}

// EventHandler adapts a printf style function into an Observer. This is the
// function signature the applications use to log and broadcast events.
type EventHandler func(v string, args ...any)

// BlockMined implements the Observer interface.
func (ev EventHandler) BlockMined(index uint64, hash string, attempts uint64) {
	ev("chain: mine: blk[%d]: SOLVED: hash[%s]: attempts[%d]", index, hash, attempts)
}

// BlockInvalid implements the Observer interface.
func (ev EventHandler) BlockInvalid(index uint64, err error) {
	ev("chain: validate: blk[%d]: INVALID: %s", index, err)
}

// ChainValidated implements the Observer interface.
func (ev EventHandler) ChainValidated(valid bool) {
	ev("chain: validate: completed: valid[%t]", valid)
}

// progress is used to report long running mining operations when the
// observer also knows how to handle free form events.
type progress interface {
	MiningProgress(index uint64, attempts uint64)
}

// MiningProgress is called every million attempts while mining.
func (ev EventHandler) MiningProgress(index uint64, attempts uint64) {
	ev("chain: mine: blk[%d]: attempts[%d]", index, attempts)
}

// =============================================================================

type nopObserver struct{}

func (nopObserver) BlockMined(uint64, string, uint64) {}
func (nopObserver) BlockInvalid(uint64, error)        {}
func (nopObserver) ChainValidated(bool)               {}

// orNop protects the core from a nil observer.
func orNop(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}

	if ev, ok := obs.(EventHandler); ok && ev == nil {
		return nopObserver{}
	}

	return obs
}

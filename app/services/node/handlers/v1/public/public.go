// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powchain/business/sys/metrics"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case e, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, e.Marshal()); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns a summary of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryStatus(), http.StatusOK)
}

// Append mines a new block with the specified payload and adds it to the
// chain. The mining is cancelled if the client goes away.
func (h Handlers) Append(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("append block", "traceid", web.GetTraceID(ctx), "payload", len(nb.Payload))

	bd, err := h.State.AppendBlock(ctx, nb.Payload)
	if err != nil {
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}
	metrics.AddBlocksMined()

	return web.Respond(ctx, w, bd, http.StatusCreated)
}

// Validate walks the chain and reports the first block that fails.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	metrics.AddValidations()

	err := h.State.Validate()
	if err == nil {
		return web.Respond(ctx, w, validation{Valid: true}, http.StatusOK)
	}

	ve, ok := chain.AsValidationError(err)
	if !ok {
		return err
	}

	resp := validation{
		Valid:  false,
		Index:  &ve.Index,
		Reason: reason(ve.Err),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the blocks in the specified range, or the whole chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := param(r, "from", 0)
	if err != nil {
		return err
	}

	to, err := param(r, "to", math.MaxUint64)
	if err != nil {
		return err
	}

	if from > to {
		return errs.NewTrusted(fmt.Errorf("from %d is greater than to %d", from, to), http.StatusBadRequest)
	}

	bds := h.State.QueryBlocks(from, to)
	if len(bds) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	resp := blocks{
		Length: h.State.QueryStatus().Length,
		Blocks: bds,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Block returns the block at the specified index, or the last block in the
// chain when the index is latest.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if web.Param(r, "index") == "latest" {
		return web.Respond(ctx, w, h.State.LatestBlock(), http.StatusOK)
	}

	index, err := param(r, "index", 0)
	if err != nil {
		return err
	}

	bd, err := h.State.QueryBlock(index)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, bd, http.StatusOK)
}

// Tamper replaces fields of a stored block without mining it again.
// Setting rehash recalculates the stored hash so the block is internally
// consistent, which is how a relinked block is simulated.
func (h Handlers) Tamper(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := param(r, "index", 0)
	if err != nil {
		return err
	}

	var tb tamperBlock
	if err := web.Decode(r, &tb); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if tb.PrevBlockHash != "" && !digest.IsHash(tb.PrevBlockHash) {
		return errs.NewTrusted(fmt.Errorf("prev_block_hash %q is not a hash", tb.PrevBlockHash), http.StatusBadRequest)
	}

	h.Log.Infow("tamper block", "traceid", web.GetTraceID(ctx), "index", index)

	algorithm := h.State.QueryStatus().Algorithm
	hasher, err := digest.Parse(algorithm)
	if err != nil {
		return err
	}

	f := func(blk *chain.Block) {
		if tb.Payload != nil {
			blk.Payload = tb.Payload
		}
		if tb.PrevBlockHash != "" {
			blk.PrevBlockHash = tb.PrevBlockHash
		}
		if tb.Rehash {
			blk.Hash = blk.HashWith(hasher)
		}
	}

	if err := h.State.Tamper(index, f); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	bd, err := h.State.QueryBlock(index)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, bd, http.StatusOK)
}

// =============================================================================

// param reads a numeric route parameter, returning the default value when
// the parameter is not part of the route.
func param(r *http.Request, key string, def uint64) (uint64, error) {
	s := web.Param(r, key)
	if s == "" {
		return def, nil
	}

	if s == "latest" {
		return math.MaxUint64, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid %s %q: %w", key, s, err), http.StatusBadRequest)
	}

	return n, nil
}

// reason maps the validation failure into a stable string for clients.
func reason(err error) string {
	switch {
	case errors.Is(err, chain.ErrHashMismatch):
		return "hash_mismatch"
	case errors.Is(err, chain.ErrLinkageMismatch):
		return "linkage_mismatch"
	}
	return err.Error()
}

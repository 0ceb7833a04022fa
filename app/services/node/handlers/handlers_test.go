package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type validation struct {
	Valid  bool    `json:"valid"`
	Index  *uint64 `json:"index"`
	Reason string  `json:"reason"`
}

func newMux(t *testing.T) http.Handler {
	log, err := logger.New("TEST")
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %v", err)
	}
	t.Cleanup(func() { log.Sync() })

	st, err := state.New(state.Config{Difficulty: 1})
	if err != nil {
		t.Fatalf("Should be able to construct state: %v", err)
	}

	return handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         log,
		State:       st,
		Evts:        events.New(),
		AllowTamper: true,
	})
}

func do(mux http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	return w
}

// =============================================================================

func Test_Ledger(t *testing.T) {
	mux := newMux(t)

	t.Log("Given the need to work with the ledger over http.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen appending blocks.", testID)
		{
			w := do(mux, http.MethodPost, "/v1/blocks/append", `{"payload":["Alice -> Bob: 10"]}`)
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 201 for the response: %d %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 201 for the response.", success, testID)

			var bd chain.BlockData
			if err := json.NewDecoder(w.Body).Decode(&bd); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal the response: %v", failed, testID, err)
			}

			if bd.Index != 1 || len(bd.Payload) != 1 || !strings.HasPrefix(bd.Hash, "0") {
				t.Fatalf("\t%s\tTest %d:\tShould get back the mined block: %+v", failed, testID, bd)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the mined block.", success, testID)

			w = do(mux, http.MethodPost, "/v1/blocks/append", `{"payload":["Bob -> Charlie: 5","Charlie -> Dave: 2"]}`)
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest %d:\tShould be able to append a second block: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to append a second block.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen sending a bad request.", testID)
		{
			w := do(mux, http.MethodPost, "/v1/blocks/append", `{}`)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 400 for a missing payload: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 400 for a missing payload.", success, testID)

			w = do(mux, http.MethodGet, "/v1/blocks/index/99", "")
			if w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 404 for a missing block: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 404 for a missing block.", success, testID)

			w = do(mux, http.MethodGet, "/v1/blocks/list/abc/2", "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 400 for a bad range: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 400 for a bad range.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen listing and validating the chain.", testID)
		{
			w := do(mux, http.MethodGet, "/v1/blocks/list", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for the list: %d", failed, testID, w.Code)
			}

			var list struct {
				Length int               `json:"length"`
				Blocks []chain.BlockData `json:"blocks"`
			}
			if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal the response: %v", failed, testID, err)
			}

			if list.Length != 3 || len(list.Blocks) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould get back 3 blocks: %d", failed, testID, len(list.Blocks))
			}
			t.Logf("\t%s\tTest %d:\tShould get back 3 blocks.", success, testID)

			var v validation
			w = do(mux, http.MethodGet, "/v1/chain/validate", "")
			json.NewDecoder(w.Body).Decode(&v)
			if !v.Valid {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain: %+v", failed, testID, v)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}

		testID = 3
		t.Logf("\tTest %d:\tWhen asking for the latest block.", testID)
		{
			w := do(mux, http.MethodGet, "/v1/blocks/index/latest", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for the latest block: %d", failed, testID, w.Code)
			}

			var bd chain.BlockData
			if err := json.NewDecoder(w.Body).Decode(&bd); err != nil || bd.Index != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back block 2: %+v %v", failed, testID, bd, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back block 2.", success, testID)
		}

		testID = 4
		t.Logf("\tTest %d:\tWhen tampering with a block.", testID)
		{
			w := do(mux, http.MethodPost, "/v1/blocks/tamper/1", `{"payload":["Tampered"]}`)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to tamper with block 1: %d %s", failed, testID, w.Code, w.Body)
			}

			var v validation
			w = do(mux, http.MethodGet, "/v1/chain/validate", "")
			json.NewDecoder(w.Body).Decode(&v)
			if v.Valid || v.Index == nil || *v.Index != 1 || v.Reason != "hash_mismatch" {
				t.Fatalf("\t%s\tTest %d:\tShould report block 1 with a hash mismatch: %+v", failed, testID, v)
			}
			t.Logf("\t%s\tTest %d:\tShould report block 1 with a hash mismatch.", success, testID)
		}
	}
}

func Test_Linkage(t *testing.T) {
	mux := newMux(t)

	do(mux, http.MethodPost, "/v1/blocks/append", `{"payload":["a"]}`)
	do(mux, http.MethodPost, "/v1/blocks/append", `{"payload":["b"]}`)

	const unrelated = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	w := do(mux, http.MethodPost, "/v1/blocks/tamper/2", `{"prev_block_hash":"`+unrelated+`","rehash":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be able to relink block 2: %d %s", w.Code, w.Body)
	}

	var v validation
	w = do(mux, http.MethodGet, "/v1/chain/validate", "")
	json.NewDecoder(w.Body).Decode(&v)
	if v.Valid || v.Index == nil || *v.Index != 2 || v.Reason != "linkage_mismatch" {
		t.Fatalf("Should report block 2 with a linkage mismatch: %+v", v)
	}
}

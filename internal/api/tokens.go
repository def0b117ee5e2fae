package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"StakingLedger/internal/token"
)

// TokenHandlers exposes the in-memory stake and reward tokens.
type TokenHandlers struct {
	tokens  map[string]*token.MemToken
	custody common.Address
	faucet  bool
}

// NewTokenHandlers serves stake and reward under /{name}. Approvals default to custody as spender.
func NewTokenHandlers(stake, reward *token.MemToken, custody common.Address, faucet bool) *TokenHandlers {
	return &TokenHandlers{
		tokens:  map[string]*token.MemToken{"stake": stake, "reward": reward},
		custody: custody,
		faucet:  faucet,
	}
}

func (t *TokenHandlers) token(req *http.Request) (string, *token.MemToken, error) {
	name := mux.Vars(req)["name"]
	tok, ok := t.tokens[name]
	if !ok {
		return "", nil, NotFound(errors.Errorf("unknown token %q", name))
	}
	return name, tok, nil
}

func (t *TokenHandlers) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	_, tok, err := t.token(req)
	if err != nil {
		return err
	}
	addr, err := parseAddress(mux.Vars(req)["address"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "address"))
	}
	return WriteJSON(w, &Balance{Token: tok.Symbol(), Address: addr.Hex(), Balance: tok.BalanceOf(addr).Dec()})
}

func (t *TokenHandlers) handleApprove(w http.ResponseWriter, req *http.Request) error {
	_, tok, err := t.token(req)
	if err != nil {
		return err
	}
	body, err := parseMutation(req, true)
	if err != nil {
		return err
	}
	owner, _ := parseAddress(body.User)
	amount, _ := parseAmount(body.Amount)
	spender := t.custody
	if body.Spender != "" {
		if spender, err = parseAddress(body.Spender); err != nil {
			return BadRequest(errors.WithMessage(err, "spender"))
		}
	}
	tok.Approve(owner, spender, amount)
	return WriteJSON(w, map[string]string{
		"token":     tok.Symbol(),
		"owner":     owner.Hex(),
		"spender":   spender.Hex(),
		"allowance": tok.Allowance(owner, spender).Dec(),
	})
}

func (t *TokenHandlers) handleMint(w http.ResponseWriter, req *http.Request) error {
	_, tok, err := t.token(req)
	if err != nil {
		return err
	}
	body, err := parseMutation(req, true)
	if err != nil {
		return err
	}
	to, _ := parseAddress(body.User)
	amount, _ := parseAmount(body.Amount)
	if err := tok.Mint(to, amount); err != nil {
		return BadRequest(err)
	}
	return WriteJSON(w, &Balance{Token: tok.Symbol(), Address: to.Hex(), Balance: tok.BalanceOf(to).Dec()})
}

func (t *TokenHandlers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{name}/balances/{address}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{name}/approve").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(t.handleApprove))
	if t.faucet {
		sub.Path("/{name}/mint").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(t.handleMint))
	}
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"StakingLedger/internal/logger"
	"StakingLedger/internal/metrics"
	"StakingLedger/internal/model"
	"StakingLedger/internal/recorder"
	"StakingLedger/internal/staking"
)

// PoolHandlers serves ledger operations and reads.
type PoolHandlers struct {
	ledger  *staking.Ledger
	rec     recorder.Recorder
	metrics *metrics.Metrics
}

func NewPoolHandlers(ledger *staking.Ledger, rec recorder.Recorder, m *metrics.Metrics) *PoolHandlers {
	return &PoolHandlers{ledger: ledger, rec: rec, metrics: m}
}

// committed journals a successful mutation and refreshes the pool gauges.
// Journal failures are logged; the ledger change already happened.
func (p *PoolHandlers) committed(op string, r *model.Receipt) {
	if err := p.rec.RecordReceipt(r); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"op": op, "seq": r.Seq}).Error("record receipt")
	}
	p.metrics.ObserveOperation(op)
	pool := p.ledger.Pool()
	p.metrics.ObservePool(&pool)
}

func (p *PoolHandlers) mutate(w http.ResponseWriter, op string, do func() (*model.Receipt, error)) error {
	r, err := do()
	if err != nil {
		p.metrics.ObserveFailure(op, staking.Code(err))
		return err
	}
	p.committed(op, r)
	return WriteJSON(w, convertReceipt(r))
}

// parseMutation reads the body and the user address; withAmount also requires an amount.
func parseMutation(req *http.Request, withAmount bool) (*AmountRequest, error) {
	var body AmountRequest
	if err := ParseJSON(req.Body, &body); err != nil {
		return nil, BadRequest(errors.WithMessage(err, "body"))
	}
	if _, err := parseAddress(body.User); err != nil {
		return nil, BadRequest(errors.WithMessage(err, "user"))
	}
	if withAmount {
		if _, err := parseAmount(body.Amount); err != nil {
			return nil, BadRequest(errors.WithMessage(err, "amount"))
		}
	}
	return &body, nil
}

func (p *PoolHandlers) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	body, err := parseMutation(req, true)
	if err != nil {
		return err
	}
	user, _ := parseAddress(body.User)
	amount, _ := parseAmount(body.Amount)
	return p.mutate(w, "deposit", func() (*model.Receipt, error) { return p.ledger.Deposit(user, amount) })
}

func (p *PoolHandlers) handleClaim(w http.ResponseWriter, req *http.Request) error {
	body, err := parseMutation(req, false)
	if err != nil {
		return err
	}
	user, _ := parseAddress(body.User)
	return p.mutate(w, "claim", func() (*model.Receipt, error) { return p.ledger.Claim(user) })
}

func (p *PoolHandlers) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	body, err := parseMutation(req, true)
	if err != nil {
		return err
	}
	user, _ := parseAddress(body.User)
	amount, _ := parseAmount(body.Amount)
	return p.mutate(w, "withdraw", func() (*model.Receipt, error) { return p.ledger.Withdraw(user, amount) })
}

func (p *PoolHandlers) handleFund(w http.ResponseWriter, req *http.Request) error {
	body, err := parseMutation(req, true)
	if err != nil {
		return err
	}
	from, _ := parseAddress(body.User)
	amount, _ := parseAmount(body.Amount)
	return p.mutate(w, "fund", func() (*model.Receipt, error) { return p.ledger.FundRewards(from, amount) })
}

func (p *PoolHandlers) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	pending, err := p.ledger.TotalPending()
	if err != nil {
		return err
	}
	pool := p.ledger.Pool()
	return WriteJSON(w, convertPool(&pool, pending, p.ledger.Now()))
}

func (p *PoolHandlers) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(mux.Vars(req)["address"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "address"))
	}
	pos, err := p.ledger.Position(addr)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertUser(addr, &pos))
}

func (p *PoolHandlers) handleQuote(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	amount, err := parseAmount(q.Get("amount"))
	if err != nil {
		return BadRequest(errors.WithMessage(err, "amount"))
	}
	seconds, err := strconv.ParseInt(q.Get("seconds"), 10, 64)
	if err != nil || seconds < 0 {
		return BadRequest(errors.Errorf("seconds: invalid value %q", q.Get("seconds")))
	}
	proj, err := p.ledger.Quote(amount, seconds)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertQuote(amount, &proj))
}

func (p *PoolHandlers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(p.handleGetPool))
	sub.Path("/quote").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(p.handleQuote))
	sub.Path("/users/{address}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(p.handleGetUser))
	sub.Path("/deposit").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(p.handleDeposit))
	sub.Path("/claim").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(p.handleClaim))
	sub.Path("/withdraw").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(p.handleWithdraw))
	sub.Path("/fund").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(p.handleFund))
}

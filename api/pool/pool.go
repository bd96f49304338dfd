// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool exposes the delegation engine over HTTP.
package pool

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakepool/stakepool/api/utils"
	"github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/stake"
)

// Attacher credits the pool's host account with the deposit attached to a
// request before the ledger operation runs, and refunds it when the
// operation is rejected. A failed call must leave no trace of its deposit,
// otherwise the next reward pass would read the stranded value as reward.
type Attacher interface {
	Attach(amount *big.Int)
	Detach(amount *big.Int)
}

type Pool struct {
	engine   *pool.Pool
	attacher Attacher
}

func New(engine *pool.Pool, attacher Attacher) *Pool {
	return &Pool{
		engine,
		attacher,
	}
}

func (p *Pool) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info, err := p.engine.Info()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, buildJSONPoolInfo(info))
}

func (p *Pool) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := stake.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	info, err := p.engine.Account(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, buildJSONAccount(info))
}

func (p *Pool) handleListAccounts(w http.ResponseWriter, req *http.Request) error {
	var cursor *stake.Address
	if c := req.URL.Query().Get("cursor"); c != "" {
		addr, err := stake.ParseAddress(c)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "cursor"))
		}
		cursor = &addr
	}
	limit := 0
	if l := req.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return utils.BadRequest(errors.New("limit: should be a non-negative integer"))
		}
		limit = n
	}

	infos, err := p.engine.Accounts(cursor, limit)
	if err != nil {
		return err
	}
	list := &JSONAccountList{Accounts: make([]*JSONAccount, 0, len(infos))}
	for _, info := range infos {
		list.Accounts = append(list.Accounts, buildJSONAccount(info))
	}
	if limit > 0 && len(infos) == limit {
		list.Next = infos[len(infos)-1].Address.String()
	}
	return utils.WriteJSON(w, list)
}

func (p *Pool) handleDeposit(andStake bool) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var op Operation
		if err := utils.ParseJSON(req.Body, &op); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		caller, err := stake.ParseAddress(op.Caller)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "caller"))
		}
		amount, err := op.amount()
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "amount"))
		}
		if amount == nil {
			return utils.BadRequest(errors.New("amount: required"))
		}
		if amount.Sign() <= 0 {
			return utils.BadRequest(pool.ErrAmountNotPositive)
		}

		p.attacher.Attach(amount)
		if andStake {
			err = p.engine.DepositAndStake(caller, amount)
		} else {
			err = p.engine.Deposit(caller, amount)
		}
		if err != nil {
			// the engine committed nothing, so the attached value goes
			// back too
			p.attacher.Detach(amount)
			return convertError(err)
		}
		return utils.WriteJSON(w, utils.M{"deposited": amount.String()})
	}
}

// handleOperation serves stake, unstake and withdraw, where a missing
// amount means "all".
func (p *Pool) handleOperation(
	some func(stake.Address, *big.Int) error,
	all func(stake.Address) error,
) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var op Operation
		if err := utils.ParseJSON(req.Body, &op); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		caller, err := stake.ParseAddress(op.Caller)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "caller"))
		}
		amount, err := op.amount()
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "amount"))
		}

		if amount == nil {
			err = all(caller)
		} else {
			err = some(caller, amount)
		}
		if err != nil {
			return convertError(err)
		}
		return utils.WriteJSON(w, utils.M{"ok": true})
	}
}

func (p *Pool) handlePing(w http.ResponseWriter, _ *http.Request) error {
	if err := p.engine.Ping(); err != nil {
		return err
	}
	info, err := p.engine.Info()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, buildJSONPoolInfo(info))
}

func (p *Pool) handleUpdateStakingKey(w http.ResponseWriter, req *http.Request) error {
	var body KeyUpdate
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := stake.ParseAddress(body.Caller)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "caller"))
	}
	key, err := stake.ParsePublicKey(body.StakePublicKey)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "stakePublicKey"))
	}
	if err := p.engine.UpdateStakingKey(caller, key); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pool) handleUpdateRewardFee(w http.ResponseWriter, req *http.Request) error {
	var body FeeUpdate
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := stake.ParseAddress(body.Caller)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "caller"))
	}
	fee := pool.Fraction{Numerator: body.FeeNumerator, Denominator: body.FeeDenominator}
	if err := p.engine.UpdateRewardFeeFraction(caller, fee); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pool) handlePause(pause bool) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body OwnerCall
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		caller, err := stake.ParseAddress(body.Caller)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "caller"))
		}
		if pause {
			err = p.engine.PauseStaking(caller)
		} else {
			err = p.engine.ResumeStaking(caller)
		}
		if err != nil {
			return convertError(err)
		}
		return utils.WriteJSON(w, utils.M{"paused": pause})
	}
}

func (p *Pool) handleVote(w http.ResponseWriter, req *http.Request) error {
	var body VoteCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := stake.ParseAddress(body.Caller)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "caller"))
	}
	if err := p.engine.Vote(caller, body.IsVote); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

// convertError maps engine errors onto http statuses: authorization failures
// are forbidden, validation failures are bad requests, the rest are internal.
func convertError(err error) error {
	switch {
	case errors.Is(err, pool.ErrUnauthorized):
		return utils.Forbidden(err)
	case errors.Is(err, pool.ErrAmountNotPositive),
		errors.Is(err, pool.ErrNotEnoughUnstaked),
		errors.Is(err, pool.ErrNotEnoughStaked),
		errors.Is(err, pool.ErrStakeTooSmall),
		errors.Is(err, pool.ErrWithdrawLocked),
		errors.Is(err, pool.ErrAlreadyPaused),
		errors.Is(err, pool.ErrNotPaused),
		errors.Is(err, pool.ErrStakingPaused),
		errors.Is(err, pool.ErrNoVoter):
		return utils.BadRequest(err)
	default:
		return err
	}
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("pool_get_info").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetInfo))
	sub.Path("/accounts").
		Methods(http.MethodGet).
		Name("pool_list_accounts").
		HandlerFunc(utils.WrapHandlerFunc(p.handleListAccounts))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("pool_get_account").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
	sub.Path("/deposits").
		Methods(http.MethodPost).
		Name("pool_deposit").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDeposit(false)))
	sub.Path("/deposit-and-stakes").
		Methods(http.MethodPost).
		Name("pool_deposit_and_stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDeposit(true)))
	sub.Path("/stakes").
		Methods(http.MethodPost).
		Name("pool_stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleOperation(p.engine.Stake, p.engine.StakeAll)))
	sub.Path("/unstakes").
		Methods(http.MethodPost).
		Name("pool_unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleOperation(p.engine.Unstake, p.engine.UnstakeAll)))
	sub.Path("/withdrawals").
		Methods(http.MethodPost).
		Name("pool_withdraw").
		HandlerFunc(utils.WrapHandlerFunc(p.handleOperation(p.engine.Withdraw, p.engine.WithdrawAll)))
	sub.Path("/pings").
		Methods(http.MethodPost).
		Name("pool_ping").
		HandlerFunc(utils.WrapHandlerFunc(p.handlePing))
	sub.Path("/owner/staking-key").
		Methods(http.MethodPost).
		Name("pool_update_staking_key").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUpdateStakingKey))
	sub.Path("/owner/reward-fee").
		Methods(http.MethodPost).
		Name("pool_update_reward_fee").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUpdateRewardFee))
	sub.Path("/owner/pauses").
		Methods(http.MethodPost).
		Name("pool_pause_staking").
		HandlerFunc(utils.WrapHandlerFunc(p.handlePause(true)))
	sub.Path("/owner/resumes").
		Methods(http.MethodPost).
		Name("pool_resume_staking").
		HandlerFunc(utils.WrapHandlerFunc(p.handlePause(false)))
	sub.Path("/owner/votes").
		Methods(http.MethodPost).
		Name("pool_vote").
		HandlerFunc(utils.WrapHandlerFunc(p.handleVote))
}

// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginepool "github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/solo"
	"github.com/stakepool/stakepool/stake"
	"github.com/stakepool/stakepool/test/testpool"
)

var ts *httptest.Server

func initServer(t *testing.T, fee enginepool.Fraction) *testpool.Pool {
	return initServerOpts(t, fee, solo.Options{})
}

func initServerOpts(t *testing.T, fee enginepool.Fraction, opts solo.Options) *testpool.Pool {
	tp, err := testpool.New(fee, opts)
	require.NoError(t, err)
	t.Cleanup(tp.Close)

	router := mux.NewRouter()
	New(tp.Engine, tp.Host).Mount(router, "/pool")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return tp
}

// waitForLocked polls the host until the asynchronous stake settlement
// reaches want.
func waitForLocked(t *testing.T, host *solo.Solo, want *big.Int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if host.LockedBalance().Cmp(want) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("locked balance stuck at %s, want %s", host.LockedBalance(), want)
}

func httpGet(t *testing.T, path string) (int, []byte) {
	t.Helper()
	res, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func httpPost(t *testing.T, path string, obj interface{}) (int, []byte) {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestGetInfo(t *testing.T) {
	initServer(t, enginepool.Fraction{Numerator: 10, Denominator: 100})

	status, body := httpGet(t, "/pool")
	require.Equal(t, http.StatusOK, status)

	var info JSONPoolInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, testpool.DefaultOwner.String(), info.Owner)
	assert.Equal(t, uint64(10), info.FeeNumerator)
	assert.Equal(t, testpool.DefaultGuaranteeFund.String(), info.TotalStakedBalance)
	assert.False(t, info.Paused)
}

func TestDepositStakeWithdrawFlow(t *testing.T) {
	initServer(t, enginepool.Fraction{Denominator: 1})
	alice := stake.BytesToAddress([]byte("alice")).String()

	amount := "500000"
	status, _ := httpPost(t, "/pool/deposits", Operation{Caller: alice, Amount: &amount})
	require.Equal(t, http.StatusOK, status)

	status, body := httpGet(t, "/pool/accounts/"+alice)
	require.Equal(t, http.StatusOK, status)
	var acc JSONAccount
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, "500000", acc.UnstakedBalance)
	assert.True(t, acc.CanWithdraw)

	// stake it all (no amount)
	status, _ = httpPost(t, "/pool/stakes", Operation{Caller: alice})
	require.Equal(t, http.StatusOK, status)

	status, body = httpGet(t, "/pool/accounts/"+alice)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, "0", acc.UnstakedBalance)
	assert.Equal(t, "500000", acc.StakedBalance)

	// unstaking locks the balance behind the delay gate
	status, _ = httpPost(t, "/pool/unstakes", Operation{Caller: alice})
	require.Equal(t, http.StatusOK, status)
	status, _ = httpPost(t, "/pool/withdrawals", Operation{Caller: alice})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDepositValidation(t *testing.T) {
	initServer(t, enginepool.Fraction{Denominator: 1})
	alice := stake.BytesToAddress([]byte("alice")).String()

	status, _ := httpPost(t, "/pool/deposits", Operation{Caller: alice})
	assert.Equal(t, http.StatusBadRequest, status, "amount required")

	bad := "zero point five"
	status, _ = httpPost(t, "/pool/deposits", Operation{Caller: alice, Amount: &bad})
	assert.Equal(t, http.StatusBadRequest, status)

	zero := "0"
	status, _ = httpPost(t, "/pool/deposits", Operation{Caller: alice, Amount: &zero})
	assert.Equal(t, http.StatusBadRequest, status)

	amount := "100"
	status, _ = httpPost(t, "/pool/deposits", Operation{Caller: "garbage", Amount: &amount})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRejectedDepositDetaches(t *testing.T) {
	tp := initServerOpts(t, enginepool.Fraction{Denominator: 1}, solo.Options{
		RewardNumerator:   1,
		RewardDenominator: 1,
	})
	alice := stake.BytesToAddress([]byte("alice")).String()
	bob := stake.BytesToAddress([]byte("bob")).String()

	amount := "1000000"
	status, _ := httpPost(t, "/pool/deposit-and-stakes", Operation{Caller: alice, Amount: &amount})
	require.Equal(t, http.StatusOK, status)
	waitForLocked(t, tp.Host, big.NewInt(2_000_000))

	// 100% reward per epoch takes the share price to 2
	tp.Host.AdvanceEpoch()
	status, _ = httpPost(t, "/pool/pings", struct{}{})
	require.Equal(t, http.StatusOK, status)
	waitForLocked(t, tp.Host, big.NewInt(4_000_000))

	liquidBefore := tp.Host.AccountBalance()

	// one unit buys no whole share at price 2; the rejected
	// deposit must leave the host balance untouched
	dust := "1"
	status, _ = httpPost(t, "/pool/deposit-and-stakes", Operation{Caller: bob, Amount: &dust})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, liquidBefore, tp.Host.AccountBalance())
}

func TestOwnerEndpoints(t *testing.T) {
	initServer(t, enginepool.Fraction{Denominator: 1})
	alice := stake.BytesToAddress([]byte("alice")).String()
	owner := testpool.DefaultOwner.String()

	status, _ := httpPost(t, "/pool/owner/pauses", OwnerCall{Caller: alice})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = httpPost(t, "/pool/owner/pauses", OwnerCall{Caller: owner})
	require.Equal(t, http.StatusOK, status)

	// pausing twice is a client error
	status, _ = httpPost(t, "/pool/owner/pauses", OwnerCall{Caller: owner})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = httpPost(t, "/pool/owner/resumes", OwnerCall{Caller: owner})
	require.Equal(t, http.StatusOK, status)

	status, _ = httpPost(t, "/pool/owner/reward-fee", FeeUpdate{
		Caller:         owner,
		FeeNumerator:   5,
		FeeDenominator: 100,
	})
	require.Equal(t, http.StatusOK, status)

	status, body := httpGet(t, "/pool")
	require.Equal(t, http.StatusOK, status)
	var info JSONPoolInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, uint64(5), info.FeeNumerator)

	status, _ = httpPost(t, "/pool/owner/staking-key", KeyUpdate{
		Caller:         owner,
		StakePublicKey: stake.PublicKey{0x99}.String(),
	})
	require.Equal(t, http.StatusOK, status)
}

func TestListAccounts(t *testing.T) {
	tp := initServer(t, enginepool.Fraction{Denominator: 1})

	for _, name := range []string{"a1", "a2", "a3"} {
		require.NoError(t, tp.Deposit(stake.BytesToAddress([]byte(name)), big.NewInt(1_000)))
	}

	status, body := httpGet(t, "/pool/accounts?limit=2")
	require.Equal(t, http.StatusOK, status)
	var list JSONAccountList
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Accounts, 2)
	require.NotEmpty(t, list.Next)

	status, body = httpGet(t, "/pool/accounts?limit=2&cursor="+list.Next)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Accounts, 1)

	status, _ = httpGet(t, "/pool/accounts?limit=-1")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = httpGet(t, "/pool/accounts?cursor=nope")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPing(t *testing.T) {
	tp := initServer(t, enginepool.Fraction{Denominator: 1})

	tp.Host.AdvanceEpoch()
	status, body := httpPost(t, "/pool/pings", struct{}{})
	require.Equal(t, http.StatusOK, status)

	var info JSONPoolInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, uint64(1), info.LastEpochHeight)
}

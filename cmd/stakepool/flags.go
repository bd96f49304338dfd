// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to the genesis config (YAML)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger database",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep the ledger in memory, discarded on exit",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "serve prometheus metrics at /metrics",
	}
	epochIntervalFlag = cli.DurationFlag{
		Name:  "epoch-interval",
		Value: 10 * time.Second,
		Usage: "wall-clock length of one simulated epoch",
	}
	rewardNumeratorFlag = cli.Uint64Flag{
		Name:  "reward-numerator",
		Value: 1,
		Usage: "per-epoch reward numerator, applied to the locked balance",
	}
	rewardDenominatorFlag = cli.Uint64Flag{
		Name:  "reward-denominator",
		Value: 10_000,
		Usage: "per-epoch reward denominator",
	}
	minStakeFlag = cli.StringFlag{
		Name:  "min-stake",
		Value: "0",
		Usage: "simulated network minimum stake, positive stake requests below it fail",
	}
)

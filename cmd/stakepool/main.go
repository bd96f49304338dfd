// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakepool/stakepool/api"
	"github.com/stakepool/stakepool/genesis"
	"github.com/stakepool/stakepool/log"
	"github.com/stakepool/stakepool/metrics"
	"github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/solo"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakePool",
		Usage:     "Pooled delegation daemon with a simulated validator host",
		Copyright: "2026 The StakePool developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			memFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
			epochIntervalFlag,
			rewardNumeratorFlag,
			rewardDenominatorFlag,
			minStakeFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	genesisPath := ctx.String(genesisFlag.Name)
	if genesisPath == "" {
		return errors.New("no genesis config, set --" + genesisFlag.Name)
	}
	gene, err := genesis.LoadFile(genesisPath)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); mainDB.Close() }()

	if err := genesis.Build(mainDB, gene); err != nil {
		if !errors.Is(err, pool.ErrAlreadyInitialized) {
			return err
		}
		logger.Debug("ledger already seeded")
	}

	minStake, ok := new(big.Int).SetString(ctx.String(minStakeFlag.Name), 10)
	if !ok {
		return errors.Errorf("invalid --%s value", minStakeFlag.Name)
	}
	host := solo.New(solo.Options{
		EpochInterval:     ctx.Duration(epochIntervalFlag.Name),
		RewardNumerator:   ctx.Uint64(rewardNumeratorFlag.Name),
		RewardDenominator: ctx.Uint64(rewardDenominatorFlag.Name),
		MinStake:          minStake,
	})

	engine, err := pool.New(mainDB, host.Host())
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing pool engine..."); engine.Close() }()

	// the simulated host account starts out holding whatever the ledger
	// checkpoint expects, so the first epoch does not misread a delta
	info, err := engine.Info()
	if err != nil {
		return err
	}
	host.Attach(info.LastTotalBalance)

	srv, apiURL, err := startAPIServer(
		ctx.String(apiAddrFlag.Name),
		api.New(engine, host, ctx.String(apiCorsFlag.Name)),
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srv.Shutdown(context.Background()) }()

	printStartupMessage(ctx, genesisPath, apiURL)

	host.Run(handleExitSignal(), engine)
	return nil
}

func printStartupMessage(ctx *cli.Context, genesisPath, apiURL string) {
	fmt.Printf(`Starting %v
    Version     %v
    Genesis     %v
    Data dir    %v
    API portal  %v
`,
		"StakePool",
		fullVersion(),
		genesisPath,
		ctx.String(dataDirFlag.Name),
		apiURL)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakedcall/api"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/lvldb"
	"github.com/vechain/stakedcall/metrics"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/tx"
)

var (
	version   string
	gitCommit string
	gitTag    string
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
		Name:      "StakedCall",
		Usage:     "Node of a call option written on a staked position",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			pprofFlag,
			enableMetricsFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: soloAction,
		Commands: []cli.Command{
			{
				Name:      "sign",
				Usage:     "sign a call of a builtin contract and print the raw tx",
				ArgsUsage: "[method arguments...]",
				Flags: []cli.Flag{
					genesisFlag,
					keyFlag,
					contractFlag,
					methodFlag,
					valueFlag,
					nonceFlag,
				},
				Action: signAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
		defer func() { logger.Info("closing main database..."); mainDB.Close() }()
		if logDB, err = openLogDB(instanceDir); err != nil {
			return err
		}
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return errors.Wrap(err, "open main database")
		}
		defer mainDB.Close()
		if logDB, err = logdb.NewMem(); err != nil {
			return errors.Wrap(err, "open log database")
		}
		defer logDB.Close()
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	n, err := node.New(mainDB, logDB, gene, nil)
	if err != nil {
		return err
	}
	defer n.Close()

	reqLogger := &atomic.Bool{}
	reqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler, closeSubs := api.New(n, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      reqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
	})

	listener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", ctx.String(apiAddrFlag.Name))
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	printStartupMessage(gene, n, instanceDir, "http://"+listener.Addr().String()+"/")

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		n.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("stopping API server...")
		closeSubs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func signAction(ctx *cli.Context) error {
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(ctx.String(keyFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "key")
	}
	clause, err := buildClause(ctx.String(contractFlag.Name), ctx.String(methodFlag.Name), ctx.String(valueFlag.Name), ctx.Args())
	if err != nil {
		return err
	}
	nonce := ctx.Uint64(nonceFlag.Name)
	if nonce == 0 {
		nonce = uint64(time.Now().UnixNano())
	}

	trx, err := tx.Sign(tx.NewBuilder().ChainTag(gene.ChainTag()).Nonce(nonce).Clause(clause).Build(), key)
	if err != nil {
		return err
	}
	raw, err := rlp.EncodeToBytes(trx)
	if err != nil {
		return err
	}
	origin, _ := trx.Origin()
	fmt.Fprintf(os.Stderr, "tx %v from %v\n", trx.ID(), origin)
	fmt.Println(hexutil.Encode(raw))
	return nil
}

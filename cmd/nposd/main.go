// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/api"
	"github.com/vechain/npos/api/admin"
	"github.com/vechain/npos/api/admin/health"
	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/session"
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
		Name:      "nposd",
		Usage:     "Nominated proof of stake staking node",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			memDBFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiSlowQueriesFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			enableAdminFlag,
			adminAddrFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			logDirFlag,
			logMaxSizeFlag,
			logMaxFilesFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "inspect",
				Usage: "print the staking state of a data dir",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					stashFlag,
					jsonOutFlag,
					verbosityFlag,
				},
				Action: inspectAction,
			},
			{
				Name:  "simulate",
				Usage: "run sessions in memory as fast as possible and print the era history",
				Flags: []cli.Flag{
					configFlag,
					sessionsFlag,
					jsonOutFlag,
					verbosityFlag,
				},
				Action: simulateAction,
			},
			{
				Name:  "export-snapshot",
				Usage: "write the bounded election snapshot of a data dir, snappy compressed",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					outFlag,
					verbosityFlag,
				},
				Action: exportSnapshotAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, closeLogs := initLogger(ctx)
	defer closeLogs()
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "load config")
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	var (
		db      = openMainDB(ctx)
		dataDir = "Memory"
	)
	if !ctx.Bool(memDBFlag.Name) {
		dataDir = ctx.String(dataDirFlag.Name)
	}
	defer func() { logger.Info("closing main database..."); db.Close() }()

	n := node.New(db, cfg.nodeOptions())
	if err := n.InitGenesis(cfg.forcing(), cfg.genesisStakers(), uint64(time.Now().UnixMilli())); err != nil {
		return errors.WithMessage(err, "init genesis")
	}

	reqLogger := &atomic.Bool{}
	reqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	opts := api.Options{
		AllowedOrigins:   ctx.String(apiCorsFlag.Name),
		EnableMetrics:    ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:  reqLogger,
		SlowQueriesLimit: time.Duration(ctx.Uint64(apiSlowQueriesFlag.Name)) * time.Millisecond,
		PprofOn:          ctx.Bool(pprofFlag.Name),
	}
	handler, closeSubs := api.New(api.Backend{
		Staking: func() *staking.Staking { return n.StakingView() },
		Session: func() *session.Session { return n.SessionView() },
		Events:  n.Feed(),
	}, opts)

	apiURL, srv, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	servers := []*http.Server{srv}
	if ctx.Bool(enableAdminFlag.Name) {
		h := health.New(func() (uint64, uint64, bool, error) {
			head, found, err := n.Head()
			return head.Number, head.Timestamp, found, err
		}, n.Options().BlockInterval)
		adminURL, adminSrv, err := startAPIServer(ctx.String(adminAddrFlag.Name), admin.New(logLevel, reqLogger, h))
		if err != nil {
			return err
		}
		logger.Info("admin server started", "url", adminURL)
		servers = append(servers, adminSrv)
	}
	printStartupMessage(n, dataDir, apiURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		return n.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("stopping API server...")
		closeSubs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	})
	return group.Wait()
}

// levelOf returns the level of the configured verbosity.
func levelOf(ctx *cli.Context) slog.Level {
	return log.LevelFromVerbosity(ctx.Int(verbosityFlag.Name))
}

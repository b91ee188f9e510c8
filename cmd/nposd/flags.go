// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML configuration (the built in dev configuration is used if not set)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the staking database",
	}
	memDBFlag = cli.BoolFlag{
		Name:  "mem-db",
		Usage: "keep the staking state in memory, nothing is persisted",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the database cache",
		Value: 512,
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiSlowQueriesFlag = cli.Uint64Flag{
		Name:  "api-slow-queries",
		Value: 0,
		Usage: "log API requests slower than this many milliseconds (0 disables)",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection, served at /metrics",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	logDirFlag = cli.StringFlag{
		Name:  "log-dir",
		Usage: "write JSON logs into rotating files under this directory instead of stderr",
	}
	logMaxSizeFlag = cli.IntFlag{
		Name:  "log-max-size",
		Value: 100,
		Usage: "size in MB of each log file",
	}
	logMaxFilesFlag = cli.IntFlag{
		Name:  "log-max-files",
		Value: 10,
		Usage: "number of log files to keep (0 keeps all)",
	}

	// inspect
	stashFlag = cli.StringFlag{
		Name:  "stash",
		Usage: "stash to show the staking details of",
	}
	jsonOutFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print JSON instead of a Go value dump",
	}

	// simulate
	sessionsFlag = cli.IntFlag{
		Name:  "sessions",
		Value: 30,
		Usage: "number of sessions to simulate",
	}

	// export-snapshot
	outFlag = cli.StringFlag{
		Name:  "out",
		Value: "snapshot.bin",
		Usage: "file the compressed election snapshot is written to",
	}
)

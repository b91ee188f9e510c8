// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/log/rotatewriter"
	"github.com/vechain/npos/lvldb"
)

func fatal(args ...any) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

// initLogger installs the root handler and returns its level, which the admin endpoint may change.
// With a log dir set, logs are written as JSON into rotating files; the returned func closes them.
func initLogger(ctx *cli.Context) (*slog.LevelVar, func()) {
	level := new(slog.LevelVar)
	level.Set(levelOf(ctx))

	var (
		handler slog.Handler
		closer  = func() {}
	)
	if dir := ctx.String(logDirFlag.Name); dir != "" {
		w, err := rotatewriter.New(dir, "nposd", int64(ctx.Int(logMaxSizeFlag.Name))*1024*1024, ctx.Int(logMaxFilesFlag.Name))
		if err != nil {
			fatal("open log dir:", err)
		}
		handler = log.JSONHandler(w, level)
		closer = func() { w.Close() }
	} else if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandler(os.Stderr, level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.TerminalHandler(os.Stderr, level, useColor)
	}
	log.SetHandler(handler)
	return level, closer
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.npos")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.npos")
		default:
			return filepath.Join(home, ".org.vechain.npos")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func openMainDB(ctx *cli.Context) *lvldb.LevelDB {
	if ctx.Bool(memDBFlag.Name) {
		db, err := lvldb.NewMem()
		if err != nil {
			fatal("open staking database:", err)
		}
		return db
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}

	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// keep the GC from triggering on the database cache
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "staking.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open staking database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func startAPIServer(addr string, handler http.Handler) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server stopped", "err", err)
		}
	}()
	return "http://" + listener.Addr().String() + "/", srv, nil
}

func printStartupMessage(n *node.Node, dataDir, apiURL string) {
	head, _, err := n.Head()
	if err != nil {
		fatal("read head:", err)
	}
	era := "none"
	if active, found, err := n.StakingView().ActiveEra(); err == nil && found {
		era = fmt.Sprint(active.Index)
	}

	fmt.Printf(`Starting %v
    Head         [ #%v @%v ]
    Active era   [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		"nposd "+fullVersion(),
		head.Number, time.UnixMilli(int64(head.Timestamp)),
		era,
		dataDir,
		apiURL)
}

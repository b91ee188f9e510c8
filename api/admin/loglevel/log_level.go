// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/log"
)

// Request sets the level by name, or by verbosity from 0 (crit) to 5 (trace).
type Request struct {
	Level     string `json:"level,omitempty"`
	Verbosity *int   `json:"verbosity,omitempty"`
}

type Response struct {
	CurrentLevel string `json:"currentLevel"`
}

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type LogLevel struct {
	level *slog.LevelVar
}

func New(level *slog.LevelVar) *LogLevel {
	return &LogLevel{level: level}
}

func (l *LogLevel) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, Response{CurrentLevel: l.level.Level().String()})
}

func (l *LogLevel) handlePost(w http.ResponseWriter, req *http.Request) error {
	var body Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	switch {
	case body.Verbosity != nil:
		if *body.Verbosity < 0 || *body.Verbosity > 5 {
			return utils.BadRequest(errors.New("verbosity out of range"))
		}
		l.level.Set(log.LevelFromVerbosity(*body.Verbosity))
	default:
		level, ok := levels[body.Level]
		if !ok {
			return utils.BadRequest(errors.New("invalid verbosity level"))
		}
		l.level.Set(level)
	}
	return utils.WriteJSON(w, Response{CurrentLevel: l.level.Level().String()})
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGet))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(l.handlePost))
}

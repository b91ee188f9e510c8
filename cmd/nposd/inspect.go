// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/ledger"
)

type inspection struct {
	Head       node.Head           `json:"head"`
	ActiveEra  *npos.ActiveEraInfo `json:"activeEra"`
	CurrentEra *npos.EraIndex      `json:"currentEra"`
	ForceEra   string              `json:"forceEra"`
	Session    npos.SessionIndex   `json:"session"`
	Validators []npos.Address      `json:"validators"`
	Staker     *stakerInspection   `json:"staker,omitempty"`
}

type stakerInspection struct {
	Stash       npos.Address         `json:"stash"`
	Controller  npos.Address         `json:"controller"`
	Ledger      ledger.StakingLedger `json:"ledger"`
	Payee       string               `json:"payee"`
	Validator   *npos.ValidatorPrefs `json:"validator,omitempty"`
	Nominations *npos.Nominations    `json:"nominations,omitempty"`
}

func inspectAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "load config")
	}
	db := openMainDB(ctx)
	defer db.Close()

	var stash *npos.Address
	if s := ctx.String(stashFlag.Name); s != "" {
		addr, err := npos.ParseAddress(s)
		if err != nil {
			return errors.WithMessage(err, "stash")
		}
		stash = &addr
	}

	out, err := inspect(node.New(db, cfg.nodeOptions()), stash)
	if err != nil {
		return err
	}
	return printValue(os.Stdout, out, ctx.Bool(jsonOutFlag.Name))
}

func inspect(n *node.Node, stash *npos.Address) (*inspection, error) {
	head, found, err := n.Head()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, node.ErrNoGenesis
	}
	st := n.StakingView()
	sess := n.SessionView()

	out := &inspection{Head: head}
	active, found, err := st.ActiveEra()
	if err != nil {
		return nil, err
	}
	if found {
		out.ActiveEra = &active
	}
	current, found, err := st.CurrentEra()
	if err != nil {
		return nil, err
	}
	if found {
		out.CurrentEra = &current
	}
	force, err := st.ForceEra()
	if err != nil {
		return nil, err
	}
	out.ForceEra = force.String()
	if out.Session, err = sess.CurrentIndex(); err != nil {
		return nil, err
	}
	if out.Validators, err = sess.Validators(); err != nil {
		return nil, err
	}
	if stash == nil {
		return out, nil
	}

	controller, l, err := st.Ledgers().LedgerOfStash(*stash)
	if err != nil {
		return nil, err
	}
	payee, err := st.Ledgers().Payee(*stash)
	if err != nil {
		return nil, err
	}
	staker := &stakerInspection{Stash: *stash, Controller: controller, Ledger: l, Payee: payee.Kind.String()}
	if prefs, found, err := st.Registry().Validator(*stash); err != nil {
		return nil, err
	} else if found {
		staker.Validator = &prefs
	}
	if nominations, found, err := st.Nominations(*stash); err != nil {
		return nil, err
	} else if found {
		staker.Nominations = &nominations
	}
	out.Staker = staker
	return out, nil
}

func printValue(w io.Writer, v any, asJSON bool) error {
	if !asJSON {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		cfg.Fdump(w, v)
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

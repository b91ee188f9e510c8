// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/weight"
)

type genesisStaker struct {
	Stash      npos.Address   `yaml:"stash"`
	Controller npos.Address   `yaml:"controller"` // the stash if not set
	Balance    npos.Balance   `yaml:"balance"`
	Bonded     npos.Balance   `yaml:"bonded"`
	Validator  bool           `yaml:"validator"`
	Commission npos.Perbill   `yaml:"commission"`
	Targets    []npos.Address `yaml:"targets"`
}

type config struct {
	Staking           npos.Config     `yaml:"staking"`
	Force             string          `yaml:"force"`
	BlockInterval     time.Duration   `yaml:"blockInterval"`
	AutoPayout        bool            `yaml:"autoPayout"`
	WeightedVoterList bool            `yaml:"weightedVoterList"`
	DBWeight          weight.DBWeight `yaml:"dbWeight"`
	Genesis           []genesisStaker `yaml:"genesis"`
}

// devConfig is three validators and one nominator, used when no configuration is given.
func devConfig() *config {
	stakers := make([]genesisStaker, 0, 4)
	for i := byte(1); i <= 3; i++ {
		stakers = append(stakers, genesisStaker{
			Stash:      npos.Address{i},
			Balance:    1_000_000,
			Bonded:     500_000,
			Validator:  true,
			Commission: npos.PerbillFromPercent(5),
		})
	}
	stakers = append(stakers, genesisStaker{
		Stash:   npos.Address{0x11},
		Balance: 1_000_000,
		Bonded:  250_000,
		Targets: []npos.Address{{1}, {2}},
	})
	cfg := npos.DefaultConfig()
	cfg.SessionsPerEra = 6
	cfg.SessionLength = 10
	cfg.ValidatorCount = 3
	return &config{
		Staking:       cfg,
		Force:         npos.NotForcing.String(),
		BlockInterval: 6 * time.Second,
		AutoPayout:    true,
		DBWeight:      weight.RocksDBWeight,
		Genesis:       stakers,
	}
}

func loadConfig(path string) (*config, error) {
	if path == "" {
		return devConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*config, error) {
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.Force == "" {
		cfg.Force = npos.NotForcing.String()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *config) validate() error {
	if _, err := parseForcing(c.Force); err != nil {
		return err
	}
	if c.BlockInterval < 0 {
		return errors.New("negative block interval")
	}
	if len(c.Genesis) == 0 {
		return errors.New("no genesis stakers")
	}
	seen := make(map[npos.Address]bool, len(c.Genesis))
	for i, s := range c.Genesis {
		if s.Stash.IsZero() {
			return errors.Errorf("genesis staker %d: zero stash", i)
		}
		if seen[s.Stash] {
			return errors.Errorf("genesis staker %d: duplicate stash %v", i, s.Stash)
		}
		seen[s.Stash] = true
		if s.Bonded > s.Balance {
			return errors.Errorf("genesis staker %v: bonded %d exceeds balance %d", s.Stash, s.Bonded, s.Balance)
		}
		if s.Validator && len(s.Targets) > 0 {
			return errors.Errorf("genesis staker %v: a validator cannot nominate", s.Stash)
		}
		if s.Commission > npos.PerbillOne() {
			return errors.Errorf("genesis staker %v: commission above one", s.Stash)
		}
	}
	return nil
}

func (c *config) forcing() npos.Forcing {
	f, _ := parseForcing(c.Force)
	return f
}

func (c *config) genesisStakers() []staking.GenesisStaker {
	out := make([]staking.GenesisStaker, 0, len(c.Genesis))
	for _, s := range c.Genesis {
		controller := s.Controller
		if controller.IsZero() {
			controller = s.Stash
		}
		out = append(out, staking.GenesisStaker{
			Stash:      s.Stash,
			Controller: controller,
			Balance:    s.Balance,
			Bonded:     s.Bonded,
			Validator:  s.Validator,
			Commission: s.Commission,
			Targets:    s.Targets,
		})
	}
	return out
}

func (c *config) nodeOptions() node.Options {
	return node.Options{
		Config:            c.Staking,
		BlockInterval:     c.BlockInterval,
		AutoPayout:        c.AutoPayout,
		WeightedVoterList: c.WeightedVoterList,
		DBWeight:          c.DBWeight,
	}
}

func parseForcing(s string) (npos.Forcing, error) {
	for _, f := range []npos.Forcing{npos.NotForcing, npos.ForceNew, npos.ForceNone, npos.ForceAlways} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, errors.Errorf("unknown forcing mode %q", s)
}

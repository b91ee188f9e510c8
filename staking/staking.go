// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking is the nominated proof of stake core. It drives the era lifecycle from
// session notifications, feeds elections with bounded snapshots, pays era rewards and
// handles offences through the slashing engine.
package staking

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/currency"
	"github.com/vechain/npos/staking/election"
	"github.com/vechain/npos/staking/eras"
	"github.com/vechain/npos/staking/ledger"
	"github.com/vechain/npos/staking/params"
	"github.com/vechain/npos/staking/registry"
	"github.com/vechain/npos/staking/rewards"
	"github.com/vechain/npos/staking/slashing"
	"github.com/vechain/npos/staking/snapshot"
	"github.com/vechain/npos/storage"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricElectionFailed = metrics.LazyLoadCounter("staking_election_failed_count")
	metricErasTriggered  = metrics.LazyLoadCounter("staking_eras_triggered_count")
	metricPayouts        = metrics.LazyLoadCounter("staking_payouts_count")
	metricActiveEra      = metrics.LazyLoadGauge("staking_active_era")
)

// SetLogger replaces the package logger.
func SetLogger(l log.Logger) {
	logger = l
}

// SessionInterface is the session layer driven by the staking core.
type SessionInterface = slashing.SessionInterface

// UnixTime is a source of wall clock time in milliseconds.
type UnixTime interface {
	NowMillis() uint64
}

// UnixTimeFunc adapts a function to UnixTime.
type UnixTimeFunc func() uint64

// NowMillis implements UnixTime.
func (f UnixTimeFunc) NowMillis() uint64 { return f() }

type options struct {
	currency         currency.Currency
	session          SessionInterface
	clock            UnixTime
	eraPayout        rewards.EraPayout
	remainder        currency.Sink
	slashSink        currency.Sink
	electionProvider election.Provider
	genesisProvider  election.Provider
	currencyToVote   npos.CurrencyToVote
	registryOpts     []registry.Option
	events           func(Event)
}

// Option configures the collaborators of the staking core.
type Option func(*options)

// WithCurrency sets the balance collaborator. The default keeps balances in the same store.
func WithCurrency(c currency.Currency) Option {
	return func(o *options) { o.currency = c }
}

// WithSession sets the session layer. Without one there are no session validators to disable.
func WithSession(s SessionInterface) Option {
	return func(o *options) { o.session = s }
}

// WithUnixTime sets the clock used to time eras. Without one no era is ever paid.
func WithUnixTime(c UnixTime) Option {
	return func(o *options) { o.clock = c }
}

// WithEraPayout replaces the inflation curve built from the configuration.
func WithEraPayout(p rewards.EraPayout) Option {
	return func(o *options) { o.eraPayout = p }
}

// WithRemainderSink sets where the part of the era payout not given to validators goes.
func WithRemainderSink(s currency.Sink) Option {
	return func(o *options) { o.remainder = s }
}

// WithSlashSink sets where slashed funds not paid to reporters go.
func WithSlashSink(s currency.Sink) Option {
	return func(o *options) { o.slashSink = s }
}

// WithElectionProvider replaces the on-chain approval election.
func WithElectionProvider(p election.Provider) Option {
	return func(o *options) { o.electionProvider = p }
}

// WithGenesisElectionProvider sets the provider used for the genesis sessions.
func WithGenesisElectionProvider(p election.Provider) Option {
	return func(o *options) { o.genesisProvider = p }
}

// WithCurrencyToVote replaces the balance to vote weight conversion.
func WithCurrencyToVote(c npos.CurrencyToVote) Option {
	return func(o *options) { o.currencyToVote = c }
}

// WithEventSink receives the events of every era transition and reported slash.
func WithEventSink(fn func(Event)) Option {
	return func(o *options) { o.events = fn }
}

// WithRegistryOptions passes options to the validator and nominator registry.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(o *options) { o.registryOpts = append(o.registryOpts, opts...) }
}

// Staking is the staking core. It is not safe for concurrent use.
type Staking struct {
	cfg  npos.Config
	sctx *storage.Context

	params   *params.Params
	eras     *eras.Repository
	registry *registry.Registry
	ledgers  *ledger.Store
	slashing *slashing.Engine
	snapshot *snapshot.Builder

	currency         currency.Currency
	session          SessionInterface
	clock            UnixTime
	eraPayout        rewards.EraPayout
	remainder        currency.Sink
	events           func(Event)
	electionProvider election.Provider
	genesisProvider  election.Provider
	currencyToVote   npos.CurrencyToVote

	voterBounds  election.Bounds
	targetBounds election.Bounds
}

// New creates the staking core over sctx. cfg is completed with defaults; it is the caller's
// job to validate it.
func New(sctx *storage.Context, cfg npos.Config, opts ...Option) *Staking {
	cfg = cfg.WithDefaults()

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.currency == nil {
		o.currency = currency.NewBalances(sctx, cfg.ExistentialDeposit)
	}
	if o.session == nil {
		o.session = noSession{}
	}
	if o.eraPayout == nil {
		o.eraPayout = rewards.NewInflationCurve(cfg.Inflation)
	}
	if o.remainder == nil {
		o.remainder = currency.Burn{}
	}
	if o.slashSink == nil {
		o.slashSink = currency.Burn{}
	}
	if o.currencyToVote == nil {
		o.currencyToVote = npos.U64CurrencyToVote{}
	}

	s := &Staking{
		cfg:            cfg,
		sctx:           sctx,
		params:         params.New(sctx),
		eras:           eras.New(sctx),
		registry:       registry.New(sctx, o.registryOpts...),
		currency:       o.currency,
		session:        o.session,
		clock:          o.clock,
		eraPayout:      o.eraPayout,
		remainder:      o.remainder,
		currencyToVote: o.currencyToVote,
		events:         o.events,
		voterBounds:    election.BoundsFromConfig(cfg.VoterSnapshotBounds),
		targetBounds:   election.BoundsFromConfig(cfg.TargetSnapshotBounds),
	}
	s.ledgers = ledger.New(sctx, s.currency, cfg.ExistentialDeposit)
	s.slashing = slashing.New(sctx, s.ledgers, s.currency, o.slashSink, s.session, s, slashing.Config{
		MinimumBalance:               cfg.ExistentialDeposit,
		OffendingValidatorsThreshold: cfg.OffendingValidatorsThreshold,
		SlashDeferDuration:           npos.EraIndex(cfg.SlashDeferDuration),
	})
	s.snapshot = snapshot.NewBuilder(s, int(cfg.MaxNominations))

	s.electionProvider = o.electionProvider
	if s.electionProvider == nil {
		s.electionProvider = election.NewOnChain(s, s.voterBounds, s.targetBounds)
	}
	s.genesisProvider = o.genesisProvider
	if s.genesisProvider == nil {
		s.genesisProvider = s.electionProvider
	}
	return s
}

// noSession is the session layer used when none is configured.
type noSession struct{}

func (noSession) Validators() ([]npos.Address, error)         { return nil, nil }
func (noSession) DisableValidator(uint32) (bool, error)       { return false, nil }
func (noSession) PruneHistoricalUpTo(npos.SessionIndex) error { return nil }

// Config returns the configuration in use, defaults included.
func (s *Staking) Config() npos.Config {
	return s.cfg
}

//
// Getters - no state change
//

// Eras returns the per-era records.
func (s *Staking) Eras() *eras.Repository {
	return s.eras
}

// Registry returns the validator and nominator registry.
func (s *Staking) Registry() *registry.Registry {
	return s.registry
}

// Ledgers returns the bonding records.
func (s *Staking) Ledgers() *ledger.Store {
	return s.ledgers
}

// Slashing returns the slashing engine.
func (s *Staking) Slashing() *slashing.Engine {
	return s.slashing
}

// Params returns the governance parameters.
func (s *Staking) Params() *params.Params {
	return s.params
}

// Currency returns the balance collaborator.
func (s *Staking) Currency() currency.Currency {
	return s.currency
}

// Snapshot returns the snapshot builder.
func (s *Staking) Snapshot() *snapshot.Builder {
	return s.snapshot
}

// ActiveEra returns the era currently producing blocks.
func (s *Staking) ActiveEra() (npos.ActiveEraInfo, bool, error) {
	return s.eras.ActiveEra()
}

// CurrentEra returns the latest planned era.
func (s *Staking) CurrentEra() (npos.EraIndex, bool, error) {
	return s.eras.CurrentEra()
}

// ForceEra returns the forcing mode.
func (s *Staking) ForceEra() (npos.Forcing, error) {
	return s.eras.ForceEra()
}

// GenesisStaker is a stake bonded at genesis.
type GenesisStaker struct {
	Stash      npos.Address
	Controller npos.Address
	Balance    npos.Balance // endowment of the stash
	Bonded     npos.Balance
	Validator  bool
	Commission npos.Perbill
	Targets    []npos.Address // nominated when not a validator
}

// InitGenesis writes the parameters of the configuration and bonds the genesis stakers.
func (s *Staking) InitGenesis(force npos.Forcing, stakers []GenesisStaker) error {
	if err := s.params.Init(s.cfg); err != nil {
		return errors.Wrap(err, "init params")
	}
	if err := s.eras.SetForceEra(force); err != nil {
		return err
	}
	for _, st := range stakers {
		if st.Balance > 0 {
			if _, err := s.currency.DepositCreating(st.Stash, st.Balance); err != nil {
				return errors.Wrapf(err, "endow %s", st.Stash)
			}
		}
		if err := s.Bond(st.Stash, st.Controller, st.Bonded, ledger.RewardDestination{Kind: ledger.Staked}); err != nil {
			return errors.Wrapf(err, "bond %s", st.Stash)
		}
		switch {
		case st.Validator:
			if err := s.Validate(st.Controller, npos.ValidatorPrefs{Commission: st.Commission}); err != nil {
				return errors.Wrapf(err, "validate %s", st.Stash)
			}
		case len(st.Targets) > 0:
			if err := s.Nominate(st.Controller, st.Targets); err != nil {
				return errors.Wrapf(err, "nominate %s", st.Stash)
			}
		}
	}
	logger.Info("genesis initialised", "stakers", len(stakers), "force", force)
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
	"github.com/vechain/npos/storage"
)

var (
	// ErrDuplicateVoter is returned when inserting a voter already in the list.
	ErrDuplicateVoter = errors.New("voter already in list")
	// ErrVoterNotFound is returned when updating or removing a voter not in the list.
	ErrVoterNotFound = errors.New("voter not in list")
	// ErrZeroVoter is returned when inserting the zero address, which marks the list ends.
	ErrZeroVoter = errors.New("zero address cannot be a voter")
)

var _ election.SortedVoterList = (*WeightedVoterList)(nil)

type voterNode struct {
	Prev   npos.Address
	Next   npos.Address
	Weight npos.VoteWeight
}

// WeightedVoterList is a doubly linked list of voters kept in descending vote weight.
// Voters of equal weight keep their insertion order. The zero address marks a missing link.
type WeightedVoterList struct {
	nodes *storage.Mapping[npos.Address, voterNode]
	head  *storage.Value[npos.Address]
	tail  *storage.Value[npos.Address]
	count *storage.Value[uint32]
}

// NewWeightedVoterList creates the list over sctx.
func NewWeightedVoterList(sctx *storage.Context) *WeightedVoterList {
	return &WeightedVoterList{
		nodes: storage.NewMapping[npos.Address, voterNode](sctx, "VoterListNodes"),
		head:  storage.NewValue[npos.Address](sctx, "VoterListHead"),
		tail:  storage.NewValue[npos.Address](sctx, "VoterListTail"),
		count: storage.NewValue[uint32](sctx, "VoterListCount"),
	}
}

// Iterate visits voters from the heaviest to the lightest.
func (l *WeightedVoterList) Iterate(fn func(npos.Address) (bool, error)) error {
	current, err := l.head.Get()
	if err != nil {
		return err
	}
	for !current.IsZero() {
		node, err := l.nodes.Get(current)
		if err != nil {
			return err
		}
		cont, err := fn(current)
		if err != nil || !cont {
			return err
		}
		current = node.Next
	}
	return nil
}

// Count implements election.SortedVoterList.
func (l *WeightedVoterList) Count() (uint32, error) {
	return l.count.Get()
}

// Contains implements election.SortedVoterList.
func (l *WeightedVoterList) Contains(who npos.Address) (bool, error) {
	return l.nodes.Has(who)
}

// Weight returns the weight the voter was last inserted or updated with.
func (l *WeightedVoterList) Weight(who npos.Address) (npos.VoteWeight, bool, error) {
	node, found, err := l.nodes.Find(who)
	return node.Weight, found, err
}

// OnInsert places who after every voter of equal or greater weight.
func (l *WeightedVoterList) OnInsert(who npos.Address, weight npos.VoteWeight) error {
	if who.IsZero() {
		return ErrZeroVoter
	}
	exists, err := l.nodes.Has(who)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrap(ErrDuplicateVoter, who.String())
	}
	if err := l.insert(who, weight); err != nil {
		return err
	}
	return l.count.Mutate(saturatingInc)
}

// OnUpdate moves who to the position matching its new weight.
func (l *WeightedVoterList) OnUpdate(who npos.Address, weight npos.VoteWeight) error {
	node, found, err := l.nodes.Find(who)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrap(ErrVoterNotFound, who.String())
	}
	if node.Weight == weight {
		return nil
	}
	if err := l.unlink(who, node); err != nil {
		return err
	}
	return l.insert(who, weight)
}

// OnRemove implements election.SortedVoterList.
func (l *WeightedVoterList) OnRemove(who npos.Address) error {
	node, found, err := l.nodes.Find(who)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrap(ErrVoterNotFound, who.String())
	}
	if err := l.unlink(who, node); err != nil {
		return err
	}
	return l.count.Mutate(saturatingDec)
}

// Clear implements election.SortedVoterList.
func (l *WeightedVoterList) Clear() (uint32, error) {
	count, err := l.count.Get()
	if err != nil {
		return 0, err
	}
	if _, err := l.nodes.Clear(); err != nil {
		return 0, err
	}
	for _, v := range []*storage.Value[npos.Address]{l.head, l.tail} {
		if err := v.Delete(); err != nil {
			return 0, err
		}
	}
	return count, l.count.Delete()
}

// SanityCheck walks the list and verifies links, ordering and the counter.
func (l *WeightedVoterList) SanityCheck() error {
	head, err := l.head.Get()
	if err != nil {
		return err
	}
	tail, err := l.tail.Get()
	if err != nil {
		return err
	}
	count, err := l.count.Get()
	if err != nil {
		return err
	}

	var (
		prev   npos.Address
		prevW  npos.VoteWeight
		seen   uint32
		cursor = head
	)
	for !cursor.IsZero() {
		node, found, err := l.nodes.Find(cursor)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("dangling link to %s", cursor)
		}
		if node.Prev != prev {
			return fmt.Errorf("broken back link at %s", cursor)
		}
		if seen > 0 && node.Weight > prevW {
			return fmt.Errorf("voter %s out of order", cursor)
		}
		seen++
		if seen > count {
			return fmt.Errorf("list longer than counter %d", count)
		}
		prev, prevW, cursor = cursor, node.Weight, node.Next
	}
	if prev != tail {
		return fmt.Errorf("tail mismatch: have %s, want %s", tail, prev)
	}
	if seen != count {
		return fmt.Errorf("counter mismatch: walked %d, counter %d", seen, count)
	}
	return nil
}

func (l *WeightedVoterList) insert(who npos.Address, weight npos.VoteWeight) error {
	node := voterNode{Weight: weight}

	headID, err := l.head.Get()
	if err != nil {
		return err
	}
	if headID.IsZero() {
		if err := l.nodes.Set(who, node); err != nil {
			return err
		}
		if err := l.head.Set(who); err != nil {
			return err
		}
		return l.tail.Set(who)
	}

	head, err := l.nodes.Get(headID)
	if err != nil {
		return err
	}
	if weight > head.Weight {
		node.Next = headID
		head.Prev = who
		if err := l.nodes.Set(headID, head); err != nil {
			return err
		}
		if err := l.nodes.Set(who, node); err != nil {
			return err
		}
		return l.head.Set(who)
	}

	currentID, current := headID, head
	for {
		if current.Next.IsZero() {
			current.Next = who
			node.Prev = currentID
			if err := l.nodes.Set(currentID, current); err != nil {
				return err
			}
			if err := l.nodes.Set(who, node); err != nil {
				return err
			}
			return l.tail.Set(who)
		}

		nextID := current.Next
		next, err := l.nodes.Get(nextID)
		if err != nil {
			return err
		}
		if weight > next.Weight {
			node.Prev, node.Next = currentID, nextID
			current.Next, next.Prev = who, who
			if err := l.nodes.Set(currentID, current); err != nil {
				return err
			}
			if err := l.nodes.Set(nextID, next); err != nil {
				return err
			}
			return l.nodes.Set(who, node)
		}
		currentID, current = nextID, next
	}
}

func (l *WeightedVoterList) unlink(who npos.Address, node voterNode) error {
	if node.Prev.IsZero() {
		if err := l.head.Set(node.Next); err != nil {
			return err
		}
	} else if err := l.relink(node.Prev, func(n *voterNode) { n.Next = node.Next }); err != nil {
		return err
	}

	if node.Next.IsZero() {
		if err := l.tail.Set(node.Prev); err != nil {
			return err
		}
	} else if err := l.relink(node.Next, func(n *voterNode) { n.Prev = node.Prev }); err != nil {
		return err
	}
	return l.nodes.Delete(who)
}

func (l *WeightedVoterList) relink(id npos.Address, fn func(*voterNode)) error {
	n, err := l.nodes.Get(id)
	if err != nil {
		return err
	}
	fn(&n)
	return l.nodes.Set(id, n)
}

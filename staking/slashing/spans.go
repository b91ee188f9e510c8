// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slashing

import (
	"encoding/binary"

	"github.com/vechain/npos/npos"
)

// SpanIndex numbers the slashing spans of a stash.
type SpanIndex = uint32

// SlashingSpans partitions the eras a stash was bonded in into spans. A stash is slashed at
// most once per span, for the largest offence within it. A new span starts after each slash
// in the current span.
type SlashingSpans struct {
	SpanIndex        SpanIndex       // index of the current span
	LastStart        npos.EraIndex   // first era of the current span
	LastNonzeroSlash npos.EraIndex   // era of the most recent non-zero slash
	Prior            []npos.EraIndex // lengths of the prior spans, most recent first
}

// SlashingSpan is one span. The current span is open ended.
type SlashingSpan struct {
	Index  SpanIndex
	Start  npos.EraIndex
	Length npos.EraIndex
	Open   bool
}

// ContainsEra tells whether era falls into the span.
func (s SlashingSpan) ContainsEra(era npos.EraIndex) bool {
	return s.Start <= era && (s.Open || s.Start+s.Length > era)
}

// NewSlashingSpans starts tracking spans from windowStart.
func NewSlashingSpans(windowStart npos.EraIndex) SlashingSpans {
	return SlashingSpans{LastStart: windowStart}
}

// EndSpan closes the current span so that a new one starts at now+1. It reports false
// when the current span started after now.
func (s *SlashingSpans) EndSpan(now npos.EraIndex) bool {
	nextStart := now + 1
	if nextStart <= s.LastStart {
		return false
	}
	s.Prior = append([]npos.EraIndex{nextStart - s.LastStart}, s.Prior...)
	s.LastStart = nextStart
	s.SpanIndex++
	return true
}

// Iter returns the spans from the current one backwards.
func (s *SlashingSpans) Iter() []SlashingSpan {
	out := make([]SlashingSpan, 0, len(s.Prior)+1)
	out = append(out, SlashingSpan{Index: s.SpanIndex, Start: s.LastStart, Open: true})
	start, index := s.LastStart, s.SpanIndex
	for _, length := range s.Prior {
		start -= length
		index--
		out = append(out, SlashingSpan{Index: index, Start: start, Length: length})
	}
	return out
}

// EraSpan returns the span covering era.
func (s *SlashingSpans) EraSpan(era npos.EraIndex) (SlashingSpan, bool) {
	for _, span := range s.Iter() {
		if span.ContainsEra(era) {
			return span, true
		}
	}
	return SlashingSpan{}, false
}

// Prune drops the prior spans which ended before windowStart and clamps the current span
// to start no earlier than windowStart. When spans were dropped it returns the index range
// [from, to) they occupied.
func (s *SlashingSpans) Prune(windowStart npos.EraIndex) (from, to SpanIndex, pruned bool) {
	earliest := s.SpanIndex - SpanIndex(len(s.Prior))
	for i, span := range s.Iter()[1:] {
		if span.Start+span.Length <= windowStart {
			s.Prior = s.Prior[:i]
			pruned = true
			break
		}
	}
	s.LastStart = max(s.LastStart, windowStart)
	if !pruned {
		return 0, 0, false
	}
	return earliest, s.SpanIndex - SpanIndex(len(s.Prior)), true
}

// SpanRecord tracks what was slashed and paid to reporters within one span.
type SpanRecord struct {
	Slashed npos.Balance
	PaidOut npos.Balance
}

type spanKey struct {
	stash npos.Address
	index SpanIndex
}

func (k spanKey) Bytes() []byte {
	return binary.BigEndian.AppendUint32(k.stash.Bytes(), k.index)
}

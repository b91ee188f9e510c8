// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package snapshot

import "github.com/vechain/npos/npos"

const (
	// accountSize is the encoded size of an account.
	accountSize = npos.AddressLength
	// voteWeightSize is the encoded size of a vote weight.
	voteWeightSize = 8
	// MaxPossibleAllocation caps any single allocation made while building a snapshot.
	MaxPossibleAllocation = 32 << 20
)

// LengthPrefix returns the size of the compact length prefix of a collection with the given length.
func LengthPrefix(length int) int {
	switch {
	case length <= 63:
		return 1
	case length <= 16383:
		return 2
	case length <= 1073741823:
		return 4
	default:
		// big integer mode: one byte header plus the 4 bytes of a u32
		return 5
	}
}

// VoterSize returns the encoded size of a voter casting the given number of votes:
// the votes with their length prefix, the weight and the voter account.
func VoterSize(votes int) int {
	return LengthPrefix(votes) + votes*accountSize + voteWeightSize + accountSize
}

// SizeTracker predicts the encoded size of a voter snapshot without encoding it.
// It tracks every registered voter, leaving out the length prefix of the outer collection.
type SizeTracker struct {
	size int
}

// RegisterVoter accounts for a voter casting the given number of votes.
func (t *SizeTracker) RegisterVoter(votes int) {
	t.size += VoterSize(votes)
}

// Size returns the size of the registered voters, excluding the outer length prefix.
func (t *SizeTracker) Size() int {
	return t.size
}

// FinalByteSizeOf returns the encoded size of the snapshot once it holds length voters.
func (t *SizeTracker) FinalByteSizeOf(length int) int {
	return t.size + LengthPrefix(length)
}

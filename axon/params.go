// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package axon

// Storage access costs, charged per 32 byte slot touched.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
	GetBalanceGas  uint64 = 400
)

// keys of governance params.
var (
	KeyMaxSubnets             = BytesToBytes32([]byte("max-subnets"))
	KeyFeePerGas              = BytesToBytes32([]byte("fee-per-gas"))
	KeySubnetRegistrationCost = BytesToBytes32([]byte("subnet-registration-cost"))
	KeyMinAttestation         = BytesToBytes32([]byte("min-attestation-percentage"))
)

// Built-in component addresses. Each component keeps its storage under its own address.
var (
	BalancesAddress  = BytesToAddress([]byte("Balances"))
	ParamsAddress    = BytesToAddress([]byte("Params"))
	StakerAddress    = BytesToAddress([]byte("Staker"))
	SubnetAddress    = BytesToAddress([]byte("Subnet"))
	ConsensusAddress = BytesToAddress([]byte("Consensus"))
	RewardsAddress   = BytesToAddress([]byte("Rewards"))
)

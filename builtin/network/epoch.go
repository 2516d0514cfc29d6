// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/bn"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/rewards"
)

// OnBlock advances the network to height. On an epoch boundary it settles
// the epoch that just ended, runs subnet housekeeping and elects the
// validators of the new epoch. It never fails: a subnet whose processing
// errors is rolled back and skipped.
func (n *Network) OnBlock(height uint32, entropy axon.Bytes32) {
	n.block = height
	if !axon.IsEpochBoundary(height, n.cfg.EpochLength) {
		return
	}
	epoch := axon.Epoch(height, n.cfg.EpochLength)
	metricEpoch().Set(int64(epoch))
	logger.Debug("epoch boundary", "height", height, "epoch", epoch)

	if epoch > 0 {
		n.settle(epoch-1, height)
	}
	n.subnets.Housekeep(height)
	n.elect(epoch, entropy)
}

func (n *Network) guarded(step string, subnetID uint32, fn func() error) {
	cp := n.state.NewCheckpoint()
	if err := fn(); err != nil {
		n.state.RevertTo(cp)
		logger.Error("epoch step failed", "step", step, "subnet", subnetID, "err", err)
	}
}

// settle distributes the emission of epoch and settles its validators.
func (n *Network) settle(epoch, height uint32) {
	active, err := n.subnets.ActiveSubnets()
	if err != nil {
		logger.Error("list active subnets", "err", err)
		return
	}
	if len(active) == 0 {
		return
	}
	minAttestation, err := n.params.GetOr(axon.KeyMinAttestation, uint64(n.cfg.MinAttestationPercentage))
	if err != nil {
		logger.Error("read attestation minimum", "err", err)
		return
	}
	total, err := n.rewards.EpochEmission(epoch)
	if err != nil {
		logger.Error("compute emission", "epoch", epoch, "err", err)
		return
	}
	shares := rewards.Apportion(total, active)

	for _, sub := range active {
		n.guarded("settle", sub.ID, func() error {
			return n.settleSubnet(sub.ID, epoch, height, shares[sub.ID], axon.BasisPoints(minAttestation))
		})
	}
}

func (n *Network) settleSubnet(subnetID, epoch, height uint32, amount *big.Int, minAttestation axon.BasisPoints) error {
	assigned, err := n.consensus.Assignment(subnetID, epoch)
	if err != nil || assigned == 0 {
		return err
	}
	sub, err := n.consensus.Submission(subnetID, epoch)
	if err != nil {
		return err
	}
	// a missing submission counts as nobody attesting
	ap := bn.Zero()
	if sub.Exists() {
		if ap, err = n.consensus.AttestationPercentage(subnetID, epoch, sub); err != nil {
			return err
		}
	}
	if amount != nil {
		if _, err := n.rewards.Distribute(subnetID, epoch, amount, sub, ap, minAttestation); err != nil {
			return err
		}
	}
	if err := n.settleValidator(subnetID, assigned, ap, minAttestation, height); err != nil {
		return err
	}
	return n.consensus.Finalize(subnetID, epoch)
}

func (n *Network) settleValidator(subnetID, nodeID uint32, ap *uint256.Int, minAttestation axon.BasisPoints, height uint32) error {
	validator, err := n.subnets.LiveNode(subnetID, nodeID)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return nil
		}
		return err
	}
	_, err = n.slashing.Settle(subnetID, validator, ap, minAttestation, height)
	return err
}

func (n *Network) elect(epoch uint32, entropy axon.Bytes32) {
	active, err := n.subnets.ActiveSubnets()
	if err != nil {
		logger.Error("list active subnets", "err", err)
		return
	}
	for _, sub := range active {
		n.guarded("elect", sub.ID, func() error {
			_, _, err := n.consensus.ElectValidator(sub.ID, epoch, entropy)
			return err
		})
	}
}

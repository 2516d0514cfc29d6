// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
)

// Housekeep runs the lifecycle scan for the epoch starting at block.
// It always makes progress: a subnet whose transition fails is reverted,
// logged and skipped.
func (s *Service) Housekeep(block uint32) {
	epoch := s.epoch(block)
	ids, err := s.SubnetIDs()
	if err != nil {
		logger.Error("failed to list subnets", "err", err)
		return
	}
	for _, id := range ids {
		s.guarded("lifecycle", id, func() error {
			return s.housekeepSubnet(id, epoch, block)
		})
	}
	s.guarded("max subnets", 0, func() error {
		return s.enforceMaxSubnets(block)
	})

	active, err := s.ActiveSubnets()
	if err != nil {
		logger.Error("failed to list active subnets", "err", err)
		return
	}
	for _, sub := range active {
		s.guarded("graduation", sub.ID, func() error {
			return s.graduate(sub.ID, epoch)
		})
	}
	s.reportStatuses()
	if n, err := s.TotalNodes(); err == nil {
		metricTotalNodes().Set(int64(n))
	}
}

// reportStatuses sets the per status subnet gauges.
func (s *Service) reportStatuses() {
	ids, err := s.SubnetIDs()
	if err != nil {
		return
	}
	counts := map[Status]int64{StatusRegistered: 0, StatusEnactment: 0, StatusActive: 0}
	for _, id := range ids {
		if sub, err := s.Subnet(id); err == nil {
			counts[sub.Status]++
		}
	}
	for status, n := range counts {
		metricSubnets().SetWithLabel(n, map[string]string{"status": status.String()})
	}
}

func (s *Service) guarded(step string, id uint32, fn func() error) {
	st := s.sctx.State()
	cp := st.NewCheckpoint()
	if err := fn(); err != nil {
		st.RevertTo(cp)
		logger.Error("housekeeping step failed", "step", step, "subnet", id, "err", err)
	}
}

func (s *Service) housekeepSubnet(id, epoch, block uint32) error {
	sub, err := s.Subnet(id)
	if err != nil {
		return err
	}
	switch sub.Status {
	case StatusRegistered, StatusEnactment:
		if uint64(epoch) >= sub.EnactmentDeadline(s.cfg) {
			return s.removeSubnet(sub, ReasonEnactmentPeriod, block)
		}
		if uint64(epoch) < sub.EnactmentStart(s.cfg) {
			return nil
		}
		validators, err := s.ValidatorCount(id, epoch)
		if err != nil {
			return err
		}
		if validators < sub.MinNodes {
			return s.removeSubnet(sub, ReasonMinSubnetNodes, block)
		}
		if sub.Status == StatusRegistered {
			sub.Status = StatusEnactment
			logger.Info("subnet entered enactment", "id", id, "epoch", epoch)
			return s.saveSubnet(sub, false)
		}
	case StatusActive:
		stake, err := s.staker.DelegateStake(id)
		if err != nil {
			return err
		}
		if stake.Cmp(s.curve.MinDelegateStake(sub.MemoryMB)) < 0 {
			return s.removeSubnet(sub, ReasonMinSubnetDelegateStake, block)
		}
		validators, err := s.ValidatorCount(id, epoch)
		if err != nil {
			return err
		}
		if validators < sub.MinNodes {
			sub.Penalties++
			if sub.Penalties > s.cfg.MaxSubnetPenalties {
				return s.removeSubnet(sub, ReasonMaxPenalties, block)
			}
			logger.Info("subnet penalised", "id", id, "validators", validators, "minNodes", sub.MinNodes, "penalties", sub.Penalties)
			return s.saveSubnet(sub, false)
		}
	}
	return nil
}

// enforceMaxSubnets removes the active subnets with the least delegate stake
// until the active count is within the ceiling. Ties remove the newest subnet.
func (s *Service) enforceMaxSubnets(block uint32) error {
	limit, err := s.params.GetOr(axon.KeyMaxSubnets, uint64(s.cfg.MaxSubnets))
	if err != nil {
		return err
	}
	active, err := s.ActiveSubnets()
	if err != nil {
		return err
	}
	if uint64(len(active)) <= limit {
		return nil
	}
	stakes := make([]*big.Int, len(active))
	for i, sub := range active {
		if stakes[i], err = s.staker.DelegateStake(sub.ID); err != nil {
			return err
		}
	}
	for uint64(len(active)) > limit {
		lowest := 0
		for i := 1; i < len(active); i++ {
			if stakes[i].Cmp(stakes[lowest]) <= 0 {
				lowest = i
			}
		}
		if err := s.removeSubnet(active[lowest], ReasonMaxSubnets, block); err != nil {
			return err
		}
		active = append(active[:lowest], active[lowest+1:]...)
		stakes = append(stakes[:lowest], stakes[lowest+1:]...)
	}
	return nil
}

// graduate advances every node that spent ClassGraduationEpochs in its class.
func (s *Service) graduate(id, epoch uint32) error {
	nodes, err := s.Nodes(id)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if n.Class >= ClassValidator || epoch < n.ClassStartEpoch+s.cfg.ClassGraduationEpochs {
			continue
		}
		n.Class = n.Class.Next()
		n.ClassStartEpoch = epoch
		if err := s.SaveNode(id, n); err != nil {
			return err
		}
		logger.Debug("node graduated", "subnet", id, "node", n.ID, "class", n.Class)
	}
	return nil
}

package keeper_test

import (
	"github.com/gametrade/zkescrow/modules/escrow/types"
)

func (s *KeeperTestSuite) TestSetStakePercent() {
	err := s.keeper.SetStakePercent(stranger, 20)
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	err = s.keeper.SetStakePercent(authority, 101)
	s.Require().ErrorIs(err, types.ErrInvalidStakePercent)
	s.Require().Equal(uint32(10), s.keeper.GetParams().StakePercent)

	s.Require().NoError(s.keeper.SetStakePercent(authority, types.MaxStakePercent))
	s.Require().Equal(types.MaxStakePercent, s.keeper.GetParams().StakePercent)
}

func (s *KeeperTestSuite) TestSetResolver() {
	err := s.keeper.SetResolver(stranger, stranger)
	s.Require().ErrorIs(err, types.ErrUnauthorized)
	s.Require().Equal(resolver, s.keeper.GetParams().Resolver)

	s.Require().NoError(s.keeper.SetResolver(authority, stranger))
	s.Require().Equal(stranger, s.keeper.GetParams().Resolver)

	// the previous resolver loses the capability immediately
	id := s.createAcknowledged()
	err = s.keeper.ResolveWithProof(resolver, id, true)
	s.Require().ErrorIs(err, types.ErrUnauthorized)
	s.Require().NoError(s.keeper.ResolveWithProof(stranger, id, true))
}

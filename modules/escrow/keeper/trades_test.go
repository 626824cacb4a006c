package keeper_test

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/gametrade/zkescrow/modules/escrow/types"
)

func (s *KeeperTestSuite) TestCreateTrade() {
	testCases := []struct {
		name     string
		malleate func()
		run      func() (uint64, error)
		expErr   error
	}{
		{
			name:     "success",
			malleate: func() {},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, s.price)
			},
			expErr: nil,
		},
		{
			name:     "buyer equals seller",
			malleate: func() {},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, buyer, goodID, deliveryID, s.price)
			},
			expErr: types.ErrInvalidInput,
		},
		{
			name:     "empty delivery identifier",
			malleate: func() {},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, seller, goodID, "", s.price)
			},
			expErr: types.ErrInvalidInput,
		},
		{
			name:     "zero amount",
			malleate: func() {},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, sdkmath.ZeroInt())
			},
			expErr: types.ErrInvalidInput,
		},
		{
			name:     "negative amount",
			malleate: func() {},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, sdkmath.NewInt(-1))
			},
			expErr: types.ErrInvalidInput,
		},
		{
			name: "allowance below amount",
			malleate: func() {
				s.bank.Approve(buyer, sdkmath.ZeroInt())
			},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, s.price)
			},
			expErr: types.ErrInvalidInput,
		},
		{
			name:     "balance below amount",
			malleate: func() {},
			run: func() (uint64, error) {
				overdraft := s.price.AddRaw(1)
				s.bank.Approve(buyer, overdraft)
				return s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, overdraft)
			},
			expErr: types.ErrInvalidInput,
		},
		{
			name: "transfer failure",
			malleate: func() {
				s.bank.SetFailing(true)
			},
			run: func() (uint64, error) {
				return s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, s.price)
			},
			expErr: types.ErrTransferFailed,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.malleate()

			id, err := tc.run()
			if tc.expErr != nil {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Empty(s.keeper.GetAllTrades(), "failed create must not leave a record")
				return
			}

			s.Require().NoError(err)
			s.Require().Equal(uint64(1), id)

			trade, found := s.keeper.GetTrade(id)
			s.Require().True(found)
			s.Require().Equal(types.StatusPending, trade.Status)
			s.Require().Equal(buyer, trade.Buyer)
			s.Require().Equal(seller, trade.Seller)
			s.Require().Equal(deliveryID, trade.DeliveryID)
			s.Require().Equal(s.clock.Now(), trade.CreatedAt)
			s.Require().True(trade.AcknowledgedAt.IsZero())
			s.Require().True(trade.Stake.IsZero())

			s.requireBalance(buyer, 0)
			s.requireBalance(types.GetEscrowAddress(), priceUnits)
		})
	}
}

func (s *KeeperTestSuite) TestCreateTradeAssignsMonotonicIDs() {
	first := s.createTrade()

	s.fund(buyer, s.price)
	second, err := s.keeper.CreateTrade(buyer, seller, goodID, deliveryID, s.price)
	s.Require().NoError(err)
	s.Require().Equal(first+1, second)
}

func (s *KeeperTestSuite) TestCancelTrade() {
	s.Run("success refunds payment in full", func() {
		s.SetupTest()
		id := s.createTrade()

		s.Require().NoError(s.keeper.CancelTrade(buyer, id))
		s.requireStatus(id, types.StatusCancelled)
		s.requireBalance(buyer, priceUnits)
		s.requireBalance(types.GetEscrowAddress(), 0)
	})

	s.Run("unknown trade", func() {
		s.SetupTest()
		err := s.keeper.CancelTrade(buyer, 99)
		s.Require().ErrorIs(err, types.ErrTradeNotFound)
	})

	s.Run("caller is not the buyer", func() {
		s.SetupTest()
		id := s.createTrade()

		err := s.keeper.CancelTrade(seller, id)
		s.Require().ErrorIs(err, types.ErrUnauthorized)
		s.requireStatus(id, types.StatusPending)
	})

	s.Run("acknowledged trade cannot be cancelled", func() {
		s.SetupTest()
		id := s.createAcknowledged()

		err := s.keeper.CancelTrade(buyer, id)
		s.Require().ErrorIs(err, types.ErrInvalidState)
	})

	s.Run("second cancel has no effect", func() {
		s.SetupTest()
		id := s.createTrade()
		s.Require().NoError(s.keeper.CancelTrade(buyer, id))

		err := s.keeper.CancelTrade(buyer, id)
		s.Require().ErrorIs(err, types.ErrInvalidState)
		s.requireBalance(buyer, priceUnits)
	})

	s.Run("failed refund rolls the trade back", func() {
		s.SetupTest()
		id := s.createTrade()
		s.bank.SetFailing(true)

		err := s.keeper.CancelTrade(buyer, id)
		s.Require().ErrorIs(err, types.ErrTransferFailed)
		s.requireStatus(id, types.StatusPending)
	})
}

func (s *KeeperTestSuite) TestReclaimExpired() {
	s.Run("one second before the deadline fails", func() {
		s.SetupTest()
		id := s.createTrade()
		s.clock.Advance(types.AcknowledgeDeadline - time.Second)

		err := s.keeper.ReclaimExpired(buyer, id)
		s.Require().ErrorIs(err, types.ErrTimeNotElapsed)
		s.requireStatus(id, types.StatusPending)
	})

	s.Run("at exactly the deadline succeeds", func() {
		s.SetupTest()
		id := s.createTrade()
		s.clock.Advance(types.AcknowledgeDeadline)

		s.Require().NoError(s.keeper.ReclaimExpired(buyer, id))
		s.requireStatus(id, types.StatusRefunded)
		s.requireBalance(buyer, priceUnits)

		// no further seller action is possible
		err := s.keeper.Acknowledge(seller, id)
		s.Require().ErrorIs(err, types.ErrInvalidState)
	})

	s.Run("caller is not the buyer", func() {
		s.SetupTest()
		id := s.createTrade()
		s.clock.Advance(types.AcknowledgeDeadline)

		err := s.keeper.ReclaimExpired(stranger, id)
		s.Require().ErrorIs(err, types.ErrUnauthorized)
	})

	s.Run("acknowledged trade cannot be reclaimed", func() {
		s.SetupTest()
		id := s.createAcknowledged()
		s.clock.Advance(types.AcknowledgeDeadline)

		err := s.keeper.ReclaimExpired(buyer, id)
		s.Require().ErrorIs(err, types.ErrInvalidState)
	})
}

func (s *KeeperTestSuite) TestAcknowledge() {
	s.Run("success locks stake and records the time", func() {
		s.SetupTest()
		id := s.createTrade()
		ackTime := s.clock.Now()

		s.Require().NoError(s.keeper.Acknowledge(seller, id))

		trade, found := s.keeper.GetTrade(id)
		s.Require().True(found)
		s.Require().Equal(types.StatusAcknowledged, trade.Status)
		s.Require().Equal(ackTime, trade.AcknowledgedAt)
		s.Require().Equal(s.stake.String(), trade.Stake.String())

		s.requireBalance(seller, 0)
		s.requireBalance(types.GetEscrowAddress(), priceUnits+stakeUnits)
	})

	s.Run("caller is not the seller", func() {
		s.SetupTest()
		id := s.createTrade()

		err := s.keeper.Acknowledge(buyer, id)
		s.Require().ErrorIs(err, types.ErrUnauthorized)
	})

	s.Run("failed stake pull aborts the acknowledgment", func() {
		s.SetupTest()
		id := s.createTrade()
		s.bank.Approve(seller, sdkmath.ZeroInt())

		err := s.keeper.Acknowledge(seller, id)
		s.Require().ErrorIs(err, types.ErrTransferFailed)

		trade, found := s.keeper.GetTrade(id)
		s.Require().True(found)
		s.Require().Equal(types.StatusPending, trade.Status)
		s.Require().True(trade.AcknowledgedAt.IsZero())
		s.Require().True(trade.Stake.IsZero())
	})

	s.Run("zero stake percent pulls nothing", func() {
		s.SetupTest()
		s.Require().NoError(s.keeper.SetStakePercent(authority, 0))
		id := s.createTrade()

		s.Require().NoError(s.keeper.Acknowledge(seller, id))

		trade, _ := s.keeper.GetTrade(id)
		s.Require().True(trade.Stake.IsZero())
		s.requireBalance(seller, stakeUnits)
	})

	s.Run("every non-pending status is rejected", func() {
		nonPending := map[string]func() uint64{
			"cancelled": func() uint64 {
				id := s.createTrade()
				s.Require().NoError(s.keeper.CancelTrade(buyer, id))
				return id
			},
			"completed": func() uint64 {
				id := s.createAcknowledged()
				s.clock.Advance(types.DisputeWindow)
				s.Require().NoError(s.keeper.ClaimAfterWindow(seller, id))
				return id
			},
			"refunded": func() uint64 {
				id := s.createAcknowledged()
				s.Require().NoError(s.keeper.ResolveWithProof(resolver, id, false))
				return id
			},
		}

		for name, setup := range nonPending {
			s.Run(name, func() {
				s.SetupTest()
				id := setup()

				err := s.keeper.Acknowledge(seller, id)
				s.Require().ErrorIs(err, types.ErrInvalidState)
			})
		}
	})
}

func (s *KeeperTestSuite) TestClaimAfterWindow() {
	s.Run("one second before the window closes fails", func() {
		s.SetupTest()
		id := s.createAcknowledged()
		s.clock.Advance(types.DisputeWindow - time.Second)

		err := s.keeper.ClaimAfterWindow(seller, id)
		s.Require().ErrorIs(err, types.ErrTimeNotElapsed)
		s.requireStatus(id, types.StatusAcknowledged)
	})

	s.Run("at exactly the window close succeeds", func() {
		s.SetupTest()
		id := s.createAcknowledged()
		s.clock.Advance(types.DisputeWindow)

		s.Require().NoError(s.keeper.ClaimAfterWindow(seller, id))
		s.requireStatus(id, types.StatusCompleted)
		s.requireBalance(seller, priceUnits+stakeUnits)
		s.requireBalance(types.GetEscrowAddress(), 0)
	})

	s.Run("caller is not the seller", func() {
		s.SetupTest()
		id := s.createAcknowledged()
		s.clock.Advance(types.DisputeWindow)

		err := s.keeper.ClaimAfterWindow(buyer, id)
		s.Require().ErrorIs(err, types.ErrUnauthorized)
	})

	s.Run("pending trade cannot be claimed", func() {
		s.SetupTest()
		id := s.createTrade()
		s.clock.Advance(types.DisputeWindow)

		err := s.keeper.ClaimAfterWindow(seller, id)
		s.Require().ErrorIs(err, types.ErrInvalidState)
	})
}

func (s *KeeperTestSuite) TestResolveWithProof() {
	s.Run("owns-good pays the seller exactly once", func() {
		s.SetupTest()
		id := s.createAcknowledged()

		s.Require().NoError(s.keeper.ResolveWithProof(resolver, id, true))
		s.requireStatus(id, types.StatusCompleted)
		s.requireBalance(seller, priceUnits+stakeUnits)
		s.requireBalance(buyer, 0)

		// a replayed resolution fails and moves no further funds
		err := s.keeper.ResolveWithProof(resolver, id, true)
		s.Require().ErrorIs(err, types.ErrInvalidState)
		s.requireBalance(seller, priceUnits+stakeUnits)
	})

	s.Run("not-owns refunds the buyer and returns the stake", func() {
		s.SetupTest()
		id := s.createAcknowledged()

		s.Require().NoError(s.keeper.ResolveWithProof(resolver, id, false))
		s.requireStatus(id, types.StatusRefunded)
		s.requireBalance(buyer, priceUnits)
		s.requireBalance(seller, stakeUnits)
		s.requireBalance(types.GetEscrowAddress(), 0)
	})

	s.Run("caller is not the resolver", func() {
		s.SetupTest()
		id := s.createAcknowledged()

		err := s.keeper.ResolveWithProof(stranger, id, true)
		s.Require().ErrorIs(err, types.ErrUnauthorized)
		s.requireStatus(id, types.StatusAcknowledged)
	})

	s.Run("pending trade cannot be resolved", func() {
		s.SetupTest()
		id := s.createTrade()

		err := s.keeper.ResolveWithProof(resolver, id, true)
		s.Require().ErrorIs(err, types.ErrInvalidState)
	})

	s.Run("failed payout rolls the trade back", func() {
		s.SetupTest()
		id := s.createAcknowledged()
		s.bank.SetFailing(true)

		err := s.keeper.ResolveWithProof(resolver, id, true)
		s.Require().ErrorIs(err, types.ErrTransferFailed)
		s.requireStatus(id, types.StatusAcknowledged)
	})
}

// The refund path makes two transfers (buyer refund, stake return). A stake
// return failing after the refund committed must never leave a state where
// the seller can still be paid the price on top of the refund.
func (s *KeeperTestSuite) TestResolveWithProofRefundAtomicity() {
	s.Run("failed stake return pulls the refund back", func() {
		s.SetupTest()
		s.useBank(&failingTransferBank{Ledger: s.bank, failAt: 2})
		id := s.createAcknowledged()

		// the committed refund is recoverable: the buyer allowance covers it
		s.bank.Approve(buyer, s.price)

		err := s.keeper.ResolveWithProof(resolver, id, false)
		s.Require().ErrorIs(err, types.ErrTransferFailed)
		s.requireStatus(id, types.StatusAcknowledged)
		s.requireBalance(buyer, 0)
		s.requireBalance(seller, 0)
		s.requireBalance(types.GetEscrowAddress(), priceUnits+stakeUnits)
		s.Require().NoError(s.keeper.EscrowBalanceInvariant())

		// once transfers recover the trade resolves normally
		s.Require().NoError(s.keeper.ResolveWithProof(resolver, id, false))
		s.requireBalance(buyer, priceUnits)
		s.requireBalance(seller, stakeUnits)
	})

	s.Run("unrecoverable refund leaves the trade refunded", func() {
		s.SetupTest()
		s.useBank(&failingTransferBank{Ledger: s.bank, failAt: 2})
		id := s.createAcknowledged()

		// no buyer allowance: the committed refund cannot be pulled back
		err := s.keeper.ResolveWithProof(resolver, id, false)
		s.Require().ErrorIs(err, types.ErrTransferFailed)

		// the buyer keeps the refund and the trade is terminal; no claim or
		// replay can pay the seller the price as well
		s.requireStatus(id, types.StatusRefunded)
		s.requireBalance(buyer, priceUnits)
		s.requireBalance(seller, 0)
		s.requireBalance(types.GetEscrowAddress(), stakeUnits)

		s.clock.Advance(types.DisputeWindow)
		s.Require().ErrorIs(s.keeper.ClaimAfterWindow(seller, id), types.ErrInvalidState)
		s.Require().ErrorIs(s.keeper.ResolveWithProof(resolver, id, true), types.ErrInvalidState)
	})
}

// Status only ever moves forward: once Pending or Acknowledged is left, no
// sequence of calls can transition the trade again.
func (s *KeeperTestSuite) TestStatusIsMonotone() {
	id := s.createAcknowledged()
	s.Require().NoError(s.keeper.ResolveWithProof(resolver, id, true))

	s.Require().ErrorIs(s.keeper.CancelTrade(buyer, id), types.ErrInvalidState)
	s.Require().ErrorIs(s.keeper.Acknowledge(seller, id), types.ErrInvalidState)
	s.Require().ErrorIs(s.keeper.ResolveWithProof(resolver, id, false), types.ErrInvalidState)

	s.clock.Advance(types.AcknowledgeDeadline + types.DisputeWindow)
	s.Require().ErrorIs(s.keeper.ReclaimExpired(buyer, id), types.ErrInvalidState)
	s.Require().ErrorIs(s.keeper.ClaimAfterWindow(seller, id), types.ErrInvalidState)

	s.requireStatus(id, types.StatusCompleted)
}

func (s *KeeperTestSuite) TestEscrowBalanceInvariant() {
	s.Require().NoError(s.keeper.EscrowBalanceInvariant())

	id := s.createAcknowledged()
	s.Require().NoError(s.keeper.EscrowBalanceInvariant())

	s.Require().NoError(s.keeper.ResolveWithProof(resolver, id, false))
	s.Require().NoError(s.keeper.EscrowBalanceInvariant())
}

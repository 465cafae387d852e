package services

import (
	"context"
	"fmt"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/events"
	"clanhall/domain/interfaces"
	"clanhall/domain/utils"

	log "github.com/sirupsen/logrus"
)

type bidService struct {
	lotRepo        interfaces.LotRepository
	bidRepo        interfaces.BidRepository
	auctionRepo    interfaces.AuctionRepository
	holdRepo       interfaces.HoldRepository
	holds          interfaces.HoldService
	auctions       interfaces.AuctionService
	inventory      interfaces.InventoryService
	auditRepo      interfaces.AuditRepository
	eventPublisher interfaces.EventPublisher
}

// NewBidService creates a new bid processor.
func NewBidService(
	lotRepo interfaces.LotRepository,
	bidRepo interfaces.BidRepository,
	auctionRepo interfaces.AuctionRepository,
	holdRepo interfaces.HoldRepository,
	holds interfaces.HoldService,
	auctions interfaces.AuctionService,
	inventory interfaces.InventoryService,
	auditRepo interfaces.AuditRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.BidService {
	return &bidService{
		lotRepo:        lotRepo,
		bidRepo:        bidRepo,
		auctionRepo:    auctionRepo,
		holdRepo:       holdRepo,
		holds:          holds,
		auctions:       auctions,
		inventory:      inventory,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *bidService) PlaceBid(ctx context.Context, lotID, memberID, amount int64, idemKey string, maxAutoBid *int64) (*interfaces.BidReceipt, error) {
	// Retried requests with the same key return the original bid unchanged.
	if idemKey != "" {
		prior, err := s.bidRepo.GetByIdempotencyKey(ctx, idemKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if prior != nil {
			lot, err := s.lotRepo.GetByID(ctx, prior.LotID)
			if err != nil {
				return nil, fmt.Errorf("failed to get lot: %w", err)
			}
			return &interfaces.BidReceipt{Bid: prior, Lot: lot, WasIdemReplay: true}, nil
		}
	}

	if amount <= 0 {
		return nil, errs.Validationf("bid amount %d must be positive", amount)
	}
	if maxAutoBid != nil && *maxAutoBid < amount {
		return nil, errs.Validationf("auto-bid ceiling %d cannot be below bid amount %d", *maxAutoBid, amount)
	}

	now := time.Now().UTC()

	lot, err := s.lotRepo.GetByIDForUpdate(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	if lot == nil {
		return nil, errs.NotFound("lot", lotID)
	}
	if !lot.IsActive() {
		return nil, errs.InvalidStatef("lot %d is %s, not open for bidding", lotID, lot.Status)
	}
	if lot.DeadlinePassed(now) {
		return nil, errs.InvalidStatef("lot %d deadline has passed", lotID)
	}

	auction, err := s.auctionRepo.GetByID(ctx, lot.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return nil, errs.NotFound("auction", lot.AuctionID)
	}

	registered, err := s.auctionRepo.IsParticipant(ctx, auction.ID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participant: %w", err)
	}
	if !registered {
		return nil, errs.Forbiddenf("member %d is not a participant of auction %d", memberID, auction.ID)
	}

	if minBid := lot.MinBid(); amount < minBid {
		return nil, errs.Validationf("bid %d is below minimum %d", amount, minBid)
	}

	prevLeader, err := s.bidRepo.GetHighestByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current leading bid: %w", err)
	}

	bid, err := s.recordBid(ctx, lot, memberID, amount, idemKey, maxAutoBid, false)
	if err != nil {
		return nil, err
	}

	if err := s.displaceLeader(ctx, lot, prevLeader, bid); err != nil {
		return nil, err
	}

	receipt := &interfaces.BidReceipt{Bid: bid, Lot: lot}

	// Anti-sniper: a late bid pushes the deadline out so a last-second
	// snipe can always be answered.
	if lot.EndsAt != nil && auction.ShouldExtendDeadline(now, *lot.EndsAt) {
		newEndsAt := now.Add(auction.AntiSniperExtension)
		lot.EndsAt = &newEndsAt
		receipt.Extended = true
		s.publish(events.TimerExtendedEvent{
			LotID:     lot.ID,
			AuctionID: auction.ID,
			NewEndsAt: newEndsAt.Unix(),
		})
	}

	lot.CurrentPrice = amount
	lot.WinnerMemberID = &memberID
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to update lot: %w", err)
	}

	s.publish(events.BidPlacedEvent{
		BidID:     bid.ID,
		LotID:     lot.ID,
		AuctionID: auction.ID,
		MemberID:  memberID,
		Amount:    amount,
	})

	if bid.HasCeiling() {
		autoBid, err := s.resolveProxies(ctx, auction, lot)
		if err != nil {
			return nil, err
		}
		receipt.AutoBid = autoBid
	}

	s.auditBid(ctx, bid)
	return receipt, nil
}

// recordBid places the hold, writes the bid row and links the two.
func (s *bidService) recordBid(ctx context.Context, lot *entities.Lot, memberID, amount int64, idemKey string, maxAutoBid *int64, isAuto bool) (*entities.Bid, error) {
	hold, err := s.holds.PlaceHold(ctx, memberID, amount)
	if err != nil {
		return nil, err
	}

	bid := &entities.Bid{
		LotID:      lot.ID,
		MemberID:   memberID,
		ClanID:     hold.ClanID,
		Amount:     amount,
		MaxAutoBid: maxAutoBid,
		IsAutoBid:  isAuto,
		HoldID:     &hold.ID,
	}
	if idemKey != "" {
		bid.IdempotencyKey = &idemKey
	}
	if err := s.bidRepo.Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	if err := s.holdRepo.AttachBid(ctx, hold.ID, bid.ID); err != nil {
		return nil, fmt.Errorf("failed to attach bid to hold: %w", err)
	}
	return bid, nil
}

// displaceLeader releases the previous leading bid's hold. A raised bid by
// the same member releases their earlier hold too (one active hold per lot
// and leader); the outbid notification only goes to a different member.
func (s *bidService) displaceLeader(ctx context.Context, lot *entities.Lot, prev, next *entities.Bid) error {
	if prev == nil || prev.HoldID == nil {
		return nil
	}

	if err := s.holds.ReleaseHold(ctx, *prev.HoldID); err != nil {
		return fmt.Errorf("failed to release previous leader's hold: %w", err)
	}

	if prev.MemberID != next.MemberID {
		s.publish(events.OutbidEvent{
			LotID:          lot.ID,
			OutbidMemberID: prev.MemberID,
			NewLeaderID:    next.MemberID,
			NewPrice:       next.Amount,
		})
	}
	return nil
}

// resolveProxies runs one round of ascending-proxy resolution: the
// highest-ceiling bidder is raised to one step above the runner-up ceiling,
// capped at their own ceiling, so the leader pays the minimum needed to beat
// the runner-up and never their declared maximum. Resolution does not cascade
// to a third proxy bidder within the same round.
func (s *bidService) resolveProxies(ctx context.Context, auction *entities.Auction, lot *entities.Lot) (*entities.Bid, error) {
	proxies, err := s.bidRepo.GetProxyBidsByLot(ctx, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proxy bids: %w", err)
	}

	top, second := topTwoCeilings(proxies)
	if top == nil || second == nil {
		return nil, nil
	}

	target := second.Ceiling() + lot.MinStep
	if target > top.Ceiling() {
		target = top.Ceiling()
	}
	if target <= lot.CurrentPrice {
		return nil, nil
	}

	prevLeader, err := s.bidRepo.GetHighestByLot(ctx, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current leading bid: %w", err)
	}

	ceiling := top.Ceiling()
	autoBid, err := s.recordBid(ctx, lot, top.MemberID, target, "", &ceiling, true)
	if err != nil {
		// A ceiling the proxy bidder can no longer cover is their problem,
		// not the manual bidder's: skip the raise and keep the manual bid.
		if errs.IsInsufficientFunds(err) {
			log.WithError(err).WithFields(log.Fields{
				"lotID":    lot.ID,
				"memberID": top.MemberID,
				"amount":   target,
			}).Warn("Auto-bid skipped, proxy bidder cannot cover the raise")
			return nil, nil
		}
		return nil, err
	}

	if err := s.displaceLeader(ctx, lot, prevLeader, autoBid); err != nil {
		return nil, err
	}

	lot.CurrentPrice = target
	winner := top.MemberID
	lot.WinnerMemberID = &winner
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to update lot: %w", err)
	}

	s.publish(events.BidPlacedEvent{
		BidID:     autoBid.ID,
		LotID:     lot.ID,
		AuctionID: auction.ID,
		MemberID:  top.MemberID,
		Amount:    target,
		IsAutoBid: true,
	})

	log.WithFields(log.Fields{
		"lotID":    lot.ID,
		"memberID": top.MemberID,
		"amount":   target,
		"ceiling":  ceiling,
	}).Info("Auto-bid placed")
	return autoBid, nil
}

// topTwoCeilings reduces proxy bids to the best ceiling per member and
// returns the two highest, preferring the earlier bid on equal ceilings.
func topTwoCeilings(proxies []*entities.Bid) (top, second *entities.Bid) {
	best := make(map[int64]*entities.Bid)
	for _, b := range proxies {
		cur, ok := best[b.MemberID]
		if !ok || b.Ceiling() > cur.Ceiling() {
			best[b.MemberID] = b
		}
	}

	for _, b := range best {
		switch {
		case top == nil || beats(b, top):
			top, second = b, top
		case second == nil || beats(b, second):
			second = b
		}
	}
	return top, second
}

func beats(a, b *entities.Bid) bool {
	if a.Ceiling() != b.Ceiling() {
		return a.Ceiling() > b.Ceiling()
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (s *bidService) FinishLot(ctx context.Context, lotID int64) (*interfaces.LotCloseResult, error) {
	lot, err := s.lotRepo.GetByIDForUpdate(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	if lot == nil {
		return nil, errs.NotFound("lot", lotID)
	}
	if !lot.IsActive() {
		return nil, errs.InvalidStatef("lot %d is %s, cannot be finished", lotID, lot.Status)
	}

	winning, err := s.bidRepo.GetHighestByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winning bid: %w", err)
	}

	result := &entities.LotResult{LotID: lot.ID}

	if winning != nil {
		if winning.HoldID == nil {
			return nil, errs.InvalidStatef("winning bid %d has no hold", winning.ID)
		}
		if err := s.holds.FinalizeHold(ctx, *winning.HoldID); err != nil {
			return nil, fmt.Errorf("failed to finalize winner's hold: %w", err)
		}
		if err := s.inventory.DecrementQuantity(ctx, lot.ItemID, lot.Quantity); err != nil {
			return nil, fmt.Errorf("failed to decrement item stock: %w", err)
		}

		lot.Status = entities.LotStatusSold
		lot.WinnerMemberID = &winning.MemberID
		lot.CurrentPrice = winning.Amount

		result.WinnerMemberID = &winning.MemberID
		result.WinningBidID = &winning.ID
		result.FinalPrice = winning.Amount
		result.Outcome = entities.LotOutcomeSold
	} else {
		lot.Status = entities.LotStatusUnsold
		lot.WinnerMemberID = nil
		result.Outcome = entities.LotOutcomeUnsold
	}

	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to update lot: %w", err)
	}
	if err := s.lotRepo.CreateResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to create lot result: %w", err)
	}

	released := s.releaseRemainingHolds(ctx, lot, winning)

	s.publish(events.LotFinishedEvent{
		LotID:          lot.ID,
		AuctionID:      lot.AuctionID,
		Outcome:        result.Outcome,
		WinnerMemberID: result.WinnerMemberID,
		FinalPrice:     result.FinalPrice,
	})

	if err := s.auctions.AdvanceAfterLot(ctx, lot.AuctionID); err != nil {
		return nil, fmt.Errorf("failed to advance auction: %w", err)
	}

	auction, err := s.auctionRepo.GetByID(ctx, lot.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	if auction != nil {
		utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
			ClanID:     auction.ClanID,
			Action:     "lot.finish",
			EntityType: "lot",
			EntityID:   lot.ID,
			After:      map[string]any{"outcome": string(result.Outcome), "final_price": result.FinalPrice},
		})
	}

	return &interfaces.LotCloseResult{
		Result:          result,
		ReleasedHolds:   released,
		AuctionComplete: auction != nil && auction.Status == entities.AuctionStatusCompleted,
	}, nil
}

// releaseRemainingHolds releases every still-active hold on the lot except
// the winner's. Best-effort: one failed release is logged and does not abort
// the others.
func (s *bidService) releaseRemainingHolds(ctx context.Context, lot *entities.Lot, winning *entities.Bid) int {
	holds, err := s.holdRepo.GetActiveByLot(ctx, lot.ID)
	if err != nil {
		log.WithError(err).WithField("lotID", lot.ID).Error("Failed to list active holds for release")
		return 0
	}

	released := 0
	for _, hold := range holds {
		if winning != nil && winning.HoldID != nil && hold.ID == *winning.HoldID {
			continue
		}
		if err := s.holds.ReleaseHold(ctx, hold.ID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"lotID":  lot.ID,
				"holdID": hold.ID,
			}).Error("Failed to release hold on lot close")
			continue
		}
		released++
	}
	return released
}

func (s *bidService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish event")
	}
}

func (s *bidService) auditBid(ctx context.Context, bid *entities.Bid) {
	utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
		ClanID:        bid.ClanID,
		ActorMemberID: bid.MemberID,
		Action:        "bid.place",
		EntityType:    "bid",
		EntityID:      bid.ID,
		After:         map[string]any{"amount": bid.Amount, "lot_id": bid.LotID},
	})
}

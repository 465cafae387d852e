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

// DefaultLotDuration is how long a lot stays open when the auction does not
// override it.
const DefaultLotDuration = 10 * time.Minute

type auctionService struct {
	auctionRepo    interfaces.AuctionRepository
	lotRepo        interfaces.LotRepository
	itemRepo       interfaces.ItemRepository
	auditRepo      interfaces.AuditRepository
	eventPublisher interfaces.EventPublisher
	lotDuration    time.Duration
}

// NewAuctionService creates a new auction state machine service.
func NewAuctionService(auctionRepo interfaces.AuctionRepository, lotRepo interfaces.LotRepository, itemRepo interfaces.ItemRepository, auditRepo interfaces.AuditRepository, eventPublisher interfaces.EventPublisher, lotDuration time.Duration) interfaces.AuctionService {
	if lotDuration <= 0 {
		lotDuration = DefaultLotDuration
	}
	return &auctionService{
		auctionRepo:    auctionRepo,
		lotRepo:        lotRepo,
		itemRepo:       itemRepo,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
		lotDuration:    lotDuration,
	}
}

func (s *auctionService) CreateAuction(ctx context.Context, auction *entities.Auction) (*entities.Auction, error) {
	if auction.Title == "" {
		return nil, errs.Validationf("auction title cannot be empty")
	}
	if auction.AntiSniperEnabled && (auction.AntiSniperThreshold <= 0 || auction.AntiSniperExtension <= 0) {
		return nil, errs.Validationf("anti-sniper threshold and extension must be positive")
	}

	auction.Status = entities.AuctionStatusDraft
	if err := s.auctionRepo.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	s.audit(ctx, auction, "auction.create")
	return auction, nil
}

func (s *auctionService) AddLot(ctx context.Context, auctionID int64, lot *entities.Lot) (*entities.Lot, error) {
	if lot.StartPrice <= 0 {
		return nil, errs.Validationf("start price %d must be positive", lot.StartPrice)
	}
	if lot.MinStep <= 0 {
		return nil, errs.Validationf("min step %d must be positive", lot.MinStep)
	}
	if lot.Quantity <= 0 {
		return nil, errs.Validationf("lot quantity %d must be positive", lot.Quantity)
	}

	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return nil, errs.NotFound("auction", auctionID)
	}
	if !auction.IsDraft() {
		return nil, errs.InvalidStatef("cannot add lots to a %s auction", auction.Status)
	}

	item, err := s.itemRepo.GetByID(ctx, lot.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, errs.NotFound("item", lot.ItemID)
	}
	if !item.HasStock(lot.Quantity) {
		return nil, errs.Validationf("item %d has %d in stock, lot needs %d", item.ID, item.Quantity, lot.Quantity)
	}

	count, err := s.lotRepo.CountByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count lots: %w", err)
	}

	lot.AuctionID = auctionID
	lot.Status = entities.LotStatusPending
	lot.SortOrder = count
	if err := s.lotRepo.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to create lot: %w", err)
	}

	return lot, nil
}

// StartAuction moves a draft auction to active and opens its first lot.
func (s *auctionService) StartAuction(ctx context.Context, auctionID int64) error {
	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return errs.NotFound("auction", auctionID)
	}

	count, err := s.lotRepo.CountByAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to count lots: %w", err)
	}
	if err := auction.CanStart(count); err != nil {
		return errs.InvalidStatef("cannot start auction %d (%v)", auctionID, err)
	}

	oldStatus := auction.Status
	auction.Status = entities.AuctionStatusActive
	if err := s.auctionRepo.Update(ctx, auction); err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}

	if err := s.activateNextLot(ctx, auction); err != nil {
		return err
	}

	s.publishStatusChange(auction, oldStatus)
	s.audit(ctx, auction, "auction.start")
	return nil
}

func (s *auctionService) CancelAuction(ctx context.Context, auctionID int64) error {
	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return errs.NotFound("auction", auctionID)
	}
	if auction.IsTerminal() {
		return errs.InvalidStatef("auction %d is already %s", auctionID, auction.Status)
	}

	oldStatus := auction.Status
	auction.Status = entities.AuctionStatusCancelled
	if err := s.auctionRepo.Update(ctx, auction); err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}

	s.publishStatusChange(auction, oldStatus)
	s.audit(ctx, auction, "auction.cancel")
	return nil
}

func (s *auctionService) RegisterParticipant(ctx context.Context, auctionID, memberID int64) error {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return errs.NotFound("auction", auctionID)
	}
	if auction.IsTerminal() {
		return errs.InvalidStatef("auction %d is already %s", auctionID, auction.Status)
	}

	if err := s.auctionRepo.AddParticipant(ctx, auctionID, memberID); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// AdvanceAfterLot activates the next pending lot or completes the auction
// when none remains. Called by the bid processor after a lot resolves.
func (s *auctionService) AdvanceAfterLot(ctx context.Context, auctionID int64) error {
	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return errs.NotFound("auction", auctionID)
	}
	if !auction.IsActive() {
		return errs.InvalidStatef("auction %d is %s, not active", auctionID, auction.Status)
	}

	next, err := s.lotRepo.GetNextPending(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to get next pending lot: %w", err)
	}

	if next == nil {
		oldStatus := auction.Status
		auction.Status = entities.AuctionStatusCompleted
		if err := s.auctionRepo.Update(ctx, auction); err != nil {
			return fmt.Errorf("failed to complete auction: %w", err)
		}
		s.publishStatusChange(auction, oldStatus)
		s.audit(ctx, auction, "auction.complete")
		return nil
	}

	return s.activateLot(ctx, next)
}

func (s *auctionService) GetAuction(ctx context.Context, auctionID int64) (*entities.Auction, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return nil, errs.NotFound("auction", auctionID)
	}
	return auction, nil
}

func (s *auctionService) GetLots(ctx context.Context, auctionID int64) ([]*entities.Lot, error) {
	lots, err := s.lotRepo.GetByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lots: %w", err)
	}
	return lots, nil
}

// activateNextLot opens the lowest-sort-order pending lot. Only one lot per
// auction may be active at a time.
func (s *auctionService) activateNextLot(ctx context.Context, auction *entities.Auction) error {
	next, err := s.lotRepo.GetNextPending(ctx, auction.ID)
	if err != nil {
		return fmt.Errorf("failed to get next pending lot: %w", err)
	}
	if next == nil {
		return errs.InvalidStatef("auction %d has no pending lot to activate", auction.ID)
	}
	return s.activateLot(ctx, next)
}

func (s *auctionService) activateLot(ctx context.Context, lot *entities.Lot) error {
	endsAt := time.Now().UTC().Add(s.lotDuration)
	lot.Status = entities.LotStatusActive
	lot.EndsAt = &endsAt
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return fmt.Errorf("failed to activate lot: %w", err)
	}

	log.WithFields(log.Fields{
		"auctionID": lot.AuctionID,
		"lotID":     lot.ID,
		"endsAt":    endsAt,
	}).Info("Lot activated")
	return nil
}

func (s *auctionService) publishStatusChange(auction *entities.Auction, old entities.AuctionStatus) {
	event := events.AuctionUpdatedEvent{
		AuctionID: auction.ID,
		ClanID:    auction.ClanID,
		OldStatus: old,
		NewStatus: auction.Status,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish auction updated event")
	}
}

func (s *auctionService) audit(ctx context.Context, auction *entities.Auction, action string) {
	utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
		ClanID:        auction.ClanID,
		ActorMemberID: auction.CreatedByMemberID,
		Action:        action,
		EntityType:    "auction",
		EntityID:      auction.ID,
		After:         map[string]any{"status": string(auction.Status)},
	})
}

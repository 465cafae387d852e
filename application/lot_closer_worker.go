package application

import (
	"context"
	"fmt"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/interfaces"
	"clanhall/domain/services"

	log "github.com/sirupsen/logrus"
)

// LotCloserWorker settles active lots whose bidding deadline has passed.
type LotCloserWorker struct {
	uowFactory  UnitOfWorkFactory
	lotDuration time.Duration
}

// NewLotCloserWorker creates a new lot closer worker
func NewLotCloserWorker(uowFactory UnitOfWorkFactory, lotDuration time.Duration) *LotCloserWorker {
	return &LotCloserWorker{
		uowFactory:  uowFactory,
		lotDuration: lotDuration,
	}
}

// Start begins the lot closer worker
func (w *LotCloserWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	// Get the earliest active lot deadline from the database
	getNextDeadline := func() *time.Time {
		uow := w.uowFactory.CreateForClan(0)
		if err := uow.Begin(ctx); err != nil {
			log.Errorf("Failed to begin transaction for next lot deadline: %v", err)
			return nil
		}
		defer uow.Rollback()

		nextTime, err := uow.LotRepository().GetNextDeadline(ctx)
		if err != nil {
			log.Errorf("Failed to get next lot deadline: %v", err)
			return nil
		}
		return nextTime
	}

	go func() {
		log.Info("Lot closer worker started")

		for {
			// First, settle any past-due lots
			if err := w.processExpiredLots(ctx); err != nil {
				log.Errorf("Error processing expired lots: %v", err)
			}

			nextDeadline := getNextDeadline()
			if nextDeadline == nil {
				// No active lots, check again in 1 hour
				log.Info("No active lots with deadlines, checking again in 1 hour")
				select {
				case <-ctx.Done():
					log.Info("Lot closer worker shutting down (context cancelled)...")
					return
				case <-stopChan:
					log.Info("Lot closer worker shutting down (stop requested)...")
					return
				case <-time.After(1 * time.Hour):
					continue
				}
			}

			waitDuration := time.Until(*nextDeadline)
			if waitDuration <= 0 {
				// Deadline already passed, loop to process immediately
				continue
			}

			log.Infof("Next lot closes at %v (in %v)", nextDeadline.UTC(), waitDuration)

			select {
			case <-ctx.Done():
				log.Info("Lot closer worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Lot closer worker shutting down (stop requested)...")
				return
			case <-time.After(waitDuration):
				// Timer fired, loop to process
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// processExpiredLots settles all lots whose deadline has passed.
func (w *LotCloserWorker) processExpiredLots(ctx context.Context) error {
	// Cross-clan read to find expired lots; each lot is then settled in its
	// own clan-scoped transaction.
	uow := w.uowFactory.CreateForClan(0)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	expiredLots, err := uow.LotRepository().GetExpiredActive(ctx, time.Now().UTC())
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get expired lots: %w", err)
	}

	// Lots carry no clan reference; resolve it through the owning auction
	clanByLot := make(map[int64]int64, len(expiredLots))
	for _, lot := range expiredLots {
		auction, err := uow.AuctionRepository().GetByID(ctx, lot.AuctionID)
		if err != nil || auction == nil {
			log.Errorf("Failed to resolve auction %d for expired lot %d: %v", lot.AuctionID, lot.ID, err)
			continue
		}
		clanByLot[lot.ID] = auction.ClanID
	}
	uow.Rollback() // Close the read transaction

	if len(expiredLots) == 0 {
		return nil
	}

	log.Infof("Found %d expired lots to settle", len(expiredLots))

	var successCount, failureCount int
	for _, lot := range expiredLots {
		clanID, ok := clanByLot[lot.ID]
		if !ok {
			failureCount++
			continue
		}
		if err := w.closeLot(ctx, lot, clanID); err != nil {
			log.Errorf("Error settling lot %d for clan %d: %v", lot.ID, clanID, err)
			failureCount++
		} else {
			successCount++
		}
	}

	log.WithFields(log.Fields{
		"total_lots": len(expiredLots),
		"successful": successCount,
		"failed":     failureCount,
	}).Info("Completed expired lot processing")

	return nil
}

// closeLot settles a single lot inside a clan-scoped transaction.
func (w *LotCloserWorker) closeLot(ctx context.Context, lot *entities.Lot, clanID int64) error {
	var result *interfaces.LotCloseResult
	err := RunInTx(ctx, w.uowFactory, clanID, func(uow UnitOfWork) error {
		holdService := services.NewHoldService(
			uow.WalletRepository(),
			uow.HoldRepository(),
			uow.TransactionRepository(),
			uow.AuditRepository(),
			uow.EventBus(),
		)
		auctionService := services.NewAuctionService(
			uow.AuctionRepository(),
			uow.LotRepository(),
			uow.ItemRepository(),
			uow.AuditRepository(),
			uow.EventBus(),
			w.lotDuration,
		)
		inventoryService := services.NewInventoryService(uow.ItemRepository())
		bidService := services.NewBidService(
			uow.LotRepository(),
			uow.BidRepository(),
			uow.AuctionRepository(),
			uow.HoldRepository(),
			holdService,
			auctionService,
			inventoryService,
			uow.AuditRepository(),
			uow.EventBus(),
		)

		r, err := bidService.FinishLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"lot_id":           lot.ID,
		"clan_id":          clanID,
		"outcome":          result.Result.Outcome,
		"final_price":      result.Result.FinalPrice,
		"auction_complete": result.AuctionComplete,
	}).Info("Lot settled")

	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"clanhall/application"
	"clanhall/cmd"
	"clanhall/config"
	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/services"
	"clanhall/infrastructure"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error:", err)
			}
			return
		case "adjust-balance":
			if err := handleBalanceAdjustment(); err != nil {
				log.Fatal("Balance adjustment error:", err)
			}
			return
		case "add-member":
			if err := handleAddMember(); err != nil {
				log.Fatal("Add member error:", err)
			}
			return
		case "create-auction":
			if err := handleCreateAuction(); err != nil {
				log.Fatal("Create auction error:", err)
			}
			return
		case "create-draw":
			if err := handleCreateDraw(); err != nil {
				log.Fatal("Create draw error:", err)
			}
			return
		case "run-draw":
			if err := handleRunDraw(); err != nil {
				log.Fatal("Run draw error:", err)
			}
			return
		}
	}

	// Normal service operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: clanhall migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// withUnitOfWork runs an admin operation in a serializable transaction.
// Admin subcommands bypass NATS; events are dropped.
func withUnitOfWork(ctx context.Context, clanID int64, fn func(uow application.UnitOfWork) error) error {
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, infrastructure.NewNoopEventPublisher())
	return application.RunInTx(ctx, uowFactory, clanID, fn)
}

// handleBalanceAdjustment applies an administrative credit or debit to a
// member's wallet without going through the event bus.
func handleBalanceAdjustment() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: clanhall adjust-balance clan-id member-id amount")
	}
	clanID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid clan id: %w", err)
	}
	memberID, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}
	amount, err := strconv.ParseInt(os.Args[4], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if amount == 0 {
		return fmt.Errorf("amount cannot be zero")
	}

	ctx := context.Background()

	return withUnitOfWork(ctx, clanID, func(uow application.UnitOfWork) error {
		ledger := services.NewLedgerService(
			uow.WalletRepository(),
			uow.TransactionRepository(),
			uow.AuditRepository(),
			uow.EventBus(),
		)

		if amount > 0 {
			_, err = ledger.Credit(ctx, memberID, amount, entities.TransactionTypeAdminAdjust, nil, "")
		} else {
			_, err = ledger.Debit(ctx, memberID, -amount, entities.TransactionTypeAdminAdjust, nil, true, "")
		}
		if err != nil {
			return fmt.Errorf("failed to adjust balance: %w", err)
		}

		log.Printf("Adjusted balance of member %d in clan %d by %d", memberID, clanID, amount)
		return nil
	})
}

// handleAddMember creates a member profile and its wallet, seeded with the
// configured starting balance.
func handleAddMember() error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: clanhall add-member clan-id name [role]")
	}
	clanID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid clan id: %w", err)
	}
	name := os.Args[3]

	role := entities.MemberRoleMember
	if len(os.Args) > 4 {
		role = entities.MemberRole(os.Args[4])
		switch role {
		case entities.MemberRoleLeader, entities.MemberRoleElder, entities.MemberRoleMember:
		default:
			return fmt.Errorf("invalid role %q", os.Args[4])
		}
	}

	ctx := context.Background()
	cfg := config.Get()

	return withUnitOfWork(ctx, clanID, func(uow application.UnitOfWork) error {
		member := &entities.Member{ClanID: clanID, Name: name, Role: role}
		if err := uow.MemberRepository().Create(ctx, member); err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}
		if _, err := uow.WalletRepository().Create(ctx, member.ID, cfg.StartingBalance); err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}

		log.Printf("Created member %d (%s, %s) in clan %d with starting balance %d",
			member.ID, name, role, clanID, cfg.StartingBalance)
		return nil
	})
}

// handleCreateAuction creates a draft auction with the configured anti-sniper
// window and extension.
func handleCreateAuction() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: clanhall create-auction clan-id creator-member-id title")
	}
	clanID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid clan id: %w", err)
	}
	creatorID, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid creator member id: %w", err)
	}
	title := os.Args[4]

	ctx := context.Background()
	cfg := config.Get()

	return withUnitOfWork(ctx, clanID, func(uow application.UnitOfWork) error {
		auctions := services.NewAuctionService(
			uow.AuctionRepository(),
			uow.LotRepository(),
			uow.ItemRepository(),
			uow.AuditRepository(),
			uow.EventBus(),
			cfg.LotDuration,
		)

		auction, err := auctions.CreateAuction(ctx, &entities.Auction{
			ClanID:              clanID,
			Title:               title,
			AntiSniperEnabled:   true,
			AntiSniperThreshold: cfg.AntiSniperThreshold,
			AntiSniperExtension: cfg.AntiSniperExtension,
			CreatedByMemberID:   creatorID,
		})
		if err != nil {
			return fmt.Errorf("failed to create auction: %w", err)
		}

		log.Printf("Created auction %d (%s) in clan %d", auction.ID, title, clanID)
		return nil
	})
}

// handleCreateDraw commits a new weighted draw session and prints the seed
// hash so it can be published before the draw runs.
func handleCreateDraw() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: clanhall create-draw clan-id item-id quantity")
	}
	clanID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid clan id: %w", err)
	}
	itemID, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}
	quantity, err := strconv.ParseInt(os.Args[4], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity: %w", err)
	}

	ctx := context.Background()
	cfg := config.Get()

	return withUnitOfWork(ctx, clanID, func(uow application.UnitOfWork) error {
		randomizer := services.NewRandomizerService(
			uow.RandomizerRepository(),
			uow.MemberRepository(),
			services.NewInventoryService(uow.ItemRepository()),
			uow.AuditRepository(),
			uow.EventBus(),
			cfg.MinWeightBonus,
			cfg.MaxWeightBonus,
		)

		session, err := randomizer.CreateSession(ctx, clanID, itemID, quantity)
		if err != nil {
			return fmt.Errorf("failed to create draw session: %w", err)
		}

		log.Printf("Created draw session %d in clan %d, seed hash %s", session.ID, clanID, session.SeedHash)
		return nil
	})
}

// handleRunDraw reveals the seed of a committed session and selects the
// winner.
func handleRunDraw() error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: clanhall run-draw clan-id session-id")
	}
	clanID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid clan id: %w", err)
	}
	sessionID, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}

	ctx := context.Background()
	cfg := config.Get()

	return withUnitOfWork(ctx, clanID, func(uow application.UnitOfWork) error {
		randomizer := services.NewRandomizerService(
			uow.RandomizerRepository(),
			uow.MemberRepository(),
			services.NewInventoryService(uow.ItemRepository()),
			uow.AuditRepository(),
			uow.EventBus(),
			cfg.MinWeightBonus,
			cfg.MaxWeightBonus,
		)

		draw, err := randomizer.RunDraw(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to run draw: %w", err)
		}

		log.Printf("Draw session %d complete: winner member %d, roll %f",
			sessionID, draw.Result.WinnerMemberID, draw.Result.Roll)
		return nil
	})
}

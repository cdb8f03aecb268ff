package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"raffler/config"
	"raffler/database"
	"raffler/events"
	"raffler/gateway"
	"raffler/repository"
	"raffler/router"
	"raffler/service"

	"github.com/codegangsta/negroni"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting raffle marketplace...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	baseURL := cfg.DatabaseURL
	if baseURL == "" {
		baseURL = database.BuildBaseURL(cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUser, cfg.DatabasePassword)
	}
	db, err := database.NewConnection(ctx, database.ConstructDatabaseURL(baseURL, cfg.DatabaseName))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeEventLoggers(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize gateways
	payments, err := gateway.NewPaymentGateway(cfg.PaymentProvider)
	if err != nil {
		return fmt.Errorf("failed to initialize payment gateway: %w", err)
	}
	eligibility := gateway.NewStaticEligibilityGate(cfg.BlockedAliasIDs)

	// Initialize services
	listingService := service.NewListingService(uowFactory)
	purchaseService := service.NewPurchaseService(uowFactory, payments, eligibility)
	auditService := service.NewAuditService(uowFactory)
	log.Info("Services initialized successfully")

	// Initialize HTTP server
	n := negroni.New()
	n.UseHandler(router.New(listingService, purchaseService, auditService))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: n,
	}

	// Periodic expiry sweep; the purchase path also closes lazily on contact
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := listingService.CloseExpiredListings(ctx); err != nil {
					log.WithError(err).Error("Expiry sweep failed")
				}
			}
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown was not clean")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}

// subscribeEventLoggers attaches observability listeners to the bus. They run
// outside the purchase transaction so a slow or failing listener can never
// roll back a sale.
func subscribeEventLoggers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeWinnerSelected, func(ctx context.Context, e events.Event) {
		winner := e.(events.WinnerSelectedEvent)
		log.WithFields(log.Fields{
			"listingID":     winner.ListingID,
			"winningTicket": winner.WinningTicket,
			"winnerAliasID": winner.WinnerAliasID,
		}).Info("Winner selected")
	})
	bus.Subscribe(events.EventTypeListingClosed, func(ctx context.Context, e events.Event) {
		closed := e.(events.ListingClosedEvent)
		log.WithFields(log.Fields{
			"listingID": closed.ListingID,
			"reason":    closed.Reason,
		}).Info("Listing closed")
	})
	bus.Subscribe(events.EventTypeThresholdReached, func(ctx context.Context, e events.Event) {
		reached := e.(events.ThresholdReachedEvent)
		log.WithFields(log.Fields{
			"listingID":   reached.ListingID,
			"ticketsSold": reached.TicketsSold,
		}).Info("Listing threshold reached")
	})
}

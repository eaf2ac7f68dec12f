package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quitanda/internal/address"
	"quitanda/internal/auth"
	"quitanda/internal/backend"
	"quitanda/internal/cart"
	"quitanda/internal/catalog"
	"quitanda/internal/checkout"
	"quitanda/internal/config"
	"quitanda/internal/delivery"
	"quitanda/internal/favorites"
	"quitanda/internal/geocode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting quitanda storefront")

	// Cancel on interrupt so in-flight backend calls unwind cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize database connection pool
	poolOpts := backend.PoolOptions{
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		ConnMaxLifetime: time.Duration(cfg.Database.MaxConnLifetime) * time.Second,
		ConnMaxIdleTime: 30 * time.Minute,
	}
	pool, err := backend.NewPool(ctx, cfg.Database.ConnectionString(), poolOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize backend adapters
	cartBackend := backend.NewCartBackend(pool, logger)
	favoritesBackend := backend.NewFavoritesBackend(pool, logger)
	addressBackend := backend.NewAddressBackend(pool, logger)
	catalogBackend := backend.NewCatalogBackend(pool, logger)
	ordersBackend := backend.NewOrdersBackend(pool, logger)

	// Initialize delivery profile loader with S3 and local fallback
	fileLoader := delivery.NewFileLoader(logger)
	var profileLoader delivery.Loader

	if cfg.S3.Enabled {
		s3Loader, err := delivery.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			profileLoader = fileLoader
		} else {
			profileLoader = delivery.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		profileLoader = fileLoader
		logger.Info().Msg("using local file system for delivery profile (S3 disabled)")
	}

	// Resolve the delivery profile: configured document first, then the
	// store parameters from the environment.
	profile := delivery.DefaultProfile()
	profile.Store.Latitude = cfg.Store.Latitude
	profile.Store.Longitude = cfg.Store.Longitude
	profile.MaxRadiusKm = cfg.Store.MaxRadiusKm
	profile.DeliveryFee = cfg.Store.DeliveryFee

	if cfg.Delivery.ProfileFile != "" {
		loaded, err := profileLoader.Load(ctx, cfg.Delivery.ProfileFile)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("file", cfg.Delivery.ProfileFile).
				Msg("failed to load delivery profile, using configured defaults")
		} else {
			profile = *loaded
		}
	}

	// Initialize delivery checker
	geocoder := geocode.NewHTTPGeocoder(geocode.DefaultBaseURL, nil, logger)
	checker := delivery.NewChecker(profile, geocoder, logger)

	deliveryFee := decimal.NewFromFloat(profile.DeliveryFee)

	// Initialize session and state managers
	session := auth.NewSession(nil, logger)
	cartManager := cart.NewManager(cartBackend, logger)
	favoritesManager := favorites.NewManager(favoritesBackend, logger)
	addressRepo := address.NewRepository(addressBackend, logger)
	catalogService := catalog.NewService(catalogBackend, ordersBackend, logger)
	orchestrator := checkout.NewOrchestrator(cartManager, deliveryFee, logger)

	// Managers follow the session: sign-in loads state, sign-out resets it
	unsubscribe := session.Subscribe(func(user *auth.User) {
		cartManager.SetUser(ctx, user)
		favoritesManager.SetUser(ctx, user)
	})
	defer unsubscribe()

	store, radiusKm, radiusLabel := checker.Info()
	logger.Info().
		Float64("store_lat", store.Latitude).
		Float64("store_lon", store.Longitude).
		Float64("radius_km", radiusKm).
		Str("radius", radiusLabel).
		Str("delivery_fee", deliveryFee.String()).
		Msg("storefront ready")

	// An operator-supplied user id drives a smoke pass over the storefront
	// surfaces; without one, wiring is verified and the process exits.
	rawUserID := os.Getenv("STOREFRONT_USER_ID")
	if rawUserID == "" {
		logger.Info().Msg("no STOREFRONT_USER_ID set, nothing to do")
		return nil
	}

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("invalid STOREFRONT_USER_ID: %w", err)
	}

	session.Establish(auth.User{ID: userID})

	promos, err := catalogService.Promotions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch promotions: %w", err)
	}
	logger.Info().Int("count", len(promos)).Msg("promotions fetched")

	addresses, err := addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list addresses: %w", err)
	}
	logger.Info().Int("count", len(addresses)).Msg("addresses fetched")

	for _, addr := range addresses {
		check := checker.CheckByAddress(ctx, fmt.Sprintf(
			"%s, %s, %s - %s, %s",
			addr.Street, addr.Number, addr.City, addr.State, addr.CEP,
		))
		logger.Info().
			Int64("address_id", addr.ID).
			Bool("available", check.Available).
			Float64("distance_km", check.DistanceKm).
			Str("message", check.Message).
			Msg("delivery eligibility checked")
	}

	summary := orchestrator.Summary()
	logger.Info().
		Int("cart_items", cartManager.TotalItems()).
		Str("subtotal", summary.Subtotal.String()).
		Str("total", summary.Total.String()).
		Msg("cart state loaded")

	history, err := catalogService.History(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch order history: %w", err)
	}
	logger.Info().Int("count", len(history)).Msg("order history fetched")

	return nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	apiConfig "caja/src/api/config"
	registerUseCase "caja/src/register/application/usecase"
	registerPort "caja/src/register/domain/port"
	registerClient "caja/src/register/infrastructure/client"
	registerController "caja/src/register/infrastructure/controller"
	registerPersistence "caja/src/register/infrastructure/persistence"
	salesUseCase "caja/src/sales/application/usecase"
	salesPort "caja/src/sales/domain/port"
	salesCache "caja/src/sales/infrastructure/cache"
	salesClient "caja/src/sales/infrastructure/client"
	salesController "caja/src/sales/infrastructure/controller"
	salesPersistence "caja/src/sales/infrastructure/persistence"
	"caja/src/shared/infrastructure/backend"
	sharedConfig "caja/src/shared/infrastructure/config"
	"caja/src/shared/infrastructure/logger"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // Driver de PostgreSQL
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := sharedConfig.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("❌ Invalid logger configuration: %v", err)
	}
	logr.WithField("terminal_id", cfg.TerminalID).Info("🚀 Caja Service - Iniciando...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configurar el router con Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	sharedConfig.SetupSharedMiddleware(router, sharedConfig.DefaultSharedConfig(), logr)

	// Configurar Prometheus metrics si está habilitado
	if cfg.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logr.Info("/metrics endpoint registered successfully")
	} else {
		logr.Info("Prometheus metrics disabled")
	}

	// Conectar a la base de datos (opcional: journal, métodos de pago, reportes)
	db := openDatabase(ctx, cfg.DatabaseURL, logr)
	if db != nil {
		defer db.Close()
	}

	b := backend.NewClient(cfg.BackendURL, cfg.TerminalID, cfg.BackendTimeout, logr)

	// API v1 grupo de rutas
	v1 := router.Group("/api/v1")

	register, closeSnapshots, err := setupRegisterModule(ctx, v1, cfg, b, db, logr)
	if err != nil {
		logr.WithError(err).Fatal("❌ Could not configure register module")
	}
	defer closeSnapshots()

	setupSalesModule(ctx, v1, cfg, b, db, register, logr)

	// Configurar el módulo API (health check)
	apiCfg := apiConfig.DefaultAPIConfig()
	apiCfg.DB = db
	apiCfg.Version = "1.0.0"
	apiCfg.TerminalID = cfg.TerminalID
	apiCfg.RegisterState = func() string { return string(register.State()) }
	apiConfig.SetupAPIModule(router, v1, apiCfg)

	// Reconciliar snapshots pendientes y el estado de la caja antes de atender
	startRegister(ctx, register, logr)

	poller := registerUseCase.NewSummaryPoller(register, cfg.SummaryPoll, logr)
	go poller.Run(ctx)

	// Iniciar el servidor
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Infof("✅ Servidor Caja Service iniciado en http://localhost:%s", cfg.Port)
		logr.Infof("✅ Health endpoint: GET http://localhost:%s/health", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.WithError(err).Fatal("❌ Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logr.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.WithError(err).Error("Error during server shutdown")
	}
}

// openDatabase abre PostgreSQL si hay DATABASE_URL; sin conexión devuelve nil
func openDatabase(ctx context.Context, databaseURL string, logr logrus.FieldLogger) *sql.DB {
	if strings.TrimSpace(databaseURL) == "" {
		logr.Info("⚠️  DATABASE_URL not set, continuing without sale journal")
		return nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		logr.WithError(err).Warn("⚠️  Error al conectar a la base de datos, continuando sin DB")
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logr.WithError(err).Warn("⚠️  Error al verificar la conexión a la base de datos, continuando sin DB")
		_ = db.Close()
		return nil
	}

	logr.Info("✅ Conexión a la base de datos establecida con éxito")
	return db
}

// setupRegisterModule configura el módulo de caja y su almacenamiento de snapshots
func setupRegisterModule(
	ctx context.Context,
	router *gin.RouterGroup,
	cfg *sharedConfig.Config,
	b *backend.Client,
	db *sql.DB,
	logr logrus.FieldLogger,
) (*registerUseCase.RegisterSessionController, func(), error) {
	logr.Info("Configurando módulo Caja...")

	snapshots, closeFn, err := openSnapshotStore(ctx, cfg, db, logr)
	if err != nil {
		return nil, nil, err
	}

	threshold, err := cfg.Threshold()
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	register := registerUseCase.NewRegisterSessionController(
		registerClient.NewRegisterClient(b),
		snapshots,
		threshold,
		cfg.DefaultOperator,
		logr,
	)

	registerController.NewRegisterController(register, logr).RegisterRoutes(router)

	logr.Info("Módulo Caja configurado exitosamente")
	return register, closeFn, nil
}

// openSnapshotStore abre el almacenamiento local de snapshots según SNAPSHOT_DRIVER
func openSnapshotStore(
	ctx context.Context,
	cfg *sharedConfig.Config,
	db *sql.DB,
	logr logrus.FieldLogger,
) (registerPort.SnapshotRepository, func(), error) {
	if strings.EqualFold(cfg.SnapshotDriver, "postgres") {
		if db == nil {
			return nil, nil, errors.New("postgres snapshot driver selected but the database is not reachable")
		}
		repo := registerPersistence.NewSnapshotPostgresRepository(db, cfg.TerminalID)
		if pg, ok := repo.(*registerPersistence.SnapshotPostgresRepository); ok {
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, nil, err
			}
		}
		logr.Info("✅ Snapshot store: postgres")
		return repo, func() {}, nil
	}

	store, err := registerPersistence.OpenSnapshotSQLite(cfg.SnapshotPath)
	if err != nil {
		return nil, nil, err
	}
	logr.WithField("path", cfg.SnapshotPath).Info("✅ Snapshot store: sqlite")
	return store, func() { _ = store.Close() }, nil
}

// setupSalesModule configura carrito, cobro, listado y reportes
func setupSalesModule(
	ctx context.Context,
	router *gin.RouterGroup,
	cfg *sharedConfig.Config,
	b *backend.Client,
	db *sql.DB,
	register salesPort.RegisterGate,
	logr logrus.FieldLogger,
) {
	logr.Info("Configurando módulo Sales...")

	// Cache de métodos de pago con nombres por defecto
	pmCache := salesCache.NewPaymentMethodCache(logr)
	if db != nil {
		if err := pmCache.LoadFromDB(ctx, db); err != nil {
			logr.WithError(err).Warn("⚠️  Could not load payment methods cache, using defaults")
		}
	}

	// Diario de ventas (solo con base de datos)
	var journal salesPort.SaleJournalRepository
	if db != nil {
		repo := salesPersistence.NewSaleJournalPostgresRepository(db, cfg.TerminalID)
		if err := repo.EnsureSchema(ctx); err != nil {
			logr.WithError(err).Warn("⚠️  Sale journal disabled")
		} else {
			journal = repo
		}
	}

	// Crear casos de uso
	cartUC := salesUseCase.NewCartUseCase(salesClient.NewCatalogClient(b), logr)
	posSaleUC := salesUseCase.NewPOSSaleUseCase(
		cartUC,
		register,
		salesClient.NewSaleClient(b),
		journal,
		pmCache,
		cfg.TerminalID,
		cfg.Currency,
		logr,
	)

	var listPosSalesUC *salesUseCase.ListPosSalesUseCase
	var dailyReportUC *salesUseCase.DailyReportUseCase
	if journal != nil {
		listPosSalesUC = salesUseCase.NewListPosSalesUseCase(journal, register, time.Local)
		dailyReportUC = salesUseCase.NewDailyReportUseCase(journal, time.Local)
	}

	// Crear controladores y registrar rutas
	salesController.NewCartController(cartUC, logr).RegisterRoutes(router)
	salesController.NewSaleController(posSaleUC, listPosSalesUC, logr).RegisterRoutes(router)
	salesController.NewReportController(dailyReportUC, logr).RegisterRoutes(router)

	logr.Info("Módulo Sales configurado exitosamente")
}

// startRegister recupera cierres interrumpidos y carga la caja del backend
func startRegister(ctx context.Context, register *registerUseCase.RegisterSessionController, logr logrus.FieldLogger) {
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := register.RecoverPendingSnapshots(startCtx); err != nil {
		logr.WithError(err).Warn("⚠️  Could not recover pending close snapshots")
	}

	if _, err := register.Refresh(startCtx); err != nil {
		logr.WithError(err).Warn("⚠️  Could not load register state from backend, starting without session")
	}
}

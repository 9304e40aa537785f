package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/config"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
	httpapi "github.com/bodrovphone/DeskPlanner-sub000/internal/http"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/logger"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/metrics"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/repository"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/service"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/store"
)

func main() {
	// .env 仅本地开发用，不存在就跳过
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "deskplanner")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 存储：优先 Postgres，连不上退回内存存储（本地联测不挡路）
	var db *sql.DB
	var bookingStore repository.BookingStore
	var deskRepo repository.DeskRepository
	if cfg.DBEnabled {
		d, err := sql.Open("postgres", cfg.Database.GetDSN())
		if err == nil {
			if cfg.Database.MaxConns > 0 {
				d.SetMaxOpenConns(cfg.Database.MaxConns)
			}
			if cfg.Database.MaxIdle > 0 {
				d.SetMaxIdleConns(cfg.Database.MaxIdle)
			}
			err = d.PingContext(ctx)
		}
		if err != nil {
			log.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		} else {
			db = d
		}
	}
	if db != nil {
		pgBookings := repository.NewPostgresBookingStore(db)
		pgDesks := repository.NewPostgresDeskRepo(db)
		if err := pgDesks.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to ensure desks schema", zap.Error(err))
		}
		if err := pgBookings.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to ensure bookings schema", zap.Error(err))
		}
		bookingStore = pgBookings
		deskRepo = pgDesks
		log.Info("DB enabled for deskplanner")
	} else {
		memDesks := repository.NewMemoryDeskRepo()
		seedDesks(ctx, memDesks)
		bookingStore = repository.NewMemoryBookingStore()
		deskRepo = memDesks
		log.Info("using in-memory store")
	}

	// 快照缓存：Redis 可选，没有就直接算
	var cache *store.SnapshotCache
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis enabled but ping failed, running without snapshot cache", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			ttl := time.Duration(cfg.Planner.CacheTTLSeconds) * time.Second
			cache = store.NewSnapshotCache(store.NewRedisKV(redisClient), ttl, log)
		}
	}

	m := metrics.New()

	checker := service.NewConflictChecker(bookingStore, log)
	bookings := service.NewBookingService(bookingStore, checker, m, log)
	accrual := service.NewAccrualCalculator(log)
	horizon := service.NewHorizonScanner(bookingStore, log)

	defaultCurrency := domain.Currency(cfg.Planner.DefaultCurrency)
	if !defaultCurrency.Valid() {
		defaultCurrency = domain.CurrencyUSD
	}

	bookingHandler := httpapi.NewBookingHandler(bookings, bookingStore, cache, log)
	reportHandler := httpapi.NewReportHandler(bookingStore, deskRepo, accrual, horizon, cache, m, defaultCurrency, log)

	router := httpapi.NewRouter(log)
	router.RegisterPlannerRoutes(bookingHandler, reportHandler)
	router.HandleHandler("/metrics", promhttp.Handler())

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

// seedDesks 内存模式下种一个最小空间（2 个房间、4 个工位），日历页面不至于空白
func seedDesks(ctx context.Context, repo *repository.MemoryDeskRepo) {
	openSpace, _ := repo.CreateRoom(ctx, domain.Room{RoomName: "Open Space"})
	quietRoom, _ := repo.CreateRoom(ctx, domain.Room{RoomName: "Quiet Room"})
	_, _ = repo.CreateDesk(ctx, domain.Desk{RoomID: openSpace, Label: "Desk 1"})
	_, _ = repo.CreateDesk(ctx, domain.Desk{RoomID: openSpace, Label: "Desk 2"})
	_, _ = repo.CreateDesk(ctx, domain.Desk{RoomID: quietRoom, Label: "Desk 3"})
	_, _ = repo.CreateDesk(ctx, domain.Desk{RoomID: quietRoom, Label: "Desk 4"})
}

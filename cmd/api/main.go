package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/hostel-arena/hms-backend-go/internal/config"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	appHTTP "github.com/hostel-arena/hms-backend-go/internal/handler/http"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/broker"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/cron"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/jwt"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/metrics"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/printer"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/sse"
	"github.com/hostel-arena/hms-backend-go/internal/repository/memory"
	"github.com/hostel-arena/hms-backend-go/internal/repository/postgresql"
	attendanceService "github.com/hostel-arena/hms-backend-go/internal/service/attendance"
	leaveService "github.com/hostel-arena/hms-backend-go/internal/service/leave"
	messService "github.com/hostel-arena/hms-backend-go/internal/service/mess"
	"github.com/hostel-arena/hms-backend-go/internal/service/reconcile"
	residentService "github.com/hostel-arena/hms-backend-go/internal/service/resident"
	configService "github.com/hostel-arena/hms-backend-go/internal/service/sysconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	tx        database.Transactor
	residents resident.ResidentRepository
	leaves    leave.LeaveRepository
	config    sysconfig.ConfigRepository
	tokens    mess.TokenRepository
	close     func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).
		With(slog.String("env", cfg.App.Env)))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.NewSystem(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := sse.NewHub()
	var dispatcher event.Dispatcher = hub
	var relay *broker.RedisRelay
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		relay = broker.NewRedisRelay(client, broker.DefaultChannel, hub)
		dispatcher = relay
	}

	receiptPrinter := printer.NewTCPPrinter(cfg.Printer.Addr, cfg.Printer.Timeout)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	attendanceSvc := attendanceService.NewAttendanceService(st.tx, st.residents, st.leaves, st.config, clk, m)
	leaveSvc := leaveService.NewLeaveService(st.tx, st.leaves, st.residents, st.config, receiptPrinter, clk, m)
	residentSvc := residentService.NewResidentService(st.residents)
	configSvc := configService.NewConfigService(st.config)
	messSvc := messService.NewMessService(st.tokens, st.residents, st.config, clk, m)
	reconcileSvc := reconcile.NewService(st.tx, st.residents, st.leaves, st.config, clk, m)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			FrontendURL: cfg.App.FrontendURL,
			DeviceKey:   cfg.Device.APIKey,
			Env:         cfg.App.Env,
			LogLevel:    cfg.SlogLevel(),
			Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		},
		JWTService,
		appHTTP.NewKioskHandler(attendanceSvc, leaveSvc, dispatcher),
		appHTTP.NewLeaveHandler(leaveSvc, dispatcher),
		appHTTP.NewConfigHandler(configSvc, dispatcher),
		appHTTP.NewResidentHandler(residentSvc, dispatcher),
		appHTTP.NewMessHandler(messSvc, dispatcher),
		appHTTP.NewEventsHandler(hub, JWTService),
	)

	scheduler := cron.NewScheduler(cron.WithObserver(m.ObserveJob))
	cron.NewSecurityJobs(reconcileSvc, dispatcher, cfg.Heartbeat.Interval).RegisterJobs(scheduler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr, "store", cfg.Database.Driver, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})

	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil {
				slog.Error("event relay stopped, events stay local to this instance", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, clk clock.Clock) (stores, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory store; state is lost on restart")
		store := memory.NewStore(clk)
		return stores{
			tx:        store,
			residents: memory.NewResidentRepository(store),
			leaves:    memory.NewLeaveRepository(store),
			config:    memory.NewConfigRepository(store),
			tokens:    memory.NewTokenRepository(store),
			close:     func() {},
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{})
		if err != nil {
			return stores{}, fmt.Errorf("connect database: %w", err)
		}
		return stores{
			tx:        postgresql.NewTransactor(db),
			residents: postgresql.NewResidentRepository(db),
			leaves:    postgresql.NewLeaveRepository(db),
			config:    postgresql.NewConfigRepository(db),
			tokens:    postgresql.NewTokenRepository(db),
			close:     db.Close,
		}, nil
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/healthgrid/hospital-api/internal/config"
	v1 "github.com/healthgrid/hospital-api/internal/handler/v1"
	"github.com/healthgrid/hospital-api/internal/repository"
	"github.com/healthgrid/hospital-api/internal/service"
	"github.com/healthgrid/hospital-api/pkg/auth"
	"github.com/healthgrid/hospital-api/pkg/database"
	"github.com/healthgrid/hospital-api/pkg/logger"
	"github.com/healthgrid/hospital-api/pkg/metrics"
	"github.com/healthgrid/hospital-api/pkg/tracer"
)

func main() {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector(cfg.App.Name)
	jwtManager := auth.NewJWTManager(cfg.JWT)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	collector.ObserveDBPool(sqlDB, 15*time.Second)

	appointmentRepo := repository.NewAppointmentRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, log, collector)
	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, log)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, doctorRepo, auditSvc, collector, log)
	doctorSvc := service.NewDoctorService(doctorRepo, appointmentRepo, auditSvc, log)
	departmentSvc := service.NewDepartmentService(departmentRepo, doctorRepo, auditSvc, log)

	router := v1.NewRouter(cfg, log, collector, jwtManager, v1.Handlers{
		Auth:         v1.NewAuthHandler(authSvc),
		Appointments: v1.NewAppointmentHandler(appointmentSvc),
		Doctors:      v1.NewDoctorHandler(doctorSvc),
		Departments:  v1.NewDepartmentHandler(departmentSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	auditSvc.Shutdown()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("tracer shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

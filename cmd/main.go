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
	"github.com/rs/zerolog"

	"github.com/leganyst/weekly-schedule/internal/api"
	"github.com/leganyst/weekly-schedule/internal/config"
	"github.com/leganyst/weekly-schedule/internal/db"
	"github.com/leganyst/weekly-schedule/internal/model"
	"github.com/leganyst/weekly-schedule/internal/repository"
	"github.com/leganyst/weekly-schedule/internal/service"
)

func main() {
	// .env опционален: в контейнере конфиг приходит через окружение.
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// 1. Загружаем конфиг БД и HTTP из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load db config")
	}
	httpCfg := config.LoadHTTPConfig()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init db")
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	commonRepo := repository.NewGormCommonTaskRepository(gormDB)
	exceptionRepo := repository.NewGormExceptionTaskRepository(gormDB)

	// 5. Сервис расписания и REST-слой.
	scheduleSvc := service.NewScheduleService(commonRepo, exceptionRepo, log)
	restSrv := api.NewServer(scheduleSvc, log, httpCfg.CORSOrigin)

	httpServer := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           restSrv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", httpCfg.Addr).Msg("schedule HTTP server listening")

	// 6. Запускаем сервер в горутине.
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http serve")
		}
	}()

	// 7. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

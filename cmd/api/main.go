package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tradelaunch/apprentice-backend-go/internal/config"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
	appHTTP "github.com/tradelaunch/apprentice-backend-go/internal/handler/http"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/clock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/cron"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/jwt"
	"github.com/tradelaunch/apprentice-backend-go/internal/repository/postgresql"
	alertService "github.com/tradelaunch/apprentice-backend-go/internal/service/alert"
	routingService "github.com/tradelaunch/apprentice-backend-go/internal/service/routing"
	timeclockService "github.com/tradelaunch/apprentice-backend-go/internal/service/timeclock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	shiftRepo := postgresql.NewShiftRepository(db)
	siteRepo := postgresql.NewSiteRepository(db)
	alertRepo := postgresql.NewAlertRepository(db)
	enrollmentChecker := postgresql.NewEnrollmentChecker(db)
	applicationRepo := postgresql.NewApplicationRepository(db)
	shopRepo := postgresql.NewShopRepository(db)
	rulesetRepo := postgresql.NewRulesetRepository(db)
	scoreRepo := postgresql.NewRoutingScoreRepository(db)
	decisionRepo := postgresql.NewDecisionRepository(db)
	reviewRepo := postgresql.NewReviewQueueRepository(db)
	auditRepo := postgresql.NewAuditLogRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	systemClock := clock.System()
	alertRecorder := alert.NewRecorder(alertRepo)

	timeclockSvc := timeclockService.NewTimeclockService(
		timeclockService.Config{
			MaxAccuracyMeters:      cfg.Timeclock.MaxAccuracyMeters,
			StandardLunchMinutes:   cfg.Timeclock.StandardLunchMinutes,
			MissingLunchShiftHours: cfg.Timeclock.MissingLunchShiftHours,
			GeofenceStrikes:        cfg.Timeclock.GeofenceStrikes,
		},
		systemClock,
		shiftRepo,
		siteRepo,
		alertRecorder,
		enrollmentChecker,
	)
	routingSvc := routingService.NewRoutingService(
		applicationRepo,
		shopRepo,
		rulesetRepo,
		scoreRepo,
		decisionRepo,
		reviewRepo,
		auditRepo,
	)
	alertSvc := alertService.NewAlertService(alertRepo)

	timeclockHandler := appHTTP.NewTimeclockHandler(timeclockSvc)
	routingHandler := appHTTP.NewRoutingHandler(routingSvc)
	alertHandler := appHTTP.NewAlertHandler(alertSvc)

	sweeper := timeclockService.NewSweeper(
		systemClock,
		shiftRepo,
		time.Duration(cfg.Timeclock.StaleShiftHours)*time.Hour,
	)
	scheduler := cron.NewScheduler()
	scheduler.AddJob("close-stale-shifts", 30*time.Minute, sweeper.CloseStaleShifts)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		cfg.App.Env,
		timeclockHandler,
		routingHandler,
		alertHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

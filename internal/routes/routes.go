package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/controllers"
	"equipment-system/internal/repositories"
	"equipment-system/internal/services"
	"equipment-system/pkg/config"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, logger)
	sealRepo := repositories.NewSealRepository(dbConn, logger)
	assignmentRepo := repositories.NewAssignmentRepository(dbConn, logger)
	maintenanceRepo := repositories.NewMaintenanceRepository(dbConn, logger)
	changeLogRepo := repositories.NewChangeLogRepository(dbConn, logger)
	statsRepo := repositories.NewStatisticsRepository(dbConn, logger)
	cacheRepo := repositories.NewCacheRepository(redisClient, logger)

	floorplanRepo, err := repositories.NewFloorplanRepository(cfg.Floorplan.Dir, logger)
	if err != nil {
		logger.Fatal("не удалось открыть хранилище рассадки", zap.Error(err))
	}

	// --- 2. СЕРВИСЫ ---
	changeLogService := services.NewChangeLogService(changeLogRepo, logger)
	userService := services.NewUserService(dbConn, userRepo, assignmentRepo, changeLogRepo, floorplanRepo, logger)
	sealService := services.NewSealService(dbConn, sealRepo, equipmentRepo, changeLogRepo, logger)
	equipmentService := services.NewEquipmentService(dbConn, equipmentRepo, sealRepo, assignmentRepo, changeLogRepo, logger)
	assignmentService := services.NewAssignmentService(dbConn, assignmentRepo, equipmentRepo, userRepo, maintenanceRepo, changeLogRepo, logger)
	maintenanceService := services.NewMaintenanceService(dbConn, maintenanceRepo, equipmentRepo, assignmentRepo, logger)
	dashboardService := services.NewDashboardService(statsRepo, equipmentRepo, userRepo, sealRepo, assignmentRepo, cacheRepo, cfg.Cache.StatisticsTTL, logger)
	floorplanService := services.NewFloorplanService(floorplanRepo, userRepo, logger)
	importService := services.NewImportService(dbConn, equipmentRepo, userRepo, sealRepo, assignmentRepo, changeLogRepo, logger)
	exportService := services.NewExportService(assignmentRepo, sealRepo, logger)

	// --- 3. КОНТРОЛЛЕРЫ ---
	userCtrl := controllers.NewUserController(userService, assignmentService, logger)
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, sealService, assignmentService, maintenanceService, logger)
	sealCtrl := controllers.NewSealController(sealService, logger)
	assignmentCtrl := controllers.NewAssignmentController(assignmentService, logger)
	maintenanceCtrl := controllers.NewMaintenanceController(maintenanceService, logger)
	changeLogCtrl := controllers.NewChangeLogController(changeLogService, logger)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)
	floorplanCtrl := controllers.NewFloorplanController(floorplanService, logger)
	importCtrl := controllers.NewImportController(importService, exportService, cfg.Upload.Dir, logger)

	// Любая успешная мутация устаревает сводку дашборда.
	api.Use(invalidateStatisticsCache(cacheRepo, logger))

	api.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- 4. РОУТЕРЫ ---
	runUserRouter(api, userCtrl)
	runEquipmentRouter(api, equipmentCtrl)
	runSealRouter(api, sealCtrl)
	runAssignmentRouter(api, assignmentCtrl)
	runMaintenanceRouter(api, maintenanceCtrl)
	runChangeLogRouter(api, changeLogCtrl)
	runDashboardRouter(api, dashboardCtrl)
	runFloorplanRouter(api, floorplanCtrl)
	runImportRouter(api, importCtrl)

	logger.Info("InitRouter: Создание маршрутов завершено")
}

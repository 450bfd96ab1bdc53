package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/repositories"
	"equipment-system/internal/services"
)

// invalidateStatisticsCache сбрасывает кэш сводки после успешной
// мутации. Ошибка сброса не ломает ответ: сводка в худшем случае
// отстанет на TTL.
func invalidateStatisticsCache(cacheRepo repositories.CacheRepositoryInterface, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			err := next(ctx)
			if err != nil {
				return err
			}

			method := ctx.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return nil
			}
			if ctx.Response().Status >= http.StatusBadRequest {
				return nil
			}

			if delErr := cacheRepo.Delete(ctx.Request().Context(), services.StatisticsCacheKey); delErr != nil {
				logger.Warn("не удалось сбросить кэш статистики", zap.Error(delErr))
			}
			return nil
		}
	}
}

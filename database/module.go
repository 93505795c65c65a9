package database

import (
	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/tenant"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
)

func ProvideDatabaseFx(cfg *config.Config, modelsOpt *ModelsOption, plugin *tenant.Plugin) (*gorm.DB, error) {
	return ProvideDatabase(*cfg, modelsOpt, plugin)
}

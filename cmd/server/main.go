package main

import (
	"github.com/Triet1705/client-hub-backend/background"
	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/database"
	"github.com/Triet1705/client-hub-backend/handlers"
	"github.com/Triet1705/client-hub-backend/server"
	"github.com/Triet1705/client-hub-backend/services/audit"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/jwt"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/mail"
	"github.com/Triet1705/client-hub-backend/services/project"
	"github.com/Triet1705/client-hub-backend/services/refreshtoken"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/Triet1705/client-hub-backend/tenant"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.NewProvider(nil),
		logging.Module,
		tenant.Options,
		fx.Supply(database.WithModels(
			&user.User{},
			&refreshtoken.RefreshToken{},
			&audit.AuditLog{},
			&project.Project{},
		)),
		database.Module,
		background.Options,
		user.Options,
		auth.Options,
		jwt.Options,
		refreshtoken.Options,
		audit.Options,
		mail.Options,
		project.Options,
		server.NewProvider(),
		handlers.Options,
	).Run()
}

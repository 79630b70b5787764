package router

import (
	"taskflow/internal/application"
	"taskflow/internal/container"
	pginfra "taskflow/internal/infrastructure/postgres"
	handlers "taskflow/internal/interface/http"
	"taskflow/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it with the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	userSvc := &application.UserService{
		Repo:         userRepo,
		Sessions:     container.GetSessions(),
		JWT:          container.GetJWT(),
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
		Pub:          container.GetRabbitPub(),
		Logger:       logger,
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
	}

	taskRepo := pginfra.NewTaskRepository(container.GetPGPool())
	taskSvc := &application.TaskService{
		Repo:         taskRepo,
		Logger:       logger,
		ES:           container.GetES(),
		ESTasksIndex: cfg.ESTasksIndex,
	}

	authHandler := handlers.NewAuthHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, logger)
	taskHandler := handlers.NewTaskHandler(taskSvc, logger)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler))
	r.Add(modules.NewTaskModule(taskHandler))
	r.Add(modules.NewHealthModule())
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

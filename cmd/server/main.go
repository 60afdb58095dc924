package main

import (
	"github.com/gin-gonic/gin"

	"github.com/nbowman189/vitruvian/config"
	"github.com/nbowman189/vitruvian/controllers"
	"github.com/nbowman189/vitruvian/pkg/logger"
	"github.com/nbowman189/vitruvian/routes"
	"github.com/nbowman189/vitruvian/services"
	"github.com/nbowman189/vitruvian/utils"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	config.InitDB()

	if err := utils.InitMailer(); err != nil {
		log.Warn("mailer disabled", "err", err)
	}

	hub := services.NewRealtimeHub()
	services.InitAlertDeps(config.DB, hub)

	chat, err := services.NewOpenAIClient()
	if err != nil {
		log.Fatal("coach client init failed", "err", err)
	}
	coachSvc := services.NewCoachService(chat, hub, log)

	r := routes.SetupRouter(log,
		controllers.NewCoachController(coachSvc),
		controllers.NewAlertController(hub),
	)

	log.Info("listening", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal("server exited", "err", err)
	}
}

package main

import (
	"github.com/confmine/confmine/internal/server"
	"github.com/confmine/confmine/internal/util"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}

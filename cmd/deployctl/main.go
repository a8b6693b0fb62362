package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/logging"
)

func main() {
	cmd, cfg := parseCommandLine()

	var err error
	switch cmd {
	case deploySubCmd:
		deployCfg := cfg.(*deployConfig)
		log := newLogger(deployCfg.LogLevel)
		defer log.Sync()
		err = deploy(deployCfg, log)
	case keygenSubCmd:
		err = keygen(os.Stdout)
	case unitsSubCmd:
		err = units(cfg.(*unitsConfig), os.Stdout)
	default:
		printErrorAndExit("Unknown command")
	}

	if err != nil {
		printErrorAndExit(err.Error())
	}
}

func newLogger(level string) *zap.Logger {
	log, err := logging.New(logging.Config{Level: level})
	if err != nil {
		printErrorAndExit(err.Error())
	}
	return log
}

func printErrorAndExit(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(1)
}

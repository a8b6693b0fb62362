package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	deploySubCmd = "deploy"
	keygenSubCmd = "keygen"
	unitsSubCmd  = "units"
)

type configFlags struct {
	LogLevel string `long:"loglevel" description:"Log level (debug, info, warn, error)" default:"info"`
}

type deployConfig struct {
	FeePercent     uint64 `short:"f" long:"fee-percent" description:"Marketplace fee percent" default:"1"`
	RegistryName   string `short:"n" long:"registry-name" description:"Registry contract and token name" default:"NFT11"`
	RegistrySymbol string `short:"y" long:"registry-symbol" description:"Registry token symbol" default:"11th"`
	Deployer       string `short:"d" long:"deployer" description:"Deployer / fee account public key (base58); generated when empty"`
	DatabaseURL    string `long:"database-url" description:"PostgreSQL DSN; the deployment is persisted when set" env:"DATABASE_URL"`
	Out            string `short:"o" long:"out" description:"Directory for <name>-address.json and <name>.json" default:"contractsData"`
	configFlags
}

type keygenConfig struct {
	configFlags
}

type unitsConfig struct {
	Decimals int32 `long:"decimals" description:"Number of decimals of the display unit" default:"18"`
	Reverse  bool  `short:"r" long:"reverse" description:"Convert base units to the display unit"`
	Args     struct {
		Value string `positional-arg-name:"value" description:"Amount to convert"`
	} `positional-args:"yes" required:"yes"`
	configFlags
}

func parseCommandLine() (subCommand string, config interface{}) {
	cfg := &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)

	deployConf := &deployConfig{}
	parser.AddCommand(deploySubCmd, "Deploy the contracts",
		"Deploys the registry and the marketplace and writes their artifacts", deployConf)

	keygenConf := &keygenConfig{}
	parser.AddCommand(keygenSubCmd, "Generate an account",
		"Generates a new ed25519 key pair for an actor", keygenConf)

	unitsConf := &unitsConfig{}
	parser.AddCommand(unitsSubCmd, "Convert amounts",
		"Converts a decimal amount to base units (or back with --reverse)", unitsConf)

	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	switch parser.Command.Active.Name {
	case deploySubCmd:
		if deployConf.Out == "" {
			printErrorAndExit("--out is required")
		}
		config = deployConf
	case keygenSubCmd:
		config = keygenConf
	case unitsSubCmd:
		if unitsConf.Decimals < 0 {
			printErrorAndExit("--decimals must not be negative")
		}
		config = unitsConf
	}
	return parser.Command.Active.Name, config
}

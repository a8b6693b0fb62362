// Package config carrega a configuração do servidor a partir do ambiente.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string // Vazio mantém o estado apenas em memória
	FeePercent     uint64
	FeeAccount     string // Chave base58 do deployer; vazio gera uma nova
	RegistryName   string
	RegistrySymbol string
	WebhookURL     string
	ArtifactsDir   string
	LogLevel       string
	LogFile        string
	Env            string
}

// Load lê o arquivo .env, se houver, e depois as variáveis de ambiente.
// Reporta em loadedEnv se o .env foi encontrado.
func Load(files ...string) (cfg *Config, loadedEnv bool, err error) {
	loadedEnv = godotenv.Load(files...) == nil

	feePercent, err := strconv.ParseUint(getEnv("FEE_PERCENT", "1"), 10, 64)
	if err != nil {
		return nil, loadedEnv, fmt.Errorf("FEE_PERCENT inválido: %w", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		FeePercent:     feePercent,
		FeeAccount:     getEnv("FEE_ACCOUNT", ""),
		RegistryName:   getEnv("REGISTRY_NAME", "NFT11"),
		RegistrySymbol: getEnv("REGISTRY_SYMBOL", "11th"),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		ArtifactsDir:   getEnv("ARTIFACTS_DIR", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		Env:            getEnv("ENV", "development"),
	}, loadedEnv, nil
}

// IsProduction informa se ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retorna a variável de ambiente ou o valor padrão.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/kurniadi/booking-service/internal/adapters/ports"
	"github.com/kurniadi/booking-service/internal/adapters/secrets"
	"github.com/kurniadi/booking-service/internal/config"
)

// initSecretManager initializes the secret manager selected by
// SECRETS_BACKEND. Supports:
//   - "local": filesystem-backed secrets for development (SECRETS_LOCAL_PATH)
//   - "aws":   AWS Secrets Manager (AWS_REGION, default credential chain)
//   - "vault": HashiCorp Vault (VAULT_ADDR, VAULT_TOKEN)
func initSecretManager(ctx context.Context, cfg *config.SecretsConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	switch cfg.Backend {
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		sm, err := secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("AWS Secrets Manager initialized",
			zap.String("region", cfg.AWSRegion),
		)
		return sm, nil

	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.Token = cfg.VaultToken
		sm, err := secrets.NewVaultAdapter(ctx, vaultCfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Vault secret manager initialized",
			zap.String("address", cfg.VaultAddress),
		)
		return sm, nil

	default:
		logger.Warn("Using local filesystem secret manager - not for production use",
			zap.String("path", cfg.LocalPath),
		)
		return secrets.NewLocalSecretManager(cfg.LocalPath, logger), nil
	}
}

package app

import (
	"fmt"
	"log/slog"

	"github.com/alex2808pl/url-shortener/pkg/jwtx"
)

// InitTokenCrypto decodes the configured keys and builds the codec. Both
// keys are fixed for the life of the process; tokens stay valid across
// restarts as long as the keys do.
func InitTokenCrypto(cfg Config, logger *slog.Logger) (*jwtx.Codec, jwtx.Keys, error) {
	keys, err := jwtx.LoadKeys(cfg.AccessSecret, cfg.RefreshSecret, cfg.Algorithm)
	if err != nil {
		return nil, jwtx.Keys{}, fmt.Errorf("invalid signing keys: %w", err)
	}

	codec, err := jwtx.NewCodec(cfg.Algorithm)
	if err != nil {
		return nil, jwtx.Keys{}, err
	}

	logger.Info("token keys loaded",
		"algorithm", codec.Alg(),
		"access_ttl", jwtx.AccessTokenTTL,
		"refresh_ttl", jwtx.RefreshTokenTTL,
	)
	return codec, keys, nil
}

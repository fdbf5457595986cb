// cmd/token prints a signed development token for JWT_SECRET.
// Usage: token [rol] [username]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/config"
	"github.com/crisgp1/orodetamar-sub000/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Fatal().Msg("dev tokens are not issued in production")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is empty")
	}

	rol, username := middleware.RolAdministrador, "dev"
	if len(os.Args) > 1 {
		rol = os.Args[1]
	}
	if len(os.Args) > 2 {
		username = os.Args[2]
	}

	now := time.Now()
	token, err := middleware.FirmarToken(cfg.JWTSecret, middleware.JWTClaims{
		Username: username,
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(12 * time.Hour)),
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(token)
}

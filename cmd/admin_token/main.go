package main

import (
	"fmt"
	"log"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/config"
)

// Mints an admin bearer token for the /admin routes using ADMIN_TOKEN_SECRET.
func main() {
	subject := flag.StringP("subject", "s", "operator", "token subject (who the token is for)")
	ttl := flag.DurationP("ttl", "t", time.Hour, "token lifetime")
	envFile := flag.String("env-file", ".env", "optional env file to read ADMIN_TOKEN_SECRET from")
	flag.Parse()

	cfg, err := config.LoadFile(*envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Auth.AdminTokenSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_TOKEN_SECRET is not set")
		os.Exit(1)
	}
	if *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "--ttl must be positive")
		os.Exit(1)
	}

	token, err := common.NewAdminTokenSigner([]byte(cfg.Auth.AdminTokenSecret)).Issue(*subject, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}

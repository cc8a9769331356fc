package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/service"
)

// issue_token prints a signed bearer token for a user, for local testing.
func main() {
	userFlag := flag.String("user", "", "user id (uuid); a random one is generated when empty")
	ttl := flag.Duration("ttl", service.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if config.IsProduction() {
		log.Fatal("refusing to mint tokens in production")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid user id: %v", err)
		}
	}

	token, err := service.NewAuthService(cfg.JWTSecret).GenerateToken(userID, *ttl)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "user_id=%s expires=%s\n", userID, time.Now().Add(*ttl).UTC().Format(time.RFC3339))
	fmt.Println(token)
}

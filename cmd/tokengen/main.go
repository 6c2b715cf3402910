// Command tokengen mints a signed bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"resto-system/config"
	"resto-system/internal/auth"
	"resto-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()

	userID := flag.Int64("user", 1, "user id")
	username := flag.String("username", "dev", "username")
	role := flag.String("role", "admin", "role: admin, cashier or waiter")
	branchID := flag.Int("branch", 0, "branch the identity is bound to, 0 for none")
	ttl := flag.Duration("ttl", cfg.Auth.TokenTTL, "token lifetime")
	flag.Parse()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	r, err := auth.ParseRole(*role)
	if err != nil {
		log.Fatal(err)
	}

	token, exp, err := utils.GenerateToken([]byte(cfg.Auth.JWTSecret), auth.Identity{
		UserID:   *userID,
		Username: *username,
		Role:     r,
		BranchID: int32(*branchID),
	}, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
	log.Printf("expires at %s", exp.Format(time.RFC3339))
}

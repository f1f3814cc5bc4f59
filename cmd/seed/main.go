package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/internal/adapter/repository"
	"github.com/johnquangdev/meeting-notes/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-notes/internal/usecase/user"
	"github.com/johnquangdev/meeting-notes/pkg/config"
	"github.com/johnquangdev/meeting-notes/pkg/jwt"
)

// seed creates development users and prints a bearer token for each
func main() {
	log.Println("🚀 Starting dev users creation...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("Refusing to seed dev users in production")
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	users := user.NewService(repository.NewUserRepository(db), jwtManager, zap.NewNop())

	usernames := []string{"alice", "bob", "charlie"}

	log.Println("🔑 Creating dev users and tokens...")
	ctx := context.Background()
	for i, name := range usernames {
		token, err := users.IssueDevToken(ctx, name)
		if err != nil {
			log.Printf("❌ Failed to create user %s: %v", name, err)
			continue
		}
		fmt.Printf("═══════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 User %d: %s\n", i+1, name)
		fmt.Printf("🔐 Token (expires in %v):\n%s\n", jwtManager.Expiry(), token)
	}
	fmt.Printf("═══════════════════════════════════════════════════════\n")

	log.Println("✅ Dev users ready")
}

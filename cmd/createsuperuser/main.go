// Package main provisions a privileged account from the command line,
// for bootstrapping an installation without going through the public API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/atinyakov/RecipeVault/internal/db"
	"github.com/atinyakov/RecipeVault/internal/repository"
	"github.com/atinyakov/RecipeVault/internal/service"
)

func main() {
	var (
		dsn      = flag.String("d", "", "db address")
		email    = flag.String("email", "", "email for the new superuser")
		password = flag.String("password", "", "password for the new superuser")
	)
	flag.Parse()

	if dsnEnv := os.Getenv("DATABASE_DSN"); dsnEnv != "" && *dsn == "" {
		*dsn = dsnEnv
	}

	postgresDB, err := db.InitPostgres(*dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot init database: %v\n", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	userRepo := repository.NewPostgresUserRepository(postgresDB)
	tokenRepo := repository.NewPostgresTokenRepository(postgresDB)
	userService := service.NewUserService(userRepo, tokenRepo)

	user, err := userService.CreateSuperuser(context.Background(), *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create superuser: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created superuser %s (id %d)\n", user.Email, user.ID)
}

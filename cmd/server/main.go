// Package main initializes and starts the recipe API server, setting up
// configuration, logging, the database connection, repositories, services,
// and handlers.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"github.com/atinyakov/RecipeVault/internal/config"
	"github.com/atinyakov/RecipeVault/internal/db"
	"github.com/atinyakov/RecipeVault/internal/imagestore"
	"github.com/atinyakov/RecipeVault/internal/logger"
	"github.com/atinyakov/RecipeVault/internal/repository"
	"github.com/atinyakov/RecipeVault/internal/server/handler/http"
	"github.com/atinyakov/RecipeVault/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	tokenRepo := repository.NewPostgresTokenRepository(postgresDB)
	tagRepo := repository.NewPostgresAttributeRepository(postgresDB, repository.TagKind)
	ingredientRepo := repository.NewPostgresAttributeRepository(postgresDB, repository.IngredientKind)
	recipeRepo := repository.NewPostgresRecipeRepository(postgresDB)

	// Initialize business-logic services.
	userService := service.NewUserService(userRepo, tokenRepo)
	tagService := service.NewAttributeService(tagRepo)
	ingredientService := service.NewAttributeService(ingredientRepo)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo)
	imageService := service.NewImageService(recipeRepo, imagestore.New(options.UploadDir))

	// Create HTTP handlers.
	userHandler := &http.UserHandler{UserService: userService}
	tagHandler := &http.AttributeHandler{Service: tagService}
	ingredientHandler := &http.AttributeHandler{Service: ingredientService}
	recipeHandler := &http.RecipeHandler{RecipeService: recipeService, ImageService: imageService}

	// Build the router with middleware and routes.
	router := http.NewRouter(userHandler, tagHandler, ingredientHandler, recipeHandler, userService, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

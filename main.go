package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/api"
	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/cache"
	"github.com/rpupo63/blog-platform-backend/config"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/media"
	"github.com/rpupo63/blog-platform-backend/services"
)

const janitorWorkers = 4

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	startupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := config.ResolveSecrets(startupCtx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Error resolving secrets")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	currentDB, err := openDatabase(startupCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	defer func() {
		if err := currentDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	// A nil interface, not a nil *cache.Cache, keeps the checker cache-free.
	var (
		epochCache auth.EpochCache
		redisCache *cache.Cache
	)
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(startupCtx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to Redis")
		}
		defer redisCache.Close()
		epochCache = redisCache
		log.Info().Dur("ttl", cfg.EpochCacheTTL).Msg("Token epoch cache enabled")
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating token service")
	}
	epochs := auth.NewEpochChecker(currentDB.UserRepo(), epochCache, cfg.EpochCacheTTL)

	store, uploadDir, err := openMediaStore(startupCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring media storage")
	}
	janitor := media.NewJanitor(store, janitorWorkers)
	uploader := media.NewUploader(store, cfg.MediaFolder)

	blogs := services.NewBlogService(currentDB.BlogRepo(), currentDB.UserRepo(), uploader, janitor)
	users := services.NewUserService(currentDB.UserRepo(), blogs, tokens, epochs)

	// Buffered so the server and signal goroutines never block after shutdown.
	errChannel := make(chan error, 2)

	deps := api.Dependencies{
		Database:  currentDB,
		Tokens:    tokens,
		Epochs:    epochs,
		Users:     users,
		Blogs:     blogs,
		UploadDir: uploadDir,
	}
	if redisCache != nil {
		deps.Cache = redisCache
	}

	server, err := api.NewServer(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(cfg.ShutdownTimeout)
	janitor.Wait()
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	format := cfg.LogFormat
	if format == "" && cfg.IsDevelopment() {
		format = "console"
	}
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (database.Database, error) {
	if cfg.DBType == config.DBTypeMemory {
		log.Warn().Msg("Using in-memory database, data is lost on restart")
		return database.NewMemory(), nil
	}

	db, err := database.Open(ctx, database.OpenOptions{
		DSN:         cfg.DatabaseURL,
		ReplicaDSNs: cfg.DatabaseReplicaURLs,
	})
	if err != nil {
		return database.Database{}, err
	}

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			return database.Database{}, fmt.Errorf("migrate: %w", err)
		}
	}

	return database.New(db), nil
}

// openMediaStore returns the configured store and, for local storage, the directory to serve.
func openMediaStore(ctx context.Context, cfg *config.Config) (media.Store, string, error) {
	if cfg.MediaDriver == config.MediaDriverLocal {
		store, err := media.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		log.Info().Str("dir", store.Dir()).Msg("Storing images on local disk")
		return store, store.Dir(), nil
	}

	store, err := media.NewS3Store(ctx, media.S3Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.AWSRegion,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("bucket", cfg.S3Bucket).Msg("Storing images in S3")
	return store, "", nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

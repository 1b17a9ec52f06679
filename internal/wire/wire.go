// Package wire provides dependency injection for the todochain
// application. It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	cliadapter "github.com/example/todochain/internal/adapters/cli"
	"github.com/example/todochain/internal/adapters/describe"
	"github.com/example/todochain/internal/adapters/ledger"
	"github.com/example/todochain/internal/adapters/remote"
	"github.com/example/todochain/internal/adapters/sqlite"
	"github.com/example/todochain/internal/app"
	"github.com/example/todochain/internal/config"
	"github.com/example/todochain/internal/db"
	"github.com/example/todochain/internal/ports/primary"
)

var (
	cfg            *config.Config
	taskService    primary.TaskService
	sessionService primary.SessionService
	walletService  primary.WalletService
	chatService    primary.ChatService
	once           sync.Once
)

// TaskService returns the singleton TaskService instance.
func TaskService() primary.TaskService {
	once.Do(initServices)
	return taskService
}

// SessionService returns the singleton SessionService instance.
func SessionService() primary.SessionService {
	once.Do(initServices)
	return sessionService
}

// WalletService returns the singleton WalletService instance.
func WalletService() primary.WalletService {
	once.Do(initServices)
	return walletService
}

// ChatService returns the singleton ChatService instance.
func ChatService() primary.ChatService {
	once.Do(initServices)
	return chatService
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	taskRepo := sqlite.NewTaskRepository(database)
	escrowRepo := sqlite.NewEscrowStateRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)

	// The remote client carries the bearer token of whatever session is
	// active when the process starts. Logged out, it degrades to
	// precondition faults and the engine keeps working locally.
	token := ""
	if session, err := sessionRepo.Get(context.Background()); err == nil && session != nil {
		token = session.Token
	}
	remoteStore := remote.NewClient(cfg.APIBaseURL, token)
	authClient := remote.NewAuthClient(cfg.APIBaseURL)

	pollDelay := time.Duration(cfg.AuthPollDelayMS) * time.Millisecond
	bridge := ledger.NewBridge(ledger.Options{
		BridgeURL:       cfg.BridgeURL,
		RegistryAddress: cfg.RegistryAddress,
		TokenAddress:    cfg.TokenAddress,
		ConfirmAttempts: cfg.AuthPollAttempts,
		ConfirmDelay:    pollDelay,
	})

	templatePath := ""
	if dir, err := config.Dir(); err == nil {
		templatePath = filepath.Join(dir, "templates.yaml")
	}
	describer, err := describe.NewProvider(cfg.DescribeURL, templatePath)
	if err != nil {
		log.Fatalf("failed to load description templates: %v", err)
	}

	runner := app.NewEscrowRunner(escrowRepo, bridge, cfg.AuthPollAttempts, pollDelay)

	taskService = app.NewTaskService(taskRepo, escrowRepo, remoteStore, bridge, describer, runner)
	sessionService = app.NewSessionService(sessionRepo, authClient)
	walletService = app.NewWalletService(bridge, escrowRepo, cfg.AuthPollAttempts, pollDelay)
	chatService = app.NewChatResolver(taskRepo, taskService)
}

// TaskAdapter returns a new TaskAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func TaskAdapter() *cliadapter.TaskAdapter {
	return TaskAdapterWithOutput(os.Stdout)
}

// TaskAdapterWithOutput returns a new TaskAdapter writing to the given
// output. This variant allows testing or alternate output destinations.
func TaskAdapterWithOutput(out io.Writer) *cliadapter.TaskAdapter {
	return cliadapter.NewTaskAdapter(out)
}

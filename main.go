package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wagerhub/cmd"
	"wagerhub/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "create-admin":
			if err := handleCreateAdmin(); err != nil {
				log.Fatal("Create admin error: ", err)
			}
			return
		case "serve":
		default:
			log.Fatalf("unknown command %q, expected serve, migrate or create-admin", os.Args[1])
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: wagerhub migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleCreateAdmin() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: wagerhub create-admin name email password")
	}
	return cmd.CreateAdmin(context.Background(), os.Args[2], os.Args[3], os.Args[4])
}

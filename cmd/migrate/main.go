package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"tangle-wallet/pkg/config"
	"tangle-wallet/pkg/database"
)

func main() {
	var (
		command string
		version int
		dir     string
	)
	flag.StringVar(&command, "cmd", "up", "Command to run: up, down, force, version")
	flag.IntVar(&version, "v", -1, "Version for force command")
	flag.StringVar(&dir, "path", "migrations", "Migrations directory")
	flag.Parse()

	// 加载配置
	config.Init()

	m, err := migrate.New("file://"+dir, database.MigrateURL(config.Global.DB))
	if err != nil {
		log.Fatalf("Migration init failed: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("Migration up done")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migration down done")
	case "force":
		if version == -1 {
			log.Fatal("Version (-v) is required for force command")
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("Migration force failed: %v", err)
		}
		log.Printf("Migration forced to version %d", version)
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("Read version failed: %v", err)
		}
		log.Printf("Current version: %d (dirty=%t)", v, dirty)
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

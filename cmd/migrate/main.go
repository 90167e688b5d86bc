package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"evento/internal/config"
	"evento/internal/database"
	"evento/internal/database/migrations"
	"evento/internal/logger"

	"github.com/joho/godotenv"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down | version | goto <version>")
	os.Exit(2)
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger(logger.Options{Service: "evento-migrate", Level: cfg.Log.Level})
	defer log.Close()

	sqldb, err := database.OpenSQL(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	runner := migrations.NewRunner(sqldb, log)
	defer runner.Close()

	switch flag.Arg(0) {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "goto":
		if flag.NArg() != 2 {
			usage()
		}
		var v uint64
		v, err = strconv.ParseUint(flag.Arg(1), 10, 32)
		if err == nil {
			err = runner.MigrateTo(uint(v))
		}
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = runner.Version()
		if err == nil {
			log.Info("DATABASE", fmt.Sprintf("Schema version %d (dirty: %t)", version, dirty))
		}
	default:
		usage()
	}
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
}

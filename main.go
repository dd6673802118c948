package main

import (
	"Gin_postgres_redis_library/cmd"
	"Gin_postgres_redis_library/config"
	"os"
)

func main() {
	config.LoadEnv()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package config

import (
	"os"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order. Variables already present in the process
// environment, or set by an earlier file, are never overridden.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() []string {
	var loaded []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err == nil {
			loaded = append(loaded, name)
		}
	}
	return loaded
}

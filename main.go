package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/incognitochain/merklemine-workers/workers"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var secretKeys = map[string]bool{
	"KEY_PASSWORD":      true,
	"ALERT_WEBHOOK_URL": true,
	"INFO_WEBHOOK_URL":  true,
}

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("No .env file loaded, using the process environment")
	}

	lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	var myEnv map[string]string
	myEnv, _ = godotenv.Read()
	keys := make([]string, 0, len(myEnv))
	for key := range myEnv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Println("=========Config============")
	for _, key := range keys {
		value := myEnv[key]
		if secretKeys[key] && value != "" {
			value = strings.Repeat("*", 8)
		}
		fmt.Println(key + ": " + value)
	}
	fmt.Println("=========End============")

	cfg, err := workers.LoadClaimConfig(os.Getenv)
	if err != nil {
		logrus.Fatalf("Invalid config - with err: %v", err)
	}

	runtime.GOMAXPROCS(runtime.NumCPU())
	s, err := NewServer(cfg)
	if err != nil {
		logrus.Fatalf("Could not start server - with err: %v", err)
	}

	if err := s.Run(); err != nil {
		logrus.Errorf("Server stopped on fatal error: %v", err)
		os.Exit(1)
	}
	fmt.Println("Server stopped gracefully!")
}

package main

import (
	"fmt"
	"os"
)

// @title           Study Session API
// @version         1.0
// @description     Certification exam practice: timed study sessions, scoring and study recommendations.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

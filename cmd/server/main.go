package main

import (
	"log"

	_ "todoapp/docs"
	"todoapp/internal/config"
	"todoapp/internal/server"
)

// @title           Todo API
// @version         1.0
// @description     Personal task lists with an admin view across all users.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}

package main

import (
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"lambda-jsonapi/internal/config"
	"lambda-jsonapi/pkg/server"
)

func main() {
	cfg, err := config.LoadForDeployment()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	awslambda.Start(container.App.Handler())
}

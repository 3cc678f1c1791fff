// Command lambda serves the API as an AWS Lambda function behind API Gateway.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/xhad/ezodus/internal/logging"
	cfgPkg "github.com/xhad/ezodus/pkg/config"
	"github.com/xhad/ezodus/pkg/service"
	"github.com/xhad/ezodus/server"
)

func main() {
	cfg, err := cfgPkg.LoadConfig(os.Getenv("EZODUS_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		log.Fatalf("invalid configuration: %v", errs)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	// CloudWatch indexes JSON fields.
	logger := logging.New(os.Stderr, level, true)

	svc, err := service.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Config{CORSOrigin: cfg.Server.CORSOrigin}, svc, logger)

	lambda.Start(srv.LambdaHandler())
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"generate-video-lambda/application/services"
	"generate-video-lambda/config"
	"generate-video-lambda/infrastructure/adapters"
	"generate-video-lambda/infrastructure/gin_interface/controllers"
	"generate-video-lambda/middleware"
)

func main() {
	storageConfig, err := config.GetStorageConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get storage config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	inferenceConfig, err := config.GetInferenceConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get inference config")
	}

	workspaceConfig, err := config.GetWorkspaceConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get workspace config")
	}

	authConfig := config.GetAuthConfig()

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            aws.Config{Region: aws.String(storageConfig.Region)},
	}))

	s3Client := s3.New(sess)
	dynamoClient := dynamodb.New(sess)

	contentFetcher := adapters.NewContentFetcher(zeroLogger)

	artifactResolver := adapters.NewArtifactResolver(contentFetcher, zeroLogger)
	coefficientExtractor := adapters.NewCoefficientExtractor(contentFetcher, inferenceConfig, zeroLogger)
	motionSynthesizer := adapters.NewMotionSynthesizer(contentFetcher, inferenceConfig, zeroLogger)
	videoRenderer := adapters.NewVideoRenderer(inferenceConfig, zeroLogger)
	subtitleBurner := adapters.NewFFmpegSubtitleBurner(zeroLogger)
	videoPublisher := adapters.NewS3VideoPublisher(zeroLogger, s3Client, storageConfig)
	jobStore := adapters.NewDynamoJobStore(zeroLogger, dynamoClient, dynamoConfig)

	jobOrchestrator := services.NewJobOrchestrator(zeroLogger, workerPool, artifactResolver,
		coefficientExtractor, motionSynthesizer, videoRenderer, subtitleBurner, videoPublisher,
		jobStore, workspaceConfig, config.ImageMap())

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()

	workspaceReaper := services.NewWorkspaceReaper(zeroLogger, workerPool, workspaceConfig)
	if err := workspaceReaper.Start(reaperCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start workspace reaper")
	}

	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if authConfig.JwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(authConfig.JwksUrl, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	videoController := controllers.NewVideoController(zeroLogger, jobOrchestrator)
	videoController.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	err = router.Run(":" + port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}

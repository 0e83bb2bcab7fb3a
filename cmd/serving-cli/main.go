package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/mlservingstack/go-sdk/pkg/inference"
	"github.com/mlservingstack/go-sdk/pkg/launcher"
	"github.com/mlservingstack/go-sdk/pkg/logger"
	"github.com/mlservingstack/go-sdk/pkg/tensor"
)

var (
	configFile = flag.String("config", "", "path to the serving configuration yaml")
	serverJar  = flag.String("jar", "", "path to the serving server jar")
	javaBin    = flag.String("java", "java", "java binary to launch the server with")
	inputFile  = flag.String("input", "", "json file of input tensors, omit to just run the server")
	timeoutMS  = flag.Int("timeout", 60000, "server start timeout in milliseconds")
	logLevel   = flag.String("log-level", "INFO", "log level")
)

func main() {
	flag.Parse()
	logger.InitLogger("serving-cli", *logLevel)

	if *configFile == "" || *serverJar == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("serving-cli failed")
	}
}

func run() error {
	yamlBytes, err := os.ReadFile(*configFile)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", *configFile, err)
	}
	servingConf, err := inference.FromYAML(yamlBytes)
	if err != nil {
		return fmt.Errorf("invalid serving configuration: %w", err)
	}

	l, err := launcher.New(&launcher.Config{
		ServerJar:      *serverJar,
		JavaBin:        *javaBin,
		StartTimeoutMS: *timeoutMS,
	}, servingConf)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := l.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to stop serving server")
		}
	}()

	if err := l.WaitUntilReady(ctx); err != nil {
		return err
	}

	if *inputFile == "" {
		return waitForInterrupt()
	}
	return predictFromFile(ctx, l)
}

func predictFromFile(ctx context.Context, l *launcher.Launcher) error {
	inputBytes, err := os.ReadFile(*inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input %s: %w", *inputFile, err)
	}
	inputs, err := tensor.DecodeJSON(inputBytes)
	if err != nil {
		return fmt.Errorf("invalid input tensors: %w", err)
	}

	outputs, err := l.Client().Predict(ctx, inputs)
	if err != nil {
		return err
	}

	for name, out := range outputs {
		doc, err := tensor.EncodeJSON([]*tensor.Tensor{out})
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", name, doc)
	}
	return nil
}

func waitForInterrupt() error {
	log.Info().Msg("Serving server running, press Ctrl+C to stop")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-konan-sdk/internal/config"
	"github.com/jrsteele09/go-konan-sdk/internal/logging"
	"github.com/jrsteele09/go-konan-sdk/service"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running service")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("service stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetLogLevel(), c.GetLogFormat())
	displayAppname(c.GetAppName())

	handler, err := service.New[features, float64](averageModel{}, c)
	if err != nil {
		return err
	}

	server := &http.Server{Addr: c.GetPort(), Handler: handler}
	return serve(server, stopSignal())
}

// serve runs server until it fails or stop fires, then shuts it down.
func serve(server *http.Server, stop <-chan os.Signal) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("stopping service")
	}
	return shutdown(server)
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

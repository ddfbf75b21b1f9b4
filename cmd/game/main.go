package main

import (
	"bufio"
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/tomz197/birdtreats/internal/audio"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/loop"
	"golang.org/x/term"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load .env", "err", err)
	}
	tuning, err := config.LoadTuning(config.GetEnv(config.EnvTuningFile, ""))
	if err != nil {
		log.Fatal("failed to load tuning", "err", err)
	}

	// The terminal belongs to the game, so log lines go to a file or nowhere.
	logFile, err := config.OpenLogFile(config.GetEnv(config.EnvLogFile, ""))
	if err != nil {
		log.Fatal("failed to open log file", "err", err)
	}
	defer logFile.Close()
	logger := config.NewLogger(logFile, "birdtreats")

	opts := loop.Options{
		Tuning:  tuning,
		Profile: termenv.NewOutput(os.Stdout).EnvColorProfile(),
		Logger:  logger,
	}
	if seed := config.GetEnvInt(config.EnvSeed, 0); seed != 0 {
		opts.Rand = rand.New(rand.NewSource(int64(seed)))
	}

	if config.GetEnvBool(config.EnvAudio, false) {
		volume := float64(config.GetEnvInt(config.EnvVolume, 60)) / 100
		player := audio.NewPlayer(volume)
		if err := player.Start(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			defer player.Close()
			opts.Sink = player
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatal("failed to enable raw mode", "err", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := loop.NewClient(bufio.NewReader(os.Stdin), os.Stdout, opts)
	if err := client.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		logger.Error("game error", "err", err)
		log.Error("game error", "err", err)
		os.Exit(1)
	}
}

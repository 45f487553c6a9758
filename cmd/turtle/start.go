package main

import (
	"fmt"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/axiomesh/axiom-kit/log"
	"github.com/urfave/cli/v2"

	"github.com/nam2ee/turtle"
	"github.com/nam2ee/turtle/gateway"
	"github.com/nam2ee/turtle/ledger"
	"github.com/nam2ee/turtle/repo"
)

func start(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	r, err := repo.Load(p)
	if err != nil {
		return err
	}

	err = log.Initialize(
		log.WithReportCaller(r.Config.Log.ReportCaller),
		log.WithPersist(true),
		log.WithFilePath(filepath.Join(r.Config.RepoRoot, repo.LogsDirName)),
		log.WithFileName(r.Config.Log.Filename),
		log.WithMaxAge(r.Config.Log.MaxAge),
		log.WithRotationTime(r.Config.Log.RotationTime),
	)
	if err != nil {
		return fmt.Errorf("log initialize: %w", err)
	}

	printVersion()

	logger := log.New()

	// The leveldb dir may still be locked by a node that is shutting
	// down, so opening it gets a few attempts.
	var l *ledger.Ledger
	action := func(attempt uint) error {
		var err error
		l, err = ledger.New(r.Config.RepoRoot)
		return err
	}
	if err := retry.Retry(action, strategy.Limit(5), strategy.Backoff(backoff.Fibonacci(time.Second))); err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}

	srv, err := gateway.New(r.Config, logger, l)
	if err != nil {
		return fmt.Errorf("new gateway error: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	handleShutdown(srv, &wg)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start gateway failed: %w", err)
	}

	fmt.Println("=============Turtle is ready=============")

	wg.Wait()

	return nil
}

func printVersion() {
	fmt.Printf("Turtle version: %s-%s-%s\n", turtle.CurrentVersion, turtle.CurrentBranch, turtle.CurrentCommit)
	fmt.Printf("App build date: %s\n", turtle.BuildDate)
	fmt.Printf("System version: %s\n", turtle.Platform)
	fmt.Printf("Golang version: %s\n", turtle.GoVersion)
	fmt.Println()
}

func handleShutdown(srv *gateway.Server, wg *sync.WaitGroup) {
	var stop = make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGTERM)
	signal.Notify(stop, syscall.SIGINT)

	go func() {
		<-stop
		fmt.Println("received interrupt signal, shutting down...")
		if err := srv.Stop(); err != nil {
			panic(err)
		}
		wg.Done()
		os.Exit(0)
	}()
}

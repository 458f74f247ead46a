package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterh/liner"
	"github.com/proseplay/proseplay/annotation"
	"github.com/proseplay/proseplay/play"
	"github.com/proseplay/proseplay/repl"
	"github.com/proseplay/proseplay/samples"
	"github.com/rs/zerolog"
)

const (
	historyFile = ".proseplay_history"
	prompt      = "proseplay> "
	banner      = "proseplay\nCtrl+C cancels input, Ctrl+D exits. Type :help for the commands."
)

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	os.Exit(run())
}

func run() int {
	var (
		sample  = flag.String("sample", "", "sample to load on start")
		file    = flag.String("file", "", "annotated text file to load on start")
		plain   = flag.Bool("plain", false, "disable colors")
		verbose = flag.Bool("v", false, "log selection events")
		warns   = flag.Int("warnings", annotation.DefaultMaxWarnings, "maximum number of warnings printed per load")
	)
	flag.Parse()

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	catalog, err := samples.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}

	it := repl.New(os.Stdout, catalog, !*plain, play.WithLogger(logger))
	if err := it.SetMaxWarnings(*warns); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 2
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Println(banner)

	switch {
	case *file != "":
		err = it.Execute(":load " + *file)
	case *sample != "":
		err = it.Execute(":sample " + *sample)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		if line != "" {
			ln.AppendHistory(line)
		}

		err = it.Execute(line)
		if errors.Is(err, repl.ErrQuit) {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
}

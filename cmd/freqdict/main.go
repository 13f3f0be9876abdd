// Copyright 2025 The FreqDict Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the freqdict CLI, which builds and prunes the word
frequency dictionaries that seed autocomplete ranking.

A dictionary maps a normalized word (lowercase ASCII letters, at least three
long, not a stopword) to how often it occurred in a corpus. freqdict builds
one from Wikipedia articles or a directory of text files, and maintains
existing ones by dropping the rarest words below a percentile cutoff.

# Usage

Build a dictionary from the default article list:

	freqdict build

Build from specific articles with four concurrent fetches:

	freqdict build -w 4 -o words.json "Cryptography" "Statistics"

Build from local text files instead of Wikipedia:

	freqdict build --source dir --dir ./articles --titles-file titles.txt

Drop the bottom 20% of a CSV dictionary in place:

	freqdict clean --in ngram_freq_dict_top_80.csv

Export a cleaned dictionary as ranked binary chunks for a completion server:

	freqdict clean --in words.csv --out data/ --percentile 0.1

# Formats

The dictionary format follows the path: .csv (word,count with a header),
.json ({"word": count}), .msgpack, .db/.sqlite, and a directory of
dict_0001.bin chunk files. Every write replaces the whole file atomically.

# Configuration

Defaults live in [UserConfigDir]/freqdict/config.toml, created on first run:

	[build]
	titles = ["Machine learning", "Cryptography"]
	output = "wikipedia_word_freq.json"
	workers = 1
	fetch_timeout_seconds = 30

	[source]
	kind = "wikipedia"
	language = "en"

	[clean]
	input = "ngram_freq_dict_top_80.csv"
	percentile = 0.2

FREQDICT_SOURCE, FREQDICT_LANGUAGE, FREQDICT_ENDPOINT, FREQDICT_USER_AGENT,
FREQDICT_SOURCE_DIR and FREQDICT_WORKERS override the file, and may be set
in a .env file in the working directory.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	Version = "1.0.0"
	AppName = "freqdict"
	gh      = "https://github.com/bastiangx/freqdict"
)

// sigHandler cancels the returned context on the first interrupt so a running
// build stops fetching and nothing half-built is written. A second interrupt exits.
func sigHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		<-c
		os.Exit(130)
	}()
	return ctx, cancel
}

func main() {
	ctx, cancel := sigHandler()
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(1)
	}
}

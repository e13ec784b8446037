// Package main provides a command-line front end for the extraction
// pipeline. It reads a phrase from the arguments, runs the same strategy
// chain the server uses and prints the resulting event as JSON.
//
// Usage:
//
//	go run cmd/extract/main.go "meeting at 3pm today"
//	ANTHROPIC_API_KEY=sk-... go run cmd/extract/main.go -tz Europe/Berlin "lunch tomorrow at noon"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"planbuddy/internal/anthropic"
	"planbuddy/internal/config"
	"planbuddy/internal/extract"
	"planbuddy/internal/openai"
)

func main() {
	timezone := flag.String("tz", "", "IANA timezone for interpreting the text (default: server default)")
	reference := flag.String("ref", "", "reference time in RFC3339 (default: now)")
	heuristicOnly := flag.Bool("heuristic", false, "skip LLM strategies even when API keys are configured")
	flag.Parse()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "usage: extract [-tz zone] [-ref time] [-heuristic] <text>")
		os.Exit(1)
	}

	cfg := config.LoadFromEnv()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	var strategies []extract.Strategy
	if !*heuristicOnly {
		if c := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTemperature); c.IsConfigured() {
			strategies = append(strategies, extract.NewGenerativeStrategy("anthropic", c))
		}
		if c := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTemperature); c.IsConfigured() {
			strategies = append(strategies, extract.NewGenerativeStrategy("openai", c))
		}
	}
	pipeline := extract.NewPipeline(logger, strategies...)

	req := extract.Request{Text: text, Timezone: *timezone}
	if req.Timezone == "" {
		req.Timezone = cfg.DefaultTimezone
	}
	if *reference != "" {
		ref, err := time.Parse(time.RFC3339, *reference)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -ref value: %v\n", err)
			os.Exit(1)
		}
		req.Reference = ref
	}

	event := pipeline.Run(context.Background(), req)

	out, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode event: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"briefcast/api"
	"briefcast/backgrounds"
	"briefcast/config"
	"briefcast/frame"
	"briefcast/media"
	"briefcast/pipeline"
	"briefcast/publish"
	"briefcast/queue"
	"briefcast/script"
	"briefcast/tts"
	"briefcast/tui"
	"briefcast/types"
)

func main() {
	// .env is optional; the environment itself always wins.
	_ = godotenv.Load()

	watch := flag.Bool("watch", false, "render with a live progress view")
	serve := flag.Bool("serve", false, "run the HTTP render API")
	consume := flag.Bool("consume", false, "consume render requests from Kafka")
	flag.Parse()

	cfg := config.FromEnv()
	pipe, err := buildPipeline(cfg)
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	switch {
	case *serve:
		runServe(cfg, pipe)
	case *consume:
		runConsume(cfg, pipe)
	case *watch:
		runWatch(cfg, pipe)
	default:
		runOnce(cfg, pipe)
	}
}

// buildPipeline wires the render pipeline from configuration.
func buildPipeline(cfg config.Config) (*pipeline.Pipeline, error) {
	client := media.NewClient(config.FrameWidth, config.FrameHeight, cfg.FPS, cfg.CRF, cfg.EncodeTimeout)

	provider := tts.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	narrator := tts.NewSynthesizer(provider, client, cfg.Voice, cfg.Tempo, cfg.GapMS, cfg.BitrateTTS)

	composer, err := frame.NewComposer(cfg, fetchBadgePhoto(cfg))
	if err != nil {
		return nil, err
	}

	acquirer := backgrounds.NewAcquirer(cfg)
	return pipeline.New(cfg, client, narrator, acquirer, composer), nil
}

// fetchBadgePhoto downloads the presenter photo when one is configured.
// Failures just mean the badge renders with initials.
func fetchBadgePhoto(cfg config.Config) image.Image {
	if cfg.BadgeImageURL == "" || cfg.BadgeSize <= 0 {
		return nil
	}
	client := &http.Client{Timeout: cfg.FetchTimeout}
	resp, err := client.Get(cfg.BadgeImageURL)
	if err != nil {
		log.Printf("badge photo: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("badge photo: status %d", resp.StatusCode)
		return nil
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		log.Printf("badge photo: %v", err)
		return nil
	}
	return img
}

// generateRequest builds the day's render request from the configured theme.
func generateRequest(ctx context.Context, cfg config.Config) (types.RenderRequest, func(), error) {
	seen, err := script.NewSeenFilter(ctx, cfg)
	if err != nil {
		log.Printf("seen filter disabled: %v", err)
		seen = nil
	}
	cleanup := func() {
		if seen != nil {
			seen.Close()
		}
	}

	gen := script.NewGenerator(cfg, seen)
	req, err := gen.Generate(ctx)
	if err != nil {
		cleanup()
		return types.RenderRequest{}, nil, err
	}
	return req, cleanup, nil
}

// runOnce is the default mode: generate, render, optionally publish, print
// the summary.
func runOnce(cfg config.Config, pipe *pipeline.Pipeline) {
	ctx := context.Background()

	req, cleanup, err := generateRequest(ctx, cfg)
	if err != nil {
		log.Fatalf("script generation failed: %v", err)
	}
	defer cleanup()

	result, err := pipe.Run(req)
	if err != nil {
		log.Fatalf("render failed: %v", err)
	}

	publishResult(ctx, cfg, req, result)
	fmt.Println(tui.Summary(result))
}

// runWatch renders one request behind a live TUI.
func runWatch(cfg config.Config, pipe *pipeline.Pipeline) {
	ctx := context.Background()

	req, cleanup, err := generateRequest(ctx, cfg)
	if err != nil {
		log.Fatalf("script generation failed: %v", err)
	}
	defer cleanup()

	events := make(chan types.StageEvent, 32)
	pipe.OnEvent = func(ev types.StageEvent) { events <- ev }

	program := tea.NewProgram(tui.NewModel(events))
	go func() {
		result, err := pipe.Run(req)
		if err == nil {
			publishResult(ctx, cfg, req, result)
		}
		close(events)
		tui.Finish(program, result, err)
	}()

	if _, err := program.Run(); err != nil {
		log.Fatalf("watch view failed: %v", err)
	}
}

func runServe(cfg config.Config, pipe *pipeline.Pipeline) {
	server := api.NewServer(pipe)
	addr := ":" + cfg.Port
	log.Printf("render API listening on %s", addr)
	if err := server.Router().Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runConsume(cfg config.Config, pipe *pipeline.Pipeline) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required in consume mode")
	}
	consumer, err := queue.NewConsumer(cfg, pipe)
	if err != nil {
		log.Fatalf("kafka setup failed: %v", err)
	}
	if err := consumer.Run(context.Background()); err != nil {
		log.Fatalf("consumer error: %v", err)
	}
}

// publishResult uploads the artifact when a bucket is configured.
func publishResult(ctx context.Context, cfg config.Config, req types.RenderRequest, result *types.Result) {
	pub, err := publish.New(ctx, cfg)
	if err != nil {
		log.Printf("publisher disabled: %v", err)
		return
	}
	if pub == nil {
		return
	}

	meta := script.Titles(ctx, req, cfg.CohereKey)
	key, err := pub.Publish(ctx, result, meta)
	if err != nil {
		log.Printf("publish failed: %v", err)
		return
	}
	result.Published = key
	log.Printf("published %s", key)
}

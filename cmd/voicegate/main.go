package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicegate/voicegate/internal/assistant"
	"github.com/voicegate/voicegate/internal/convo"
	"github.com/voicegate/voicegate/internal/httputil"
	"github.com/voicegate/voicegate/internal/retrieval"
	"github.com/voicegate/voicegate/internal/session"
	"github.com/voicegate/voicegate/internal/store"
	"github.com/voicegate/voicegate/internal/stt"
	"github.com/voicegate/voicegate/internal/tts"
	"github.com/voicegate/voicegate/internal/ws"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := loadConfig()

	if cfg.deepgramAPIKey == "" {
		slog.Error("DEEPGRAM_API_KEY is required")
		os.Exit(1)
	}

	var chat convo.ChatClient
	switch cfg.llmEngine {
	case "openai":
		if cfg.openaiAPIKey == "" {
			slog.Error("OPENAI_API_KEY is required when LLM_ENGINE=openai")
			os.Exit(1)
		}
		chat = convo.NewOpenAIClient(cfg.openaiAPIKey, cfg.openaiModel, int64(cfg.llmMaxTokens))
	default:
		chat = convo.NewOllamaClient(cfg.ollamaURL, cfg.ollamaModel, cfg.llmMaxTokens, cfg.llmPoolSize)
	}
	engine := convo.NewEngine(chat)

	ttsHTTP := httputil.NewPooledClient(cfg.ttsPoolSize, 30*time.Second)
	ttsBackends := map[string]tts.Synthesizer{
		"deepgram": tts.NewDeepgramSpeaker(cfg.deepgramAPIURL, cfg.deepgramAPIKey, ttsHTTP),
	}
	if cfg.openaiTTSURL != "" {
		ttsBackends["openai"] = tts.NewOpenAISpeaker(cfg.openaiTTSURL, cfg.openaiTTSModel, ttsHTTP)
	}
	synth := tts.NewRouter(ttsBackends, "deepgram")

	var retriever session.Retriever
	if cfg.qdrantURL != "" {
		retriever = retrieval.NewRetriever(retrieval.Config{
			Embedder:       retrieval.NewEmbeddingClient(cfg.ollamaURL, cfg.embeddingModel, cfg.llmPoolSize),
			Qdrant:         retrieval.NewQdrantClient(cfg.qdrantURL, cfg.qdrantPoolSize),
			TopK:           cfg.ragTopK,
			ScoreThreshold: cfg.ragScoreThreshold,
		})
		slog.Info("retrieval enabled", "qdrant", cfg.qdrantURL, "embedding_model", cfg.embeddingModel)
	}

	var assistants assistant.Store
	var recorder session.Recorder
	if cfg.databaseURL != "" {
		pg, err := assistant.Open(cfg.databaseURL)
		if err != nil {
			slog.Error("open assistant store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		assistants = pg
		slog.Info("assistant store: postgres")

		callLog, err := store.Open(cfg.databaseURL)
		if err != nil {
			slog.Error("open call log", "error", err)
			os.Exit(1)
		}
		defer callLog.Close()
		recorder = callLog
	} else {
		assistants = assistant.NewStaticStore(assistant.Assistant{
			ID:           cfg.bridgeAssistantID,
			Name:         cfg.assistantName,
			SystemPrompt: cfg.assistantPrompt,
			Greeting:     cfg.assistantGreeting,
			Voice:        cfg.assistantVoice,
			Collection:   cfg.assistantColl,
		})
		slog.Info("assistant store: static", "assistant", cfg.bridgeAssistantID)
	}

	registry := session.NewRegistry()

	handler := ws.NewHandler(ws.HandlerConfig{
		Assistants: assistants,
		Engine:     engine,
		Synth:      synth,
		Retriever:  retriever,
		Recorder:   recorder,
		Registry:   registry,
		NewRecognizer: func(opts stt.LiveOptions) stt.Stream {
			return stt.NewDeepgramStream(cfg.deepgramListenURL, cfg.deepgramAPIKey, opts)
		},
		BridgeAssistantID: cfg.bridgeAssistantID,
		MaxConcurrent:     cfg.maxConcurrentCalls,
		TurnTimeout:       cfg.turnTimeout,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		wsHandler:  handler,
		registry:   registry,
		assistants: assistants,
	})

	addr := ":" + cfg.port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("voicegate starting", "addr", addr, "llm_engine", cfg.llmEngine, "max_concurrent", cfg.maxConcurrentCalls)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("voicegate stopped")
}

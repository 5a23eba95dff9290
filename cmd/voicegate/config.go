package main

import (
	"os"
	"strconv"
	"time"

	"github.com/voicegate/voicegate/internal/prompts"
)

type config struct {
	port string

	deepgramAPIKey    string
	deepgramListenURL string
	deepgramAPIURL    string

	llmEngine    string
	ollamaURL    string
	ollamaModel  string
	openaiAPIKey string
	openaiModel  string
	llmMaxTokens int
	llmPoolSize  int

	ttsPoolSize    int
	openaiTTSURL   string
	openaiTTSModel string

	qdrantURL         string
	qdrantPoolSize    int
	embeddingModel    string
	ragTopK           int
	ragScoreThreshold float64

	databaseURL string

	bridgeAssistantID string
	assistantName     string
	assistantPrompt   string
	assistantGreeting string
	assistantVoice    string
	assistantColl     string

	maxConcurrentCalls int
	turnTimeout        time.Duration
}

func loadConfig() config {
	return config{
		port: envStr("PORT", "8000"),

		deepgramAPIKey:    envStr("DEEPGRAM_API_KEY", ""),
		deepgramListenURL: envStr("DEEPGRAM_LISTEN_URL", "wss://api.deepgram.com"),
		deepgramAPIURL:    envStr("DEEPGRAM_API_URL", "https://api.deepgram.com"),

		llmEngine:    envStr("LLM_ENGINE", "ollama"),
		ollamaURL:    envStr("OLLAMA_URL", "http://localhost:11434"),
		ollamaModel:  envStr("OLLAMA_MODEL", "llama3.2:3b"),
		openaiAPIKey: envStr("OPENAI_API_KEY", ""),
		openaiModel:  envStr("OPENAI_MODEL", "gpt-4o-mini"),
		llmMaxTokens: envInt("LLM_MAX_TOKENS", 150),
		llmPoolSize:  envInt("LLM_POOL_SIZE", 50),

		ttsPoolSize:    envInt("TTS_POOL_SIZE", 50),
		openaiTTSURL:   envStr("OPENAI_TTS_URL", ""),
		openaiTTSModel: envStr("OPENAI_TTS_MODEL", "tts-1"),

		qdrantURL:         envStr("QDRANT_URL", ""),
		qdrantPoolSize:    envInt("QDRANT_POOL_SIZE", 10),
		embeddingModel:    envStr("EMBEDDING_MODEL", "nomic-embed-text"),
		ragTopK:           envInt("RAG_TOP_K", 3),
		ragScoreThreshold: envFloat("RAG_SCORE_THRESHOLD", 0.7),

		databaseURL: envStr("DATABASE_URL", ""),

		bridgeAssistantID: envStr("BRIDGE_ASSISTANT_ID", "default"),
		assistantName:     envStr("ASSISTANT_NAME", "Receptionist"),
		assistantPrompt:   envStr("ASSISTANT_SYSTEM_PROMPT", prompts.DefaultSystem),
		assistantGreeting: envStr("ASSISTANT_GREETING", prompts.DefaultGreeting),
		assistantVoice:    envStr("ASSISTANT_VOICE", ""),
		assistantColl:     envStr("ASSISTANT_COLLECTION", ""),

		maxConcurrentCalls: envInt("MAX_CONCURRENT_CALLS", 100),
		turnTimeout:        time.Duration(envInt("TURN_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}

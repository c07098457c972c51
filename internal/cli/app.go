package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"mantis/config"
	"mantis/internal/adapter/analyzer"
	"mantis/internal/adapter/cache"
	"mantis/internal/adapter/llm"
	"mantis/internal/adapter/memstore"
	"mantis/internal/adapter/retriever"
	"mantis/internal/adapter/store"
	"mantis/internal/adapter/watcher"
	"mantis/internal/domain"
	"mantis/internal/logging"
	"mantis/internal/usecase"
)

// app wires the loaded knowledge base to the retrieval and answer use cases.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	corpus    *memstore.Corpus
	cache     *cache.QueryCache
	retrieve  *usecase.RetrieveUseCase
	packer    *usecase.PackUseCase
	answer    *usecase.AnswerUseCase
	generator *llm.KoboldClient
}

func newApp(cfg *config.Config, log *logrus.Logger) (*app, error) {
	chunks, err := store.LoadKnowledgeBase(cfg.KnowledgeBase.Path)
	if err != nil {
		if errors.Is(err, domain.ErrKnowledgeBaseNotFound) {
			return nil, fmt.Errorf("%w\nRun 'mantis ingest' first to build it", err)
		}
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyKnowledgeBase, cfg.KnowledgeBase.Path)
	}
	return newAppWithChunks(cfg, log, chunks), nil
}

func newAppWithChunks(cfg *config.Config, log *logrus.Logger, chunks []domain.Chunk) *app {
	corpus := memstore.NewCorpus(chunks, cfg.KnowledgeBase.Path)
	tokenizer := analyzer.NewQueryTokenizer()

	queryCache := cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL.Duration)
	cached := cache.NewCachedRetriever(retriever.NewKeywordRetriever(corpus, tokenizer), queryCache)
	corpus.OnSwap(cached.Invalidate)

	generator := llm.NewKoboldClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout.Duration,
		Params: llm.Params{
			MaxLength:     cfg.LLM.MaxLength,
			Temperature:   cfg.LLM.Temperature,
			TopP:          cfg.LLM.TopP,
			TopK:          cfg.LLM.TopK,
			RepPen:        cfg.LLM.RepPen,
			StopSequences: cfg.LLM.StopSequences,
		},
	})

	retrieveUC := usecase.NewRetrieveUseCase(cached, cfg.Retrieve.TopK, logging.Component(log, "retrieve"))
	packUC := usecase.NewPackUseCase(tokenizer)
	answerUC := usecase.NewAnswerUseCase(
		retriever.NewPlatformGuard(),
		retrieveUC,
		packUC,
		generator,
		corpus,
		logging.Component(log, "answer"),
	)

	log.WithFields(logrus.Fields{
		"chunks": len(chunks),
		"path":   cfg.KnowledgeBase.Path,
	}).Debug("knowledge base loaded")

	return &app{
		cfg:       cfg,
		log:       log,
		corpus:    corpus,
		cache:     queryCache,
		retrieve:  retrieveUC,
		packer:    packUC,
		answer:    answerUC,
		generator: generator,
	}
}

// watch reloads the knowledge base on change until the returned stop is called.
func (a *app) watch(ctx context.Context) (func(), error) {
	w, err := watcher.NewKBWatcher(a.cfg.KnowledgeBase.Path, store.LoadKnowledgeBase, a.corpus,
		logging.Component(a.log, "kb_watcher"))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w.Stop, nil
}

// describeGenerationError turns generation failures into the message shown in
// place of an answer.
func describeGenerationError(err error, baseURL string) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Sprintf("Cannot connect to KoboldCPP server at %s!\nMake sure the server is running with a model loaded.", baseURL)
	case errors.Is(err, domain.ErrLLMTimeout):
		return "Request timed out. The model may be overloaded."
	case errors.Is(err, domain.ErrLLMResponse):
		return fmt.Sprintf("Server returned error: %s", trimSentinel(err, domain.ErrLLMResponse))
	default:
		return fmt.Sprintf("API request failed: %v", err)
	}
}

func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

// queryFromArgs prefers the -q flag and falls back to positional words.
func queryFromArgs(flag string, args []string) (string, error) {
	q := strings.TrimSpace(flag)
	if q == "" {
		q = strings.TrimSpace(strings.Join(args, " "))
	}
	if q == "" {
		return "", errors.New("a question is required (use -q or pass it as arguments)")
	}
	return q, nil
}

func formatSource(i int, c domain.Chunk) string {
	return fmt.Sprintf("%d. %s - Page %d [%s]", i, c.Source, c.Page, c.Platform)
}

// indent prefixes every line after the first, aligning continuation lines
// under a label such as "Assistant: ".
func indent(text string, width int) string {
	pad := strings.Repeat(" ", width)
	return strings.ReplaceAll(text, "\n", "\n"+pad)
}

//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"
	"time"

	"mantis/internal/adapter/analyzer"
	"mantis/internal/adapter/chunker"
	"mantis/internal/adapter/memstore"
	"mantis/internal/adapter/retriever"
	"mantis/internal/domain"
	"mantis/internal/usecase"
)

var (
	corpus    *memstore.Corpus
	tokenizer *analyzer.QueryTokenizer
	chk       *chunker.PageChunker
	answerUC  *usecase.AnswerUseCase
	docCount  int
)

func init() {
	corpus = memstore.NewCorpus(nil, "browser")
	tokenizer = analyzer.NewQueryTokenizer()
	chk = chunker.NewPageChunker()

	retrieveUC := usecase.NewRetrieveUseCase(retriever.NewKeywordRetriever(corpus, tokenizer), usecase.DefaultTopK, nil)
	answerUC = usecase.NewAnswerUseCase(
		retriever.NewPlatformGuard(),
		retrieveUC,
		usecase.NewPackUseCase(tokenizer),
		nil,
		corpus,
		nil,
	)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("mantisIndex", js.FuncOf(indexManual))
	js.Global().Set("mantisPrompt", js.FuncOf(buildPrompt))
	js.Global().Set("mantisClear", js.FuncOf(clearCorpus))
	js.Global().Set("mantisStats", js.FuncOf(getStats))

	<-c
}

// indexManual adds one manual's text, pages separated by form feeds.
func indexManual(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: mantisIndex(filename, content)")
	}

	filename := args[0].String()
	content := args[1].String()

	doc := domain.Document{
		ID:       filename,
		Path:     filename,
		Name:     filename,
		Platform: analyzer.DetectPlatform(filename),
		ModTime:  time.Now(),
	}

	chunks, err := chk.Chunk(doc, content)
	if err != nil {
		return makeError("chunking failed: " + err.Error())
	}

	current := corpus.Snapshot()
	next := make([]domain.Chunk, 0, current.Len()+len(chunks))
	if current != nil {
		next = append(next, current.Chunks...)
	}
	for _, c := range chunks {
		docCount++
		c.ID = fmt.Sprintf("doc%d_p%d", docCount, c.Page)
		next = append(next, c)
	}
	corpus.Swap(next, "browser")

	return makeResult(map[string]interface{}{
		"success":  true,
		"chunks":   len(chunks),
		"platform": doc.Platform,
		"filename": filename,
	})
}

// buildPrompt returns the ranked pages and the prompt a model would receive.
func buildPrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: mantisPrompt(question)")
	}

	query := args[0].String()
	ans, err := answerUC.Prepare(query)
	if err != nil {
		return makeError("prepare failed: " + err.Error())
	}

	output := make([]map[string]interface{}, 0, len(ans.Sources))
	for _, r := range ans.Sources {
		output = append(output, map[string]interface{}{
			"id":       r.Chunk.ID,
			"source":   r.Chunk.Source,
			"page":     r.Chunk.Page,
			"platform": r.Chunk.Platform,
			"score":    r.Score,
			"text":     r.Chunk.Text,
		})
	}

	return makeResult(map[string]interface{}{
		"query":   query,
		"outcome": ans.Outcome.String(),
		"reply":   ans.Text,
		"results": output,
		"prompt":  ans.Prompt,
	})
}

func clearCorpus(this js.Value, args []js.Value) interface{} {
	corpus.Swap(nil, "browser")
	docCount = 0
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	kb := corpus.Snapshot()
	stats := domain.ComputeStats(kb.Chunks)

	return makeResult(map[string]interface{}{
		"totalChunks": stats.TotalChunks,
		"byPlatform":  stats.ByPlatform,
		"platforms":   kb.Platforms(),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}

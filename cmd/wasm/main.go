//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"syscall/js"

	"docqa/config"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/synthesizer"
	"docqa/internal/domain"
	"docqa/internal/usecase"
)

// memLoader serves documents handed over from JavaScript. Form feeds split pages.
type memLoader struct {
	docs map[string]string
}

func (l *memLoader) Load(name string) (domain.Document, error) {
	content, ok := l.docs[name]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s: not provided", domain.ErrDocumentLoad, name)
	}

	parts := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\f")
	doc := domain.Document{Source: name}
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, domain.Page{Number: i + 1, Text: part})
	}
	if len(doc.Pages) == 0 {
		return domain.Document{}, fmt.Errorf("%w: %s: no text", domain.ErrDocumentLoad, name)
	}
	return doc, nil
}

var (
	loader   *memLoader
	pipeline *usecase.Pipeline
)

func main() {
	if err := reset(); err != nil {
		panic(err)
	}

	c := make(chan struct{})

	js.Global().Set("docqaIngest", js.FuncOf(ingestContent))
	js.Global().Set("docqaQuery", js.FuncOf(queryContent))
	js.Global().Set("docqaClear", js.FuncOf(clearIndex))
	js.Global().Set("docqaInfo", js.FuncOf(getInfo))

	<-c
}

// reset builds a fresh pipeline. The browser build always uses the hash
// embedder since it cannot reach an embedding service.
func reset() error {
	cfg := config.DefaultConfig()
	cfg.Index.Persist = false

	embedder, err := embedding.NewHashEmbedder(cfg.Embedding.Dimension)
	if err != nil {
		return err
	}

	loader = &memLoader{docs: make(map[string]string)}
	pipeline, err = usecase.NewPipeline(cfg, loader, embedder, synthesizer.New(cfg.Synthesis))
	return err
}

func ingestContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: docqaIngest(filename, content)")
	}

	filename := args[0].String()
	loader.docs = map[string]string{filename: args[1].String()}

	info, err := pipeline.Ingest(context.Background(), filename)
	if err != nil {
		return makeError("ingest failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"success":  true,
		"chunks":   info.TotalChunks,
		"filename": info.SourcePath,
	})
}

func queryContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: docqaQuery(question, [topK])")
	}

	question := args[0].String()
	k := config.DefaultConfig().Retrieve.TopK
	if len(args) > 1 {
		k = args[1].Int()
	}

	resp, err := pipeline.QueryK(context.Background(), question, k)
	if err != nil {
		return makeError("query failed: " + err.Error())
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return makeError(err.Error())
	}
	return string(data)
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	if err := reset(); err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getInfo(this js.Value, args []js.Value) interface{} {
	info, err := pipeline.DescribeIndex()
	if err != nil {
		return makeError(err.Error())
	}
	data, err := json.Marshal(info)
	if err != nil {
		return makeError(err.Error())
	}
	return string(data)
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

// Package server exposes generation over JSON-RPC 2.0 on stdio so that
// editors and agent harnesses can request context documents without
// spawning a fresh process per request.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/kurtatter/cmforai/internal/generate"
	"github.com/kurtatter/cmforai/internal/logger"
	"github.com/kurtatter/cmforai/internal/project"
)

var log = logger.ForComponent("server")

// GenerateParams is the wire form of one generation request. Root is
// required; the remaining fields override the server's base config.
type GenerateParams struct {
	Root           string   `json:"root"`
	MaxTokens      *int     `json:"maxTokens,omitempty"`
	MaxFiles       *int     `json:"maxFiles,omitempty"`
	FilesToAnalyze []string `json:"filesToAnalyze,omitempty"`
	IgnorePatterns []string `json:"ignorePatterns,omitempty"`
	Compress       *bool    `json:"compress,omitempty"`
}

type GenerateResult struct {
	Markdown        string `json:"markdown"`
	FilesSelected   int    `json:"filesSelected"`
	EstimatedTokens int    `json:"estimatedTokens"`
}

type AnalyzeResult struct {
	Root        string         `json:"root"`
	ProjectType string         `json:"projectType"`
	TotalFiles  int            `json:"totalFiles"`
	TotalBytes  int64          `json:"totalBytes"`
	Languages   map[string]int `json:"languages"`
}

// Server answers context/generate and context/analyze over a single stdio
// connection. One request is served at a time; generation is CPU and IO
// bound, so parallel runs on the same project would only contend.
type Server struct {
	baseCfg  generate.Config
	cache    project.MetadataCache
	done     chan struct{}
	doneOnce sync.Once
}

func New(baseCfg generate.Config, cache project.MetadataCache) *Server {
	return &Server{
		baseCfg: baseCfg,
		cache:   cache,
		done:    make(chan struct{}),
	}
}

type stdioConn struct {
	io.Reader
	io.Writer
}

func (stdioConn) Close() error { return nil }

// Run serves requests until the client disconnects, the context ends, or a
// shutdown request arrives.
func (s *Server) Run(ctx context.Context) error {
	log.Info("serving on stdio")

	stream := jsonrpc2.NewBufferedStream(stdioConn{os.Stdin, os.Stdout}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	defer conn.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	case <-s.done:
		return nil
	}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	log.Debug("request", "method", req.Method)

	switch req.Method {
	case "context/generate":
		return s.handleGenerate(ctx, req)
	case "context/analyze":
		return s.handleAnalyze(req)
	case "ping":
		return "pong", nil
	case "shutdown":
		s.doneOnce.Do(func() { close(s.done) })
		return nil, nil
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

func (s *Server) handleGenerate(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	params, err := decodeGenerateParams(req)
	if err != nil {
		return nil, err
	}

	cfg := s.baseCfg
	if params.MaxTokens != nil {
		cfg.MaxTokens = *params.MaxTokens
	}
	if params.MaxFiles != nil {
		cfg.MaxFiles = *params.MaxFiles
	}
	if params.Compress != nil {
		cfg.CompressLargeFiles = *params.Compress
	}
	if len(params.FilesToAnalyze) > 0 {
		cfg.FilesToAnalyze = params.FilesToAnalyze
	}

	info, err := s.analyze(params.Root, params.IgnorePatterns)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	markdown, result := generate.New(cfg).Generate(ctx, info)

	return GenerateResult{
		Markdown:        markdown,
		FilesSelected:   len(result.Selections),
		EstimatedTokens: result.TotalTokens,
	}, nil
}

func (s *Server) handleAnalyze(req *jsonrpc2.Request) (interface{}, error) {
	params, err := decodeGenerateParams(req)
	if err != nil {
		return nil, err
	}

	info, err := s.analyze(params.Root, params.IgnorePatterns)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	return AnalyzeResult{
		Root:        info.Root,
		ProjectType: info.ProjectType,
		TotalFiles:  len(info.Files),
		TotalBytes:  info.TotalSizeBytes(),
		Languages:   info.LanguageCounts(),
	}, nil
}

func (s *Server) analyze(root string, extraIgnores []string) (*project.Info, error) {
	opts := []project.AnalyzerOption{}
	if len(extraIgnores) > 0 {
		opts = append(opts, project.WithIgnorePatterns(extraIgnores))
	}
	if s.cache != nil {
		opts = append(opts, project.WithCache(s.cache))
	}

	analyzer, err := project.NewAnalyzer(root, opts...)
	if err != nil {
		return nil, err
	}
	return analyzer.Analyze()
}

func decodeGenerateParams(req *jsonrpc2.Request) (GenerateParams, error) {
	var params GenerateParams
	if req.Params == nil {
		return params, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return params, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	if params.Root == "" {
		return params, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "root is required"}
	}
	return params, nil
}

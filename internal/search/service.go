package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/phrasebook/internal/entry"
	"github.com/at-ishikawa/phrasebook/internal/generator"
)

// ErrorCode classifies the outcome of a search request.
type ErrorCode int

const (
	// CodeOK means the request succeeded.
	CodeOK ErrorCode = -1
	// CodeGenerationFailed means no stored match existed and the generation
	// service failed on both attempts. No entry is returned.
	CodeGenerationFailed ErrorCode = 1
	// CodePersistFailed means a generated entry could not be cached. The
	// entry is still returned; the caller already has the data in hand.
	CodePersistFailed ErrorCode = 2
	// CodeInvalidArgument means the request itself was malformed.
	CodeInvalidArgument ErrorCode = 3
)

// Result is the outcome of one search request.
type Result struct {
	Contents   []entry.Entry `json:"contents"`
	ExactMatch bool          `json:"exactMatch"`
	Error      string        `json:"error"`
	ErrorCode  ErrorCode     `json:"errorCode"`
}

// Service sequences one request: exact match, combination search, generation
// fallback, persistence, response assembly.
type Service struct {
	repo      entry.Repository
	engine    *Engine
	generator generator.Client
	logger    *slog.Logger
}

// NewService creates a new Service. A nil logger falls back to slog.Default.
func NewService(repo entry.Repository, generatorClient generator.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		engine:    NewEngine(repo, logger),
		generator: generatorClient,
		logger:    logger,
	}
}

// Search resolves a phrase to one or more entries. Failures are reported in
// the result envelope; the only error that aborts the pipeline is a
// generation failure, everything store-side degrades to a miss or a warning.
func (s *Service) Search(ctx context.Context, phrase string) Result {
	if strings.TrimSpace(phrase) == "" {
		return Result{Contents: []entry.Entry{}, ErrorCode: CodeOK}
	}

	exact, err := s.repo.FindByPhrase(ctx, phrase)
	if err != nil {
		s.logger.Warn("exact lookup failed",
			"phrase", phrase,
			"error", err)
	}
	if exact != nil {
		return Result{Contents: []entry.Entry{*exact}, ExactMatch: true, ErrorCode: CodeOK}
	}

	matches, err := s.engine.Search(ctx, phrase)
	if err != nil {
		return Result{Contents: []entry.Entry{}, Error: err.Error(), ErrorCode: CodeInvalidArgument}
	}
	if len(matches) > 0 {
		return Result{Contents: matches, ErrorCode: CodeOK}
	}

	generated, err := s.generator.GenerateEntry(ctx, phrase)
	if err != nil {
		return Result{
			Contents:  []entry.Entry{},
			Error:     fmt.Sprintf("generate entry: %v", err),
			ErrorCode: CodeGenerationFailed,
		}
	}

	result := Result{Contents: []entry.Entry{*generated}, ErrorCode: CodeOK}
	// The write must not be torn down by a request timeout: a partially
	// written entry is worse than a cache miss, so persist runs detached
	// from the request context.
	if err := s.repo.Insert(context.WithoutCancel(ctx), generated); err != nil {
		s.logger.Error("persist generated entry failed",
			"phrase", phrase,
			"error", err)
		result.Error = fmt.Sprintf("persist entry: %v", err)
		result.ErrorCode = CodePersistFailed
	}
	return result
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talha309/multiuser-ai-assistant/internal/domain"
	"github.com/talha309/multiuser-ai-assistant/internal/llm"
	"github.com/talha309/multiuser-ai-assistant/internal/repository"
	"github.com/talha309/multiuser-ai-assistant/internal/search"
)

// ConversationPipeline orquesta la secuencia fija de cuatro etapas por
// mensaje entrante: guardar mensaje del usuario, buscar, generar respuesta
// y guardar la respuesta. Las etapas son estrictamente lineales y cualquier
// fallo aborta las restantes. Los writes de las etapas 1 y 4 se confirman
// de forma independiente: un fallo intermedio deja el write del usuario
// committeado, sin compensación ni reintentos.
type ConversationPipeline struct {
	logger    *zap.Logger
	messages  repository.MessageRepository
	searcher  search.Client
	generator llm.Generator
}

var (
	ErrPipelineNotConfigured = errors.New("pipeline not configured")
	ErrPipelineInvalidInput  = errors.New("pipeline invalid input")
	ErrSearchUpstream        = errors.New("search collaborator failed")
	ErrGenerateUpstream      = errors.New("generation collaborator failed")
	ErrPersistence           = errors.New("persistence failed")
)

// maxSearchResults acota el contexto al top del ranking del proveedor,
// sin re-rankear.
const maxSearchResults = 3

func NewConversationPipeline(logger *zap.Logger, messages repository.MessageRepository, searcher search.Client, generator llm.Generator) *ConversationPipeline {
	return &ConversationPipeline{
		logger:    logger,
		messages:  messages,
		searcher:  searcher,
		generator: generator,
	}
}

// pipelineState es el valor inmutable que fluye entre etapas. Cada etapa
// devuelve una copia nueva en lugar de mutar in-place.
type pipelineState struct {
	threadID          string
	userID            string
	userMessage       string
	searchResults     []search.Result
	assistantResponse string
}

type stage func(ctx context.Context, state pipelineState) (pipelineState, error)

// Run ejecuta las cuatro etapas en orden y devuelve el id del hilo. No
// devuelve los mensajes: el caller relee el hilo para observar los dos
// mensajes nuevos.
func (p *ConversationPipeline) Run(ctx context.Context, threadID, userID, content string) (string, error) {
	if p == nil || p.messages == nil || p.searcher == nil || p.generator == nil {
		return "", ErrPipelineNotConfigured
	}

	content = strings.TrimSpace(content)
	if threadID == "" || content == "" {
		return "", ErrPipelineInvalidInput
	}

	state := pipelineState{
		threadID:    threadID,
		userID:      userID,
		userMessage: content,
	}

	stages := []stage{
		p.recordUserMessage,
		p.performSearch,
		p.generateResponse,
		p.recordAssistantMessage,
	}

	var err error
	for _, run := range stages {
		state, err = run(ctx, state)
		if err != nil {
			return "", err
		}
	}
	return state.threadID, nil
}

func (p *ConversationPipeline) recordUserMessage(ctx context.Context, state pipelineState) (pipelineState, error) {
	msg := domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  state.threadID,
		Role:      domain.RoleUser,
		Content:   state.userMessage,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.messages.Append(ctx, msg); err != nil {
		return pipelineState{}, fmt.Errorf("%w: save user message: %v", ErrPersistence, err)
	}
	return state, nil
}

func (p *ConversationPipeline) performSearch(ctx context.Context, state pipelineState) (pipelineState, error) {
	results, err := p.searcher.Search(ctx, state.userMessage)
	if err != nil {
		return pipelineState{}, fmt.Errorf("%w: %v", ErrSearchUpstream, err)
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	next := state
	next.searchResults = results
	return next, nil
}

func (p *ConversationPipeline) generateResponse(ctx context.Context, state pipelineState) (pipelineState, error) {
	prompt := buildPrompt(state.userMessage, state.searchResults)
	response, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return pipelineState{}, fmt.Errorf("%w: %v", ErrGenerateUpstream, err)
	}
	next := state
	next.assistantResponse = response
	return next, nil
}

func (p *ConversationPipeline) recordAssistantMessage(ctx context.Context, state pipelineState) (pipelineState, error) {
	msg := domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  state.threadID,
		Role:      domain.RoleAssistant,
		Content:   state.assistantResponse,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.messages.Append(ctx, msg); err != nil {
		return pipelineState{}, fmt.Errorf("%w: save assistant message: %v", ErrPersistence, err)
	}
	return state, nil
}

func buildPrompt(userMessage string, results []search.Result) string {
	return "User asked: " + userMessage + "\n\nExtra context:\n" + BuildSearchContext(results)
}

// BuildSearchContext une los resultados como líneas "<title>: <url>"
// separadas por newline.
func BuildSearchContext(results []search.Result) string {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		lines = append(lines, res.Title+": "+res.URL)
	}
	return strings.Join(lines, "\n")
}

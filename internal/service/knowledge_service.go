package service

import (
	"context"
	"fmt"

	"smart-triage-be/internal/config"
	"smart-triage-be/internal/dto"
	"smart-triage-be/internal/pkg/logger"
	"smart-triage-be/pkg/knowledge"
)

type IKnowledgeService interface {
	Reload(ctx context.Context, req *dto.ReloadKnowledgeRequest) (*dto.ReloadKnowledgeResponse, error)
	Query(ctx context.Context, req *dto.QueryKnowledgeRequest) (*dto.QueryKnowledgeResponse, error)
}

type knowledgeService struct {
	pipeline  *knowledge.Pipeline
	retriever knowledge.Retriever
	cfg       config.KnowledgeConfig
	log       logger.ILogger
}

func NewKnowledgeService(
	pipeline *knowledge.Pipeline,
	retriever knowledge.Retriever,
	cfg config.KnowledgeConfig,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		pipeline:  pipeline,
		retriever: retriever,
		cfg:       cfg,
		log:       log,
	}
}

// Sources maps each configured collection to its reference document on disk.
func (s *knowledgeService) Sources(collections []string) []knowledge.Source {
	if len(collections) == 0 {
		collections = s.cfg.Collections
	}
	sources := make([]knowledge.Source, 0, len(collections))
	for _, c := range collections {
		sources = append(sources, knowledge.FileSource(s.cfg.DataDir, c))
	}
	return sources
}

func (s *knowledgeService) Reload(ctx context.Context, req *dto.ReloadKnowledgeRequest) (*dto.ReloadKnowledgeResponse, error) {
	sources := s.Sources(req.Collections)

	s.log.Info("KnowledgeService", "Knowledge reload requested", map[string]interface{}{
		"force":       req.Force,
		"collections": len(sources),
	})

	reports, err := s.pipeline.IngestAll(ctx, sources, req.Force)
	resp := &dto.ReloadKnowledgeResponse{}
	for _, source := range sources {
		report, ok := reports[source.Collection]
		item := dto.CollectionReportDTO{Collection: source.Collection}
		if !ok || report == nil {
			item.Error = "ingestion failed"
		} else {
			item.TotalChunks = report.TotalChunks
			item.StoredChunks = report.StoredChunks
			item.FailedChunks = report.FailedChunks
			item.Skipped = report.Skipped
		}
		resp.Reports = append(resp.Reports, item)
	}

	if err != nil {
		// partial failure: other collections were still ingested, report
		// the error alongside what succeeded
		s.log.Warn("KnowledgeService", "Knowledge reload finished with errors", map[string]interface{}{
			"error": err.Error(),
		})
		return resp, nil
	}
	return resp, nil
}

func (s *knowledgeService) Query(ctx context.Context, req *dto.QueryKnowledgeRequest) (*dto.QueryKnowledgeResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	result, err := s.retriever.Query(ctx, req.Query, req.Collections, topK)
	if err != nil {
		return nil, fmt.Errorf("knowledge query: %w", err)
	}

	resp := &dto.QueryKnowledgeResponse{Skipped: result.Skipped}
	for _, p := range result.Passages {
		resp.Passages = append(resp.Passages, dto.PassageDTO{
			Collection: p.Collection,
			Rank:       p.Rank,
			Text:       p.Text,
			Similarity: p.Similarity,
			SourceName: p.SourceName,
		})
	}
	return resp, nil
}

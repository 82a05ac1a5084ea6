package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skillmatch/backend/internal/domain"
)

// Report artifact kinds stored in the cache
const (
	artifactPDF   = "pdf"
	artifactChart = "chart"
)

// AnalysisServiceConfig holds configuration and optional collaborators for the analysis service.
// Leaving Charts or Reports nil disables report rendering; leaving Fetcher nil disables job URLs.
type AnalysisServiceConfig struct {
	ReportTTL          time.Duration
	Charts             domain.ChartRenderer
	Reports            domain.ReportRenderer
	Fetcher            domain.PostingFetcher
	Documents          domain.DocumentExtractor
	Observer           domain.AnalysisObserver
	EnableDebugLogging bool
}

// AnalysisService compares resumes against catalog roles or custom job descriptions
type AnalysisService struct {
	catalog      *domain.RoleCatalog
	cache        domain.CacheRepository
	extractor    *SkillExtractor
	preprocessor *TextPreprocessor
	roleSkills   map[string]domain.SkillSet
	charts       domain.ChartRenderer
	reports      domain.ReportRenderer
	fetcher      domain.PostingFetcher
	documents    domain.DocumentExtractor
	observer     domain.AnalysisObserver
	reportTTL    time.Duration
	debug        bool
}

// NewAnalysisService creates a new analysis service with dependencies.
// Role skills are extracted once here since the catalog never changes.
func NewAnalysisService(
	catalog *domain.RoleCatalog,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
) *AnalysisService {
	extractor := NewSkillExtractor(skillVocabulary, config.EnableDebugLogging)

	roleSkills := make(map[string]domain.SkillSet, catalog.Len())
	for _, role := range catalog.Roles() {
		roleSkills[role.Name] = extractor.Extract(role.Description)
	}

	reportTTL := config.ReportTTL
	if reportTTL <= 0 {
		reportTTL = time.Hour
	}

	return &AnalysisService{
		catalog:      catalog,
		cache:        cache,
		extractor:    extractor,
		preprocessor: NewTextPreprocessor(config.EnableDebugLogging),
		roleSkills:   roleSkills,
		charts:       config.Charts,
		reports:      config.Reports,
		fetcher:      config.Fetcher,
		documents:    config.Documents,
		observer:     config.Observer,
		reportTTL:    reportTTL,
		debug:        config.EnableDebugLogging,
	}
}

// Analyze extracts skills from the resume and the target and scores the overlap.
// Flow: validate -> resolve target -> extract -> compare -> render report -> observe
func (s *AnalysisService) Analyze(
	ctx context.Context,
	request *domain.AnalysisRequest,
) (*domain.Analysis, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	if strings.TrimSpace(request.ResumeText) == "" {
		return nil, domain.ErrEmptyResume
	}

	target, kind, targetSkills, err := s.resolveTarget(ctx, request)
	if err != nil {
		return nil, err
	}

	resumeSkills := s.extractor.Extract(request.ResumeText)
	result := AnalyzeMatch(resumeSkills, targetSkills)

	analysis := &domain.Analysis{
		ID:           uuid.NewString(),
		Target:       target,
		TargetKind:   kind,
		ResumeSkills: resumeSkills.Sorted(),
		TargetSkills: targetSkills.Sorted(),
		Result:       result,
		CreatedAt:    time.Now().UTC(),
	}

	if s.reportsEnabled() {
		// Rendering is presentation glue; a failure here never fails the analysis
		if err := s.storeReport(ctx, analysis.ID, result); err != nil {
			log.Printf("[REPORT] Skipping report for %s: %v", analysis.ID, err)
		} else {
			analysis.ReportID = analysis.ID
		}
	}

	if s.debug {
		log.Printf("[ANALYZE] %s %q: score=%.2f matched=%d missing=%d",
			kind, target, result.Score, result.MatchedCount(), result.MissingCount())
	}

	if s.observer != nil {
		s.observer.ObserveAnalysis(kind, result)
	}

	return analysis, nil
}

// resolveTarget picks the comparison text. Exactly one of role, description or URL must be set.
func (s *AnalysisService) resolveTarget(
	ctx context.Context,
	request *domain.AnalysisRequest,
) (string, string, domain.SkillSet, error) {
	role := strings.TrimSpace(request.Role)
	description := strings.TrimSpace(request.JobDescription)
	jobURL := strings.TrimSpace(request.JobURL)

	set := 0
	for _, v := range []string{role, description, jobURL} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", "", nil, fmt.Errorf("%w: exactly one of role, jobDescription or jobUrl is required", domain.ErrInvalidRequest)
	}

	switch {
	case role != "":
		skills, err := s.RoleSkills(role)
		if err != nil {
			return "", "", nil, err
		}
		return role, domain.TargetRole, skills, nil

	case description != "":
		return "custom", domain.TargetDescription, s.extractor.Extract(description), nil

	default:
		if s.fetcher == nil {
			return "", "", nil, domain.ErrFetchDisabled
		}
		text, err := s.fetcher.FetchPosting(ctx, jobURL)
		if err != nil {
			return "", "", nil, err
		}
		return jobURL, domain.TargetURL, s.extractor.Extract(s.preprocessor.Normalize(text)), nil
	}
}

// ResumeFromDocument extracts and cleans the text of an uploaded resume file
func (s *AnalysisService) ResumeFromDocument(filename string, data []byte) (string, error) {
	if s.documents == nil {
		return "", domain.ErrUnsupportedDocument
	}
	text, err := s.documents.ExtractText(filename, data)
	if err != nil {
		return "", err
	}
	return s.preprocessor.Normalize(text), nil
}

// Roles returns the role catalog in its original order
func (s *AnalysisService) Roles() []domain.Role {
	return s.catalog.Roles()
}

// RoleSkills returns the skills extracted from a catalog role's description
func (s *AnalysisService) RoleSkills(name string) (domain.SkillSet, error) {
	if _, err := s.catalog.Lookup(name); err != nil {
		return nil, err
	}
	return domain.NewSkillSet(s.roleSkills[name].Sorted()...), nil
}

// Report returns the stored PDF report for an analysis
func (s *AnalysisService) Report(ctx context.Context, id string) ([]byte, error) {
	return s.artifact(ctx, id, artifactPDF)
}

// Chart returns the stored PNG chart for an analysis
func (s *AnalysisService) Chart(ctx context.Context, id string) ([]byte, error) {
	return s.artifact(ctx, id, artifactChart)
}

func (s *AnalysisService) reportsEnabled() bool {
	return s.cache != nil && s.charts != nil && s.reports != nil
}

// storeReport renders chart and PDF and caches both under the analysis id
func (s *AnalysisService) storeReport(ctx context.Context, id string, result domain.MatchResult) error {
	chartPNG, err := s.charts.RenderChart(result)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	pdf, err := s.reports.RenderReport(result, chartPNG)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if err := s.cache.Set(ctx, artifactKey(id, artifactChart), chartPNG, s.reportTTL); err != nil {
		return fmt.Errorf("store chart: %w", err)
	}
	if err := s.cache.Set(ctx, artifactKey(id, artifactPDF), pdf, s.reportTTL); err != nil {
		// the chart alone is unreachable without a report id
		if delErr := s.cache.Delete(ctx, artifactKey(id, artifactChart)); delErr != nil {
			log.Printf("[REPORT] Failed to drop orphaned chart for %s: %v", id, delErr)
		}
		return fmt.Errorf("store report: %w", err)
	}

	return nil
}

// artifact loads one stored report artifact; malformed ids are treated as unknown
func (s *AnalysisService) artifact(ctx context.Context, id, kind string) ([]byte, error) {
	if s.cache == nil {
		return nil, domain.ErrReportNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrReportNotFound
	}

	data, err := s.cache.Get(ctx, artifactKey(id, kind))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return data, nil
}

// artifactKey builds the cache key for a report artifact.
// Format: "report:{id}:{kind}"
func artifactKey(id, kind string) string {
	return fmt.Sprintf("report:%s:%s", id, kind)
}

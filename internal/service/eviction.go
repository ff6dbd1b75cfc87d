package service

import (
	"context"
	"time"

	"cotemplate/internal/repo"

	"go.uber.org/zap"
)

// EvictionService удаляет шаблоны старше максимального возраста.
// Запускается по расписанию; прав не проверяет — планировщик доверенный.
type EvictionService struct {
	templates repo.TemplateRepository
	tpls      *TemplateService
	maxAge    time.Duration
	logger    *zap.SugaredLogger
}

func NewEvictionService(templates repo.TemplateRepository, tpls *TemplateService, maxAge time.Duration, logger *zap.SugaredLogger) *EvictionService {
	return &EvictionService{templates: templates, tpls: tpls, maxAge: maxAge, logger: logger}
}

// Run выполняет один проход зачистки. Ошибка на одном шаблоне логируется и
// не прерывает обработку остальных.
func (s *EvictionService) Run(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)

	expired, err := s.templates.FindAllOverAge(ctx, cutoff)
	if err != nil {
		s.logger.Errorw("eviction sweep failed", "error", err)
		return
	}

	for _, tpl := range expired {
		s.logger.Infow("evicting template", "template", tpl.UniqueName)
		if err := s.tpls.deleteTemplate(ctx, tpl.UniqueName); err != nil {
			s.logger.Errorw("unable to evict template",
				"template", tpl.UniqueName, "error", err)
		}
	}
}

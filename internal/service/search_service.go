package service

import (
	"context"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/article"
)

// SearchService 分面搜索：分类限定 + 关键字 + 价格区间 + 特性过滤 +
// 排序分页，命中结果以完整聚合返回
type SearchService struct {
	cfg      config.SearchConfig
	articles article.Repository
}

// NewSearchService 创建搜索服务
func NewSearchService(cfg config.SearchConfig, articles article.Repository) *SearchService {
	return &SearchService{cfg: cfg, articles: articles}
}

// normalize 校验并补全搜索条件默认值
func (s *SearchService) normalize(c article.SearchCriteria) (article.SearchCriteria, error) {
	if c.CategoryID <= 0 {
		return c, apperr.Validationf("搜索必须指定分类")
	}
	switch c.OrderBy {
	case "":
		c.OrderBy = article.SortByName
	case article.SortByName, article.SortByPrice:
	default:
		return c, apperr.Validationf("不支持的排序字段: %q", c.OrderBy)
	}
	if c.Page < 0 {
		return c, apperr.Validationf("页码不能为负")
	}
	if c.PageSize == 0 {
		c.PageSize = s.cfg.DefaultPageSize
	} else if !s.cfg.Allows(c.PageSize) {
		return c, apperr.Validationf("每页条数需在 %v 之内", s.cfg.PageSizes)
	}
	for _, f := range c.Features {
		if f.FeatureID <= 0 || len(f.Values) == 0 {
			return c, apperr.Validationf("特性过滤条件不合法")
		}
	}
	if c.PriceMin != nil && c.PriceMax != nil && c.PriceMin.GreaterThan(*c.PriceMax) {
		return c, apperr.Validationf("价格下限不能高于上限")
	}
	return c, nil
}

// Search 执行搜索。先按条件取命中 ID（排序分页在库内完成），
// 再回读完整聚合并按命中顺序返回
func (s *SearchService) Search(ctx context.Context, c article.SearchCriteria) ([]*article.Article, error) {
	c, err := s.normalize(c)
	if err != nil {
		return nil, err
	}

	GetMonitor().RecordSearch()

	ids, err := s.articles.SearchIDs(ctx, c)
	if err != nil {
		GetMonitor().RecordSearchError()
		return nil, err
	}
	if len(ids) == 0 {
		return []*article.Article{}, nil
	}

	list, err := s.articles.ListByIDs(ctx, ids)
	if err != nil {
		GetMonitor().RecordSearchError()
		return nil, err
	}

	// IN 查询不保证顺序，按命中 ID 的次序重排
	byID := make(map[int64]*article.Article, len(list))
	for _, a := range list {
		byID[a.ID] = a
	}
	out := make([]*article.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

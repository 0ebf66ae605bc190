package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/article"
)

type articleRepo struct {
	db *gorm.DB
}

// NewArticleRepository 创建商品仓储
func NewArticleRepository(db *gorm.DB) article.Repository {
	return &articleRepo{db: db}
}

// currentPriceExpr 当前价子查询：最新一条价格历史的金额
const currentPriceExpr = "(SELECT p.price FROM article_prices p WHERE p.article_id = articles.id ORDER BY p.created_at DESC, p.id DESC LIMIT 1)"

// hydrated 预加载完整聚合：分类、价格历史（按时间升序）、特性值及特性
func (r *articleRepo) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Features").
		Preload("Features.Feature")
}

func (r *articleRepo) GetByID(ctx context.Context, id int64) (*article.Article, error) {
	var a article.Article
	if err := r.hydrated(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepo) ListByCategory(ctx context.Context, categoryID int64) ([]*article.Article, error) {
	var list []*article.Article
	if err := r.hydrated(ctx).
		Where("category_id = ?", categoryID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// SearchIDs 把搜索条件编译成一条参数化查询，返回排序分页后的商品 ID。
// 价格过滤与价格排序都针对当前价（最新价格历史），不看历史价。
func (r *articleRepo) SearchIDs(ctx context.Context, c article.SearchCriteria) ([]int64, error) {
	q := r.db.WithContext(ctx).
		Model(&article.Article{}).
		Where("articles.category_id = ?", c.CategoryID)

	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		pattern := "%" + strings.ToLower(kw) + "%"
		q = q.Where(
			"(LOWER(articles.name) LIKE ? OR LOWER(articles.excerpt) LIKE ? OR LOWER(articles.description) LIKE ?)",
			pattern, pattern, pattern,
		)
	}

	if c.PriceMin != nil {
		q = q.Where(currentPriceExpr+" >= ?", c.PriceMin.InexactFloat64())
	}
	if c.PriceMax != nil {
		q = q.Where(currentPriceExpr+" <= ?", c.PriceMax.InexactFloat64())
	}

	for _, f := range c.Features {
		q = q.Where(
			"EXISTS (SELECT 1 FROM article_features af WHERE af.article_id = articles.id AND af.feature_id = ? AND af.value IN ?)",
			f.FeatureID, f.Values,
		)
	}

	sortExpr := "articles.name"
	if c.OrderBy == article.SortByPrice {
		sortExpr = currentPriceExpr
	}
	dir := "ASC"
	if c.Descending {
		dir = "DESC"
	}
	// 次序键固定用主键，保证分页确定性
	q = q.Order(sortExpr + " " + dir).Order("articles.id ASC")

	q = q.Offset(c.Page * c.PageSize).Limit(c.PageSize)

	var ids []int64
	if err := q.Pluck("articles.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *articleRepo) ListByIDs(ctx context.Context, ids []int64) ([]*article.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []*article.Article
	if err := r.hydrated(ctx).
		Where("articles.id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/article"
	"github.com/example/goshop/internal/datamodels/category"
)

// FeatureValueInput 商品特性取值入参
type FeatureValueInput struct {
	FeatureID int64  `json:"featureId"`
	Value     string `json:"value"`
}

// CreateArticleInput 创建商品入参
type CreateArticleInput struct {
	Name        string              `json:"name"`
	CategoryID  int64               `json:"categoryId"`
	Excerpt     string              `json:"excerpt"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Features    []FeatureValueInput `json:"features"`
}

// EditArticleInput 编辑商品入参；Features 为 nil 表示保留现有特性，
// 空切片表示清空，非空表示整体替换
type EditArticleInput struct {
	Name        string              `json:"name"`
	CategoryID  int64               `json:"categoryId"`
	Excerpt     string              `json:"excerpt"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	IsPromoted  bool                `json:"isPromoted"`
	Price       decimal.Decimal     `json:"price"`
	Features    []FeatureValueInput `json:"features"`
}

// CatalogService 商品聚合服务：商品本体 + 价格历史 + 特性值作为一个
// 一致性单元，在单个事务内创建/编辑
type CatalogService struct {
	db         *gorm.DB
	cfg        config.CatalogConfig
	articles   article.Repository
	categories category.Repository
}

// NewCatalogService 创建商品聚合服务
func NewCatalogService(db *gorm.DB, cfg config.CatalogConfig, articles article.Repository, categories category.Repository) *CatalogService {
	return &CatalogService{
		db:         db,
		cfg:        cfg,
		articles:   articles,
		categories: categories,
	}
}

func validateText(field, v string, min, max int) error {
	n := utf8.RuneCountInString(v)
	if n < min || n > max {
		return apperr.Validationf("%s 长度需在 %d-%d 个字符之间", field, min, max)
	}
	return nil
}

func (s *CatalogService) validatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperr.Validationf("价格必须为正数")
	}
	if p.Exponent() < -s.cfg.MoneyDecimalPlaces {
		return apperr.Validationf("价格最多保留 %d 位小数", s.cfg.MoneyDecimalPlaces)
	}
	return nil
}

func validateFeatures(features []FeatureValueInput) error {
	for _, f := range features {
		if f.FeatureID <= 0 {
			return apperr.Validationf("特性 ID 不合法")
		}
		if f.Value == "" || utf8.RuneCountInString(f.Value) > 255 {
			return apperr.Validationf("特性值需为 1-255 个字符")
		}
	}
	return nil
}

func (s *CatalogService) validateCommon(name string, categoryID int64, excerpt, description string, price decimal.Decimal) error {
	if err := validateText("name", name, 5, 128); err != nil {
		return err
	}
	if categoryID <= 0 {
		return apperr.Validationf("分类 ID 不合法")
	}
	if err := validateText("excerpt", excerpt, 10, 255); err != nil {
		return err
	}
	if err := validateText("description", description, 64, 10000); err != nil {
		return err
	}
	return s.validatePrice(price)
}

// checkCategory 确认分类存在
func (s *CatalogService) checkCategory(ctx context.Context, id int64) error {
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, apperr.CodeCategoryNotFound, "分类不存在")
		}
		return err
	}
	return nil
}

// CreateArticle 创建商品聚合：校验全部前置，商品 + 首条价格 + 特性值
// 在一个事务内落库，成功后回读完整聚合返回
func (s *CatalogService) CreateArticle(ctx context.Context, in CreateArticleInput) (*article.Article, error) {
	if err := s.validateCommon(in.Name, in.CategoryID, in.Excerpt, in.Description, in.Price); err != nil {
		return nil, err
	}
	if err := validateFeatures(in.Features); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var articleID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := article.Article{
			Name:        in.Name,
			CategoryID:  in.CategoryID,
			Excerpt:     in.Excerpt,
			Description: in.Description,
			Status:      article.StatusAvailable,
			IsPromoted:  false,
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}

		if err := tx.Create(&article.Price{
			ArticleID: a.ID,
			Price:     in.Price.Round(s.cfg.MoneyDecimalPlaces),
		}).Error; err != nil {
			return err
		}

		if len(in.Features) > 0 {
			rows := make([]article.FeatureValue, 0, len(in.Features))
			for _, f := range in.Features {
				rows = append(rows, article.FeatureValue{
					ArticleID: a.ID,
					FeatureID: f.FeatureID,
					Value:     f.Value,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		articleID = a.ID
		return nil
	})
	if err != nil {
		GetMonitor().RecordAggregateWriteError()
		return nil, apperr.Wrap(apperr.KindAggregateWrite, apperr.CodeAggregateWrite, "创建商品聚合失败", err)
	}

	GetMonitor().RecordAggregateWrite()
	// 回读刚写入的聚合（read-your-write，在事务之外）
	return s.articles.GetByID(ctx, articleID)
}

// EditArticle 编辑商品聚合：覆盖可变字段；新价与当前价（按配置精度）
// 不同时追加一条价格历史；Features 非 nil 时整体替换特性集合
func (s *CatalogService) EditArticle(ctx context.Context, id int64, in EditArticleInput) (*article.Article, error) {
	if err := s.validateCommon(in.Name, in.CategoryID, in.Excerpt, in.Description, in.Price); err != nil {
		return nil, err
	}
	status, ok := article.ParseStatus(in.Status)
	if !ok {
		return nil, apperr.Validationf("商品状态不合法: %q", in.Status)
	}
	if in.Features != nil {
		if err := validateFeatures(in.Features); err != nil {
			return nil, err
		}
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a article.Article
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, apperr.CodeArticleNotFound, "商品不存在")
			}
			return err
		}

		a.Name = in.Name
		a.CategoryID = in.CategoryID
		a.Excerpt = in.Excerpt
		a.Description = in.Description
		a.Status = status
		a.IsPromoted = in.IsPromoted
		if err := tx.Save(&a).Error; err != nil {
			return err
		}

		// 当前价取最新一条历史；创建流程保证至少一条，缺失说明聚合已损坏
		var last article.Price
		if err := tx.Where("article_id = ?", id).
			Order("created_at DESC, id DESC").
			First(&last).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindAggregateWrite, apperr.CodeAggregateWrite, "商品缺少价格历史")
			}
			return err
		}

		newPrice := in.Price.Round(s.cfg.MoneyDecimalPlaces)
		if !last.Price.Round(s.cfg.MoneyDecimalPlaces).Equal(newPrice) {
			if err := tx.Create(&article.Price{
				ArticleID: id,
				Price:     newPrice,
			}).Error; err != nil {
				return err
			}
		}

		if in.Features != nil {
			if err := tx.Where("article_id = ?", id).
				Delete(&article.FeatureValue{}).Error; err != nil {
				return err
			}
			if len(in.Features) > 0 {
				rows := make([]article.FeatureValue, 0, len(in.Features))
				for _, f := range in.Features {
					rows = append(rows, article.FeatureValue{
						ArticleID: id,
						FeatureID: f.FeatureID,
						Value:     f.Value,
					})
				}
				if err := tx.Create(&rows).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if ae := apperr.From(err); ae != nil {
			return nil, ae
		}
		GetMonitor().RecordAggregateWriteError()
		return nil, apperr.Wrap(apperr.KindAggregateWrite, apperr.CodeAggregateWrite, "编辑商品聚合失败", err)
	}

	GetMonitor().RecordAggregateWrite()
	return s.articles.GetByID(ctx, id)
}

// GetArticle 读取完整商品聚合
func (s *CatalogService) GetArticle(ctx context.Context, id int64) (*article.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, apperr.CodeArticleNotFound, "商品不存在")
		}
		return nil, err
	}
	return a, nil
}

// ListByCategory 按分类列出商品聚合
func (s *CatalogService) ListByCategory(ctx context.Context, categoryID int64) ([]*article.Article, error) {
	return s.articles.ListByCategory(ctx, categoryID)
}

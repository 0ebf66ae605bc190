package article

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/category"
)

// Status 商品状态
type Status string

const (
	StatusAvailable Status = "available" // 可购买
	StatusVisible   Status = "visible"   // 仅展示
	StatusHidden    Status = "hidden"    // 下架隐藏
)

// ParseStatus 解析商品状态字符串
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAvailable, StatusVisible, StatusHidden:
		return Status(s), true
	}
	return "", false
}

// Article 商品模型，聚合根：价格历史与特性值随商品一起读写
type Article struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"size:128;not null"`
	CategoryID  int64  `gorm:"index;not null"`
	Excerpt     string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Status      Status `gorm:"size:16;index;not null;default:available"`
	IsPromoted  bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *category.Category `gorm:"foreignKey:CategoryID"`
	Prices   []Price            `gorm:"foreignKey:ArticleID"`
	Features []FeatureValue     `gorm:"foreignKey:ArticleID"`
}

// Price 价格历史条目，只追加不修改
type Price struct {
	ID        int64           `gorm:"primaryKey"`
	ArticleID int64           `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

func (Price) TableName() string { return "article_prices" }

// FeatureValue 商品的特性取值（如 颜色=红）
type FeatureValue struct {
	ID        int64  `gorm:"primaryKey"`
	ArticleID int64  `gorm:"index;not null"`
	FeatureID int64  `gorm:"index;not null"`
	Value     string `gorm:"size:255;not null"`
	CreatedAt time.Time

	Feature *category.Feature `gorm:"foreignKey:FeatureID"`
}

func (FeatureValue) TableName() string { return "article_features" }

// CurrentPrice 当前价 = 最新一条价格历史的金额；无历史时 ok 为 false
func (a *Article) CurrentPrice() (decimal.Decimal, bool) {
	if len(a.Prices) == 0 {
		return decimal.Zero, false
	}
	latest := a.Prices[0]
	for _, p := range a.Prices[1:] {
		if p.CreatedAt.After(latest.CreatedAt) ||
			(p.CreatedAt.Equal(latest.CreatedAt) && p.ID > latest.ID) {
			latest = p
		}
	}
	return latest.Price, true
}

// SortKey 搜索排序字段
type SortKey string

const (
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
)

// FeatureFilter 特性过滤条件：商品需携带 FeatureID 且取值落在 Values 内
type FeatureFilter struct {
	FeatureID int64
	Values    []string
}

// SearchCriteria 搜索条件；Price 边界为 nil 表示不限制
type SearchCriteria struct {
	CategoryID int64
	Keyword    string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	Features   []FeatureFilter
	OrderBy    SortKey
	Descending bool
	Page       int
	PageSize   int
}

// Repository 商品仓储接口
type Repository interface {
	// GetByID 返回带分类、价格历史、特性值的完整聚合
	GetByID(ctx context.Context, id int64) (*Article, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*Article, error)
	// SearchIDs 按条件返回命中商品的 ID（已排序分页）
	SearchIDs(ctx context.Context, c SearchCriteria) ([]int64, error)
	// ListByIDs 返回完整聚合，顺序不保证与入参一致
	ListByIDs(ctx context.Context, ids []int64) ([]*Article, error)
}

package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/datamodels/article"
	"github.com/example/goshop/internal/datamodels/cart"
)

// CartService 购物车服务：每个用户维护一个未下单的活动购物车
type CartService struct {
	carts    cart.Repository
	articles article.Repository
}

// NewCartService 创建购物车服务
func NewCartService(carts cart.Repository, articles article.Repository) *CartService {
	return &CartService{carts: carts, articles: articles}
}

// GetOrCreate 取用户的活动购物车，没有就新建一个
func (s *CartService) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.carts.GetActiveByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := &cart.Cart{UserID: userID}
	if err := s.carts.Create(ctx, fresh); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, fresh.ID)
}

// AddArticle 向活动购物车加入商品；已存在同商品行时合并数量
func (s *CartService) AddArticle(ctx context.Context, userID, articleID, quantity int64) (*cart.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.Validationf("数量必须大于 0")
	}
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, apperr.CodeArticleNotFound, "商品不存在")
		}
		return nil, err
	}

	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.carts.GetLine(ctx, c.ID, articleID)
	switch {
	case err == nil:
		line.Quantity += quantity
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = &cart.Line{CartID: c.ID, ArticleID: articleID, Quantity: quantity}
	default:
		return nil, err
	}
	if err := s.carts.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

// SetQuantity 直接设置某商品行的数量；数量小于等于 0 时删除该行
func (s *CartService) SetQuantity(ctx context.Context, userID, articleID, quantity int64) (*cart.Cart, error) {
	c, err := s.carts.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, apperr.CodeCartNotFound, "购物车不存在")
		}
		return nil, err
	}

	if quantity <= 0 {
		if err := s.carts.DeleteLine(ctx, c.ID, articleID); err != nil {
			return nil, err
		}
		return s.carts.GetByID(ctx, c.ID)
	}

	line, err := s.carts.GetLine(ctx, c.ID, articleID)
	switch {
	case err == nil:
		line.Quantity = quantity
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = &cart.Line{CartID: c.ID, ArticleID: articleID, Quantity: quantity}
	default:
		return nil, err
	}
	if err := s.carts.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

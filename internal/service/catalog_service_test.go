package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/datamodels/article"
)

func TestCreateArticle(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	color := env.mustFeature(t, cat.ID, "Color")

	in := validCreateInput(cat.ID, "Widget Alpha", "10.00")
	in.Features = []FeatureValueInput{{FeatureID: color.ID, Value: "red"}}

	a, err := env.catalog.CreateArticle(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, article.StatusAvailable, a.Status)
	assert.False(t, a.IsPromoted)
	require.NotNil(t, a.Category)
	assert.Equal(t, cat.ID, a.Category.ID)

	// 创建后恰好一条价格历史，金额等于入参价格
	require.Len(t, a.Prices, 1)
	assert.True(t, a.Prices[0].Price.Equal(decimal.RequireFromString("10.00")),
		"price = %s", a.Prices[0].Price)

	require.Len(t, a.Features, 1)
	assert.Equal(t, color.ID, a.Features[0].FeatureID)
	assert.Equal(t, "red", a.Features[0].Value)
	require.NotNil(t, a.Features[0].Feature)
	assert.Equal(t, "Color", a.Features[0].Feature.Name)
}

func TestCreateArticleValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")

	base := validCreateInput(cat.ID, "Widget Alpha", "10.00")

	cases := []struct {
		name   string
		mutate func(*CreateArticleInput)
	}{
		{"name too short", func(in *CreateArticleInput) { in.Name = "abcd" }},
		{"excerpt too short", func(in *CreateArticleInput) { in.Excerpt = "short" }},
		{"description too short", func(in *CreateArticleInput) { in.Description = "too short" }},
		{"zero price", func(in *CreateArticleInput) { in.Price = decimal.Zero }},
		{"negative price", func(in *CreateArticleInput) { in.Price = decimal.RequireFromString("-1") }},
		{"three decimal places", func(in *CreateArticleInput) { in.Price = decimal.RequireFromString("9.999") }},
		{"bad category", func(in *CreateArticleInput) { in.CategoryID = 0 }},
		{"bad feature id", func(in *CreateArticleInput) {
			in.Features = []FeatureValueInput{{FeatureID: 0, Value: "red"}}
		}},
		{"empty feature value", func(in *CreateArticleInput) {
			in.Features = []FeatureValueInput{{FeatureID: 1, Value: ""}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := env.catalog.CreateArticle(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}

	// 校验失败不能留下任何残留记录
	var count int64
	require.NoError(t, env.db.Model(&article.Article{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateArticleUnknownCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.catalog.CreateArticle(context.Background(), validCreateInput(999, "Widget Alpha", "10.00"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

func TestEditArticleNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	_, err := env.catalog.EditArticle(context.Background(), 12345, editInputFrom(validCreateInput(cat.ID, "Widget Alpha", "10.00")))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

func TestEditArticleSamePriceKeepsHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	a := env.mustArticle(t, validCreateInput(cat.ID, "Widget Alpha", "10.00"))

	// 同价不追加（10 与 10.00 在两位小数下相等）
	in := editInputFrom(validCreateInput(cat.ID, "Widget Alpha", "10.00"))
	in.Price = decimal.RequireFromString("10")
	edited, err := env.catalog.EditArticle(context.Background(), a.ID, in)
	require.NoError(t, err)
	assert.Len(t, edited.Prices, 1)
}

func TestEditArticleNewPriceAppends(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	a := env.mustArticle(t, validCreateInput(cat.ID, "Widget Alpha", "10.00"))

	in := editInputFrom(validCreateInput(cat.ID, "Widget Alpha", "10.00"))
	in.Price = decimal.RequireFromString("12.50")
	in.Status = string(article.StatusVisible)
	in.IsPromoted = true

	edited, err := env.catalog.EditArticle(context.Background(), a.ID, in)
	require.NoError(t, err)

	assert.Equal(t, article.StatusVisible, edited.Status)
	assert.True(t, edited.IsPromoted)

	// 历史为 [10.00, 12.50]，当前价变成新价
	require.Len(t, edited.Prices, 2)
	assert.True(t, edited.Prices[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, edited.Prices[1].Price.Equal(decimal.RequireFromString("12.50")))

	current, ok := edited.CurrentPrice()
	require.True(t, ok)
	assert.True(t, current.Equal(decimal.RequireFromString("12.50")))

	// 再编辑一次同价，长度不变
	again, err := env.catalog.EditArticle(context.Background(), a.ID, in)
	require.NoError(t, err)
	assert.Len(t, again.Prices, 2)
}

func TestEditArticleFeatureSemantics(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	color := env.mustFeature(t, cat.ID, "Color")
	size := env.mustFeature(t, cat.ID, "Size")

	in := validCreateInput(cat.ID, "Widget Alpha", "10.00")
	in.Features = []FeatureValueInput{
		{FeatureID: color.ID, Value: "red"},
		{FeatureID: size.ID, Value: "L"},
	}
	a := env.mustArticle(t, in)
	require.Len(t, a.Features, 2)

	edit := editInputFrom(validCreateInput(cat.ID, "Widget Alpha", "10.00"))

	// nil：保留现有特性
	edit.Features = nil
	edited, err := env.catalog.EditArticle(context.Background(), a.ID, edit)
	require.NoError(t, err)
	assert.Len(t, edited.Features, 2)

	// 非空：整体替换
	edit.Features = []FeatureValueInput{{FeatureID: color.ID, Value: "blue"}}
	edited, err = env.catalog.EditArticle(context.Background(), a.ID, edit)
	require.NoError(t, err)
	require.Len(t, edited.Features, 1)
	assert.Equal(t, color.ID, edited.Features[0].FeatureID)
	assert.Equal(t, "blue", edited.Features[0].Value)

	// 空切片：清空
	edit.Features = []FeatureValueInput{}
	edited, err = env.catalog.EditArticle(context.Background(), a.ID, edit)
	require.NoError(t, err)
	assert.Empty(t, edited.Features)
}

func TestEditArticleBadStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	a := env.mustArticle(t, validCreateInput(cat.ID, "Widget Alpha", "10.00"))

	in := editInputFrom(validCreateInput(cat.ID, "Widget Alpha", "10.00"))
	in.Status = "archived"
	_, err := env.catalog.EditArticle(context.Background(), a.ID, in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
}

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/datamodels/article"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func articleIDs(list []*article.Article) []int64 {
	out := make([]int64, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestSearchScopedToCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	catA := env.mustCategory(t, "Storage")
	catB := env.mustCategory(t, "Displays")

	inA := env.mustArticle(t, validCreateInput(catA.ID, "Widget Alpha", "10.00"))
	env.mustArticle(t, validCreateInput(catB.ID, "Widget Bravo", "10.00"))

	list, err := env.search.Search(context.Background(), article.SearchCriteria{CategoryID: catA.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inA.ID, list[0].ID)
}

func TestSearchPriceRangeUsesCurrentPrice(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	color := env.mustFeature(t, cat.ID, "Color")

	// 创建 10.00 带特性，然后改价到 12.50
	in := validCreateInput(cat.ID, "Widget Alpha", "10.00")
	in.Features = []FeatureValueInput{{FeatureID: color.ID, Value: "red"}}
	a := env.mustArticle(t, in)

	edit := editInputFrom(validCreateInput(cat.ID, "Widget Alpha", "10.00"))
	edit.Price = decimal.RequireFromString("12.50")
	edited, err := env.catalog.EditArticle(context.Background(), a.ID, edit)
	require.NoError(t, err)
	require.Len(t, edited.Prices, 2)

	// priceMin=11 命中（当前价 12.50）
	list, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		PriceMin:   dec("11"),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	// 结果是完整聚合
	require.NotNil(t, list[0].Category)
	assert.Len(t, list[0].Prices, 2)
	assert.Len(t, list[0].Features, 1)

	// priceMax=9 不命中
	list, err = env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		PriceMax:   dec("9"),
	})
	require.NoError(t, err)
	assert.Empty(t, list)

	// 历史价不参与过滤：曾经 100 现在 5 的商品，priceMin=50 不应命中
	b := env.mustArticle(t, validCreateInput(cat.ID, "Widget Bravo", "100.00"))
	editB := editInputFrom(validCreateInput(cat.ID, "Widget Bravo", "100.00"))
	editB.Price = decimal.RequireFromString("5.00")
	_, err = env.catalog.EditArticle(context.Background(), b.ID, editB)
	require.NoError(t, err)

	list, err = env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		PriceMin:   dec("50"),
	})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSearchKeyword(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")

	a := env.mustArticle(t, validCreateInput(cat.ID, "Turbo Drive X", "10.00"))
	b := validCreateInput(cat.ID, "Quiet Drive Y", "10.00")
	b.Excerpt = "Featuring SilentSpin technology"
	created := env.mustArticle(t, b)
	env.mustArticle(t, validCreateInput(cat.ID, "Plain Widget", "10.00"))

	// 名称命中，大小写不敏感
	list, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		Keyword:    "tUrBo",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	// 摘要命中
	list, err = env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		Keyword:    "silentspin",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// 无命中
	list, err = env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		Keyword:    "nonexistent",
	})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSearchFeatureFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	color := env.mustFeature(t, cat.ID, "Color")
	size := env.mustFeature(t, cat.ID, "Size")

	redL := validCreateInput(cat.ID, "Widget RedL", "10.00")
	redL.Features = []FeatureValueInput{
		{FeatureID: color.ID, Value: "red"},
		{FeatureID: size.ID, Value: "L"},
	}
	aRedL := env.mustArticle(t, redL)

	redS := validCreateInput(cat.ID, "Widget RedS", "10.00")
	redS.Features = []FeatureValueInput{
		{FeatureID: color.ID, Value: "red"},
		{FeatureID: size.ID, Value: "S"},
	}
	aRedS := env.mustArticle(t, redS)

	blueL := validCreateInput(cat.ID, "Widget BlueL", "10.00")
	blueL.Features = []FeatureValueInput{
		{FeatureID: color.ID, Value: "blue"},
		{FeatureID: size.ID, Value: "L"},
	}
	env.mustArticle(t, blueL)

	// 单过滤条件：取值集合内做 OR
	list, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		Features: []article.FeatureFilter{
			{FeatureID: color.ID, Values: []string{"red"}},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{aRedL.ID, aRedS.ID}, articleIDs(list))

	// 多过滤条件之间是 AND
	list, err = env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		Features: []article.FeatureFilter{
			{FeatureID: color.ID, Values: []string{"red"}},
			{FeatureID: size.ID, Values: []string{"L"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, aRedL.ID, list[0].ID)
}

func TestSearchSortByPrice(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")

	cheap := env.mustArticle(t, validCreateInput(cat.ID, "Widget Cheap", "5.00"))
	mid := env.mustArticle(t, validCreateInput(cat.ID, "Widget Mid", "10.00"))
	dear := env.mustArticle(t, validCreateInput(cat.ID, "Widget Dear", "20.00"))

	list, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		OrderBy:    article.SortByPrice,
		Descending: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{dear.ID, mid.ID, cheap.ID}, articleIDs(list))

	list, err = env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		OrderBy:    article.SortByPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{cheap.ID, mid.ID, dear.ID}, articleIDs(list))
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")

	for i := 1; i <= 7; i++ {
		env.mustArticle(t, validCreateInput(cat.ID, fmt.Sprintf("Widget %02d", i), "10.00"))
	}

	page0, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		PageSize:   5,
	})
	require.NoError(t, err)
	require.Len(t, page0, 5)

	page1, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		Page:       1,
		PageSize:   5,
	})
	require.NoError(t, err)
	require.Len(t, page1, 2)

	// 两页不相交
	seen := map[int64]bool{}
	for _, id := range articleIDs(page0) {
		seen[id] = true
	}
	for _, id := range articleIDs(page1) {
		assert.False(t, seen[id], "article %d appears on both pages", id)
	}

	// 同一查询重复执行结果确定
	again, err := env.search.Search(context.Background(), article.SearchCriteria{
		CategoryID: cat.ID,
		PageSize:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, articleIDs(page0), articleIDs(again))
}

func TestSearchValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []struct {
		name string
		c    article.SearchCriteria
	}{
		{"missing category", article.SearchCriteria{}},
		{"bad page size", article.SearchCriteria{CategoryID: 1, PageSize: 7}},
		{"negative page", article.SearchCriteria{CategoryID: 1, Page: -1}},
		{"bad sort key", article.SearchCriteria{CategoryID: 1, OrderBy: "created_at"}},
		{"min above max", article.SearchCriteria{CategoryID: 1, PriceMin: dec("10"), PriceMax: dec("5")}},
		{"empty feature values", article.SearchCriteria{CategoryID: 1, Features: []article.FeatureFilter{{FeatureID: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.search.Search(context.Background(), tc.c)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestSearchDefaultPageSize(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.mustCategory(t, "Storage")
	env.mustArticle(t, validCreateInput(cat.ID, "Widget Alpha", "10.00"))

	list, err := env.search.Search(context.Background(), article.SearchCriteria{CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// 初始化演示数据：管理员账号、分类、特性和带价格历史的商品
func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := mysql.Init(&cfg.MySQL)
	ctx := context.Background()

	userRepo := mysql.NewUserRepository(db)
	articleRepo := mysql.NewArticleRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	catalogSvc := service.NewCatalogService(db, cfg.Catalog, articleRepo, categoryRepo)

	// 管理员账号（已存在则跳过）
	if _, err := userRepo.GetByUsername(ctx, "admin"); err != nil {
		salt := "goshop"
		sum := sha256.Sum256([]byte("admin123" + salt))
		admin := &user.User{
			Username: "admin",
			Email:    "admin@goshop.local",
			Password: hex.EncodeToString(sum[:]),
			Salt:     salt,
			Role:     user.RoleAdministrator,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("create admin failed: %v", err)
		}
		log.Println("created admin user (admin/admin123)")
	}

	// 分类与特性
	storage := &category.Category{Name: "Storage"}
	if err := categoryRepo.CreateCategory(ctx, storage); err != nil {
		log.Fatalf("create category failed: %v", err)
	}
	capacity := &category.Feature{Name: "Capacity", CategoryID: storage.ID}
	iface := &category.Feature{Name: "Interface", CategoryID: storage.ID}
	for _, f := range []*category.Feature{capacity, iface} {
		if err := categoryRepo.CreateFeature(ctx, f); err != nil {
			log.Fatalf("create feature failed: %v", err)
		}
	}

	// 商品（走聚合服务，保证价格历史和特性一起写入）
	articles := []service.CreateArticleInput{
		{
			Name:        "ACME SSD HD11 1TB",
			CategoryID:  storage.ID,
			Excerpt:     "Fast NVMe solid state drive",
			Description: "A dependable 1TB NVMe drive for daily workloads, with sustained write performance and five-year warranty coverage.",
			Price:       decimal.RequireFromString("89.99"),
			Features: []service.FeatureValueInput{
				{FeatureID: capacity.ID, Value: "1TB"},
				{FeatureID: iface.ID, Value: "NVMe"},
			},
		},
		{
			Name:        "ACME HDD WD22 4TB",
			CategoryID:  storage.ID,
			Excerpt:     "High capacity desktop hard drive",
			Description: "A spacious 4TB desktop hard drive for archives and backups, tuned for quiet operation and long service life in always-on machines.",
			Price:       decimal.RequireFromString("119.00"),
			Features: []service.FeatureValueInput{
				{FeatureID: capacity.ID, Value: "4TB"},
				{FeatureID: iface.ID, Value: "SATA"},
			},
		},
	}
	for _, in := range articles {
		a, err := catalogSvc.CreateArticle(ctx, in)
		if err != nil {
			log.Fatalf("create article %q failed: %v", in.Name, err)
		}
		log.Printf("created article #%d %s", a.ID, a.Name)
	}

	log.Println("seed done")
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

const productViewSQL = `
	SELECT p.*, c.name AS category_name
	FROM products p
	INNER JOIN categories c ON p.category_id = c.id`

// ProductForUpdate is an existing product joined with the category that
// matches the requested new category name. NewCategoryID is nil when no
// category has that name.
type ProductForUpdate struct {
	ID            uint
	Name          string
	Price         float64
	Description   string
	Stock         int
	ImageURL      string
	CategoryID    uint
	PublicID      *string
	NewCategoryID *uint
}

func (r *GormRepo) FindCategoryID(ctx context.Context, name string) (uint, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Select("id").Where("name = ?", name).Take(&cat).Error; err != nil {
		return 0, err
	}
	return cat.ID, nil
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	items := make([]models.ProductView, 0)
	if err := r.DB.WithContext(ctx).Raw(productViewSQL + " ORDER BY p.id ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	var item models.ProductView
	res := r.DB.WithContext(ctx).Raw(productViewSQL+" WHERE p.id = ?", id).Scan(&item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) FindProductForUpdate(ctx context.Context, id uint, categoryName string) (*ProductForUpdate, error) {
	var row ProductForUpdate
	res := r.DB.WithContext(ctx).Raw(`
		SELECT p.*, c.id AS new_category_id
		FROM products p
		LEFT JOIN categories c ON c.name = ?
		WHERE p.id = ?`, categoryName, id).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// UpdateProduct overwrites every column of the row keyed by prod.ID.
func (r *GormRepo) UpdateProduct(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", prod.ID).
		Select("name", "price", "description", "stock", "category_id", "image_url", "public_id").
		Updates(prod)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) FindPublicID(ctx context.Context, id uint) (*string, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Select("id", "public_id").Where("id = ?", id).Take(&prod).Error; err != nil {
		return nil, err
	}
	return prod.PublicID, nil
}

// DeleteProduct removes the row and returns it as it was before deletion.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&prod).Error; err != nil {
		return nil, err
	}

	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &prod, nil
}

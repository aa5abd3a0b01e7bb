package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/storage"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/validation"
)

// CatalogService coordinates product writes across the relational store and
// the image store. Events and Index are optional.
type CatalogService struct {
	Repo   *repo.GormRepo
	Images storage.ImageStore
	Events EventPublisher
	Index  ProductIndex
}

// CategoryError is returned when a payload names a category that does not exist.
type CategoryError struct {
	Name string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("Category %q does not exist.", e.Name)
}

func (e *CategoryError) Unwrap() error { return ErrCategoryNotFound }

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.ProductView, error) {
	if s.Index == nil {
		return 0, nil, ErrSearchDisabled
	}
	return s.Index.Search(ctx, query, from, size)
}

func (s *CatalogService) CreateProduct(ctx context.Context, who tokens.Identity, req transport.ProductRequest, img *transport.ImageFile) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	if !req.Complete() {
		return nil, ErrInvalidInput
	}
	if img == nil {
		return nil, ErrImageRequired
	}
	in, err := validation.ParseProduct(req.Fields())
	if err != nil {
		return nil, err
	}

	var (
		uploaded      *storage.UploadResult
		categoryID    uint
		categoryFound bool
	)
	var g errgroup.Group
	g.Go(func() error {
		res, err := s.Images.Upload(ctx, bytes.NewReader(img.Data), img.Filename)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		uploaded = res
		return nil
	})
	g.Go(func() error {
		id, err := s.Repo.FindCategoryID(ctx, in.Category)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		categoryID, categoryFound = id, true
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !categoryFound {
		// the object stays in storage with no product referencing it
		l.Warn("orphaned_image", "public_id", uploaded.PublicID, "category", in.Category)
		return nil, &CategoryError{Name: in.Category}
	}

	publicID := uploaded.PublicID
	prod := &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Stock:       in.Stock,
		ImageURL:    uploaded.SecureURL,
		CategoryID:  categoryID,
		PublicID:    &publicID,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.ProductCreated, prod.ID)
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, who tokens.Identity, id uint, req transport.ProductRequest, img *transport.ImageFile) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	if !who.IsAdmin() {
		return nil, ErrForbidden
	}

	// same normalisation ParseProduct applies on create
	category := strings.TrimSpace(req.Category)
	current, err := s.Repo.FindProductForUpdate(ctx, id, category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current.NewCategoryID == nil {
		return nil, &CategoryError{Name: category}
	}

	if !req.Complete() {
		return nil, ErrInvalidInput
	}
	in, err := validation.ParseProduct(req.Fields())
	if err != nil {
		return nil, err
	}

	imageURL, publicID := current.ImageURL, current.PublicID
	if img != nil {
		var uploaded *storage.UploadResult
		var g errgroup.Group
		g.Go(func() error {
			if current.PublicID == nil || *current.PublicID == "" {
				return nil
			}
			if err := s.Images.Delete(ctx, *current.PublicID); err != nil {
				return fmt.Errorf("%w: delete previous image: %v", ErrUploadFailed, err)
			}
			return nil
		})
		g.Go(func() error {
			res, err := s.Images.Upload(ctx, bytes.NewReader(img.Data), img.Filename)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUploadFailed, err)
			}
			uploaded = res
			return nil
		})
		if err := g.Wait(); err != nil {
			l.Warn("image_replace_failed", "public_id", derefString(current.PublicID), "error", err)
			return nil, err
		}
		imageURL = uploaded.SecureURL
		newID := uploaded.PublicID
		publicID = &newID
	}

	prod := &models.Product{
		ID:          id,
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Stock:       in.Stock,
		ImageURL:    imageURL,
		CategoryID:  *current.NewCategoryID,
		PublicID:    publicID,
	}
	if err := s.Repo.UpdateProduct(ctx, prod); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.afterWrite(ctx, events.ProductUpdated, prod.ID)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, who tokens.Identity, id uint) (*models.Product, error) {
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}

	publicID, err := s.Repo.FindPublicID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if publicID != nil && *publicID != "" {
		if err := s.Images.Delete(ctx, *publicID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageDeleteFailed, err)
		}
	}

	prod, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	publish(ctx, s.Events, events.ProductTopic, id, map[string]any{"type": events.ProductDeleted, "product_id": id})
	if s.Index != nil {
		if err := s.Index.RemoveProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_remove_failed", "product_id", id, "error", err)
		}
	}
	return prod, nil
}

// afterWrite publishes the change and refreshes the search document.
// Failures here are logged and never reach the caller.
func (s *CatalogService) afterWrite(ctx context.Context, eventType string, id uint) {
	if s.Events == nil && s.Index == nil {
		return
	}
	l := logging.FromContext(ctx)

	view, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		l.Warn("product_reload_failed", "product_id", id, "error", err)
		return
	}
	publish(ctx, s.Events, events.ProductTopic, id, map[string]any{"type": eventType, "product": view})
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, view); err != nil {
			l.Warn("search_index_failed", "product_id", id, "error", err)
		}
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/store"
)

const (
	categoryListCacheKey   = "categories:list"
	categoryDetailCacheKey = "categories:detail"
)

type CategoryService struct {
	Store *store.Store
	Cache cache.Cache
}

func NewCategoryService(st *store.Store, c cache.Cache) *CategoryService {
	return &CategoryService{Store: st, Cache: c}
}

// CategoryWithProducts pairs a category with its current products.
type CategoryWithProducts struct {
	domain.Category
	Products []domain.Product `json:"products"`
}

func (s *CategoryService) List(pageNumber, pageSize int) (store.Page[domain.Category], error) {
	pageNumber, pageSize = store.ClampPage(pageNumber, pageSize)
	key := fmt.Sprintf("%s:page_%d:size_%d", categoryListCacheKey, pageNumber, pageSize)

	if v, ok := s.Cache.Get(key); ok {
		if page, ok := v.(store.Page[domain.Category]); ok {
			return page, nil
		}
	}

	page, err := s.Store.Categories.List(pageNumber, pageSize)
	if err != nil {
		return store.Page[domain.Category]{}, err
	}
	s.Cache.Set(key, page, 0)
	return page, nil
}

func (s *CategoryService) Get(id string) (domain.Category, error) {
	key := categoryDetailCacheKey + ":" + id
	if v, ok := s.Cache.Get(key); ok {
		if c, ok := v.(domain.Category); ok {
			return c, nil
		}
	}

	c, err := s.Store.Categories.Get(id)
	if err != nil {
		return domain.Category{}, err
	}
	s.Cache.Set(key, c, 0)
	return c, nil
}

func (s *CategoryService) GetByName(name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.Validationf("Category name cannot be empty")
	}
	return s.Store.Categories.ByName(name)
}

func (s *CategoryService) Create(name, description string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.Validationf("Category name cannot be empty")
	}

	var created domain.Category
	err := s.Store.WithTx(func(tx *store.Tx) error {
		if _, err := tx.Categories.ByName(name); err == nil {
			return domain.Conflictf("Category with name '%s' already exists", name)
		} else if !domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		created = domain.Category{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(description),
		}
		return tx.Categories.Insert(&created)
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.invalidate(created.ID)
	return created, nil
}

func (s *CategoryService) Update(id, name, description string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.Validationf("Category name cannot be empty")
	}

	var updated domain.Category
	err := s.Store.WithTx(func(tx *store.Tx) error {
		c, err := tx.Categories.Get(id)
		if err != nil {
			return err
		}
		if !strings.EqualFold(name, c.Name) {
			if _, err := tx.Categories.ByName(name); err == nil {
				return domain.Conflictf("Category with name '%s' already exists", name)
			} else if !domain.IsKind(err, domain.KindNotFound) {
				return err
			}
		}
		c.Name = name
		c.Description = strings.TrimSpace(description)
		if err := tx.Categories.Update(&c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.invalidate(id)
	return updated, nil
}

// Delete removes a category only when no product references it.
func (s *CategoryService) Delete(id string) error {
	err := s.Store.WithTx(func(tx *store.Tx) error {
		if _, err := tx.Categories.Get(id); err != nil {
			return err
		}
		n, err := tx.Categories.ProductCount(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflictf("Category still has %d associated products and cannot be deleted", n)
		}
		return tx.Categories.Delete(id)
	})
	if err != nil {
		return err
	}

	s.invalidate(id)
	return nil
}

// WithProducts lists every category together with its products.
func (s *CategoryService) WithProducts() ([]CategoryWithProducts, error) {
	cats, err := s.Store.Categories.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]CategoryWithProducts, 0, len(cats))
	for _, c := range cats {
		products, err := s.Store.Products.ListByCategory(c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryWithProducts{Category: c, Products: products})
	}
	return out, nil
}

func (s *CategoryService) invalidate(id string) {
	s.Cache.Remove(categoryDetailCacheKey + ":" + id)
	s.Cache.RemovePrefix(categoryListCacheKey)
}

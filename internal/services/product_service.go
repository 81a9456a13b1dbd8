package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/store"
)

const (
	productListCacheKey   = "products:list"
	productDetailCacheKey = "products:detail"
)

// ProductService owns catalog reads (cache-aside) and product CRUD including
// the soft/hard delete split: a product is listable while active, and
// referenceable while it exists physically.
type ProductService struct {
	Store *store.Store
	Cache cache.Cache
}

func NewProductService(st *store.Store, c cache.Cache) *ProductService {
	return &ProductService{Store: st, Cache: c}
}

type CreateProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stockQuantity"`
	CategoryID  string          `json:"categoryId"`
}

type UpdateProduct struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stockQuantity"`
	CategoryID  *string          `json:"categoryId"`
	Active      *bool            `json:"isActive"`
}

// List returns one page of products, serving repeat reads from cache.
func (s *ProductService) List(pageNumber, pageSize int) (store.Page[domain.Product], error) {
	pageNumber, pageSize = store.ClampPage(pageNumber, pageSize)
	key := fmt.Sprintf("%s:page_%d:size_%d", productListCacheKey, pageNumber, pageSize)

	if v, ok := s.Cache.Get(key); ok {
		if page, ok := v.(store.Page[domain.Product]); ok {
			return page, nil
		}
	}

	page, err := s.Store.Products.List(pageNumber, pageSize)
	if err != nil {
		return store.Page[domain.Product]{}, err
	}
	s.Cache.Set(key, page, 0)
	return page, nil
}

func (s *ProductService) Get(id string) (domain.Product, error) {
	key := productDetailCacheKey + ":" + id
	if v, ok := s.Cache.Get(key); ok {
		if p, ok := v.(domain.Product); ok {
			return p, nil
		}
	}

	p, err := s.Store.Products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	s.Cache.Set(key, p, 0)
	return p, nil
}

func (s *ProductService) GetByName(name string) (domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Product{}, domain.Validationf("Product name cannot be empty")
	}
	return s.Store.Products.ByName(name)
}

func (s *ProductService) ListByCategory(categoryID string) ([]domain.Product, error) {
	if _, err := s.Store.Categories.Get(categoryID); err != nil {
		return nil, err
	}
	return s.Store.Products.ListByCategory(categoryID)
}

func (s *ProductService) ListActive() ([]domain.Product, error) {
	return s.Store.Products.ListActive()
}

func (s *ProductService) Search(q, categoryID string, pageNumber, pageSize int) ([]domain.Product, error) {
	pageNumber, pageSize = store.ClampPage(pageNumber, pageSize)
	return s.Store.Products.Search(q, categoryID, pageSize, (pageNumber-1)*pageSize)
}

func (s *ProductService) Create(in CreateProduct) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, domain.Validationf("Product name cannot be empty")
	}
	if !in.Price.IsPositive() {
		return domain.Product{}, domain.Validationf("Product price must be greater than zero")
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.Validationf("Stock quantity cannot be negative")
	}

	var created domain.Product
	err := s.Store.WithTx(func(tx *store.Tx) error {
		if _, err := tx.Products.ByName(name); err == nil {
			return domain.Conflictf("Product with name '%s' already exists", name)
		} else if !domain.IsKind(err, domain.KindNotFound) {
			return err
		}

		var categoryID *string
		if in.CategoryID != "" {
			if _, err := tx.Categories.Get(in.CategoryID); err != nil {
				return err
			}
			categoryID = &in.CategoryID
		}

		created = domain.Product{
			ID:          uuid.NewString(),
			CategoryID:  categoryID,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price,
			Stock:       in.Stock,
			Active:      true,
		}
		return tx.Products.Insert(&created)
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidate(created.ID)
	return created, nil
}

func (s *ProductService) Update(id string, in UpdateProduct) (domain.Product, error) {
	var updated domain.Product
	err := s.Store.WithTx(func(tx *store.Tx) error {
		p, err := tx.Products.Get(id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.Validationf("Product name cannot be empty")
			}
			if !strings.EqualFold(name, p.Name) {
				if _, err := tx.Products.ByName(name); err == nil {
					return domain.Conflictf("Product with name '%s' already exists", name)
				} else if !domain.IsKind(err, domain.KindNotFound) {
					return err
				}
			}
			p.Name = name
		}
		if in.Description != nil {
			p.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			if !in.Price.IsPositive() {
				return domain.Validationf("Product price must be greater than zero")
			}
			p.Price = *in.Price
		}
		if in.Stock != nil {
			if *in.Stock < 0 {
				return domain.Validationf("Stock quantity cannot be negative")
			}
			p.Stock = *in.Stock
		}
		if in.CategoryID != nil {
			if *in.CategoryID == "" {
				p.CategoryID = nil
			} else {
				if _, err := tx.Categories.Get(*in.CategoryID); err != nil {
					return err
				}
				p.CategoryID = in.CategoryID
			}
		}
		if in.Active != nil {
			p.Active = *in.Active
		}

		if err := tx.Products.Update(&p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidate(id)
	return updated, nil
}

// Delete soft-deletes: the product stops being listable but stays
// referenceable for order history.
func (s *ProductService) Delete(id string) error {
	if err := s.Store.Products.SetActive(id, false); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// HardDelete removes the row permanently, refused while any order item still
// references the product.
func (s *ProductService) HardDelete(id string) error {
	err := s.Store.WithTx(func(tx *store.Tx) error {
		p, err := tx.Products.Get(id)
		if err != nil {
			return err
		}
		referenced, err := tx.Products.ReferencedByOrders(id)
		if err != nil {
			return err
		}
		if referenced {
			return domain.Conflictf("Product %s appears in order history and cannot be permanently deleted", p.Name)
		}
		return tx.Products.Delete(id)
	})
	if err != nil {
		return err
	}

	s.invalidate(id)
	return nil
}

// CheckAvailability runs the inventory guard on the read path. The answer is
// advisory; order creation re-checks inside its own transaction.
func (s *ProductService) CheckAvailability(productID string, qty int) error {
	_, err := CheckStock(s.Store.Products, productID, qty)
	return err
}

func (s *ProductService) invalidate(id string) {
	s.Cache.Remove(productDetailCacheKey + ":" + id)
	s.Cache.RemovePrefix(productListCacheKey)
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	prod "github.com/davilamx/comandas/internal/product"
)

//
// ===== STUB REPO EN MEMORIA (implementa product.Repository) =====
//

type stubProductRepo struct {
	items map[string]*prod.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{items: make(map[string]*prod.Product)}
}

func (s *stubProductRepo) Create(ctx context.Context, p *prod.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProductRepo) GetByID(ctx context.Context, id string) (*prod.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProductRepo) List(ctx context.Context) ([]prod.Product, error) {
	out := make([]prod.Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProductRepo) Update(ctx context.Context, p *prod.Product) error {
	if _, ok := s.items[p.ID]; !ok {
		return prod.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubProductRepo) CountInCategory(ctx context.Context, category string) (int, error) {
	n := 0
	for _, p := range s.items {
		if p.Category == category {
			n++
		}
	}
	return n, nil
}

func productRouter(repo prod.Repository) *gin.Engine {
	r := gin.New()
	r.GET("/products", listProductsHandler(repo))
	r.POST("/products", createProductHandler(repo))
	r.PUT("/products", updateProductHandler(repo))
	r.DELETE("/products", deleteProductHandler(repo))
	return r
}

//
// ===== TESTS =====
//

func TestCreateProduct_Valid_And_Invalid(t *testing.T) {
	repo := newStubProductRepo()
	r := productRouter(repo)

	valid := `{"name":"Latte","category":"Bebidas calientes","price":"50",
		"sizes":[{"label":"CH","price":"50"},{"label":"G","price":"60"}],
		"extras":[{"name":"Leche deslactosada","price":"10","allowMultiple":true}]}`
	w := doJSON(r, http.MethodPost, "/products", valid)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got prod.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if !got.Available {
		t.Fatal("available debe ser true por defecto")
	}
	if len(got.Sizes) != 2 || !got.Extras[0].AllowMultiple {
		t.Fatalf("variantes no conservadas: %+v", got)
	}

	// falta category ⇒ 400
	w = doJSON(r, http.MethodPost, "/products", `{"name":"Latte"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, esperaba 400", w.Code)
	}
}

func TestGetProduct_ByID_And_NotFound(t *testing.T) {
	repo := newStubProductRepo()
	_ = repo.Create(context.Background(), &prod.Product{ID: "x", Name: "Capuchino", Category: "Bebidas calientes"})
	r := productRouter(repo)

	w := doJSON(r, http.MethodGet, "/products?id=x", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodGet, "/products?id=nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d", w.Code)
	}
}

func TestUpdateProduct_PartialKeepsOmittedFields(t *testing.T) {
	repo := newStubProductRepo()
	price := d("45")
	_ = repo.Create(context.Background(), &prod.Product{
		ID: "p", Name: "Americano", Category: "Bebidas calientes",
		Price: &price, Available: true,
	})
	r := productRouter(repo)

	w := doJSON(r, http.MethodPut, "/products", `{"id":"p","available":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := repo.GetByID(context.Background(), "p")
	if got.Available {
		t.Fatal("available debió cambiar a false")
	}
	if got.Name != "Americano" || got.Price == nil || !got.Price.Equal(d("45")) {
		t.Fatalf("campos omitidos no deben cambiar: %+v", got)
	}
}

func TestDeleteProduct_OK_And_NotFound(t *testing.T) {
	repo := newStubProductRepo()
	_ = repo.Create(context.Background(), &prod.Product{ID: "del", Name: "X", Category: "Postres"})
	r := productRouter(repo)

	w := doJSON(r, http.MethodDelete, "/products?id=del", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodDelete, "/products?id=del", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d", w.Code)
	}
	w = doJSON(r, http.MethodDelete, "/products", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400 sin id, got %d", w.Code)
	}
}

func TestListProducts_EmptyIsArray(t *testing.T) {
	r := productRouter(newStubProductRepo())
	w := doJSON(r, http.MethodGet, "/products", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Fatalf("body=%s, esperaba []", body)
	}
}

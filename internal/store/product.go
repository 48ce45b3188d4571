// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"adverpress/internal/models"
)

// ProductStore handles product profile database operations.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore with the given database connection.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, url, description, physical_description,
	image_urls, main_image_url, created_at, updated_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	var imageURLs []byte
	err := scanner.Scan(
		&p.ID, &p.Name, &p.URL, &p.Description, &p.PhysicalDescription,
		&imageURLs, &p.MainImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(imageURLs, &p.ImageURLs); err != nil {
		return nil, fmt.Errorf("decode image urls: %w", err)
	}
	return p, nil
}

// List returns all products ordered by name.
func (s *ProductStore) List() ([]models.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productColumns + ` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	imageURLs, err := json.Marshal(p.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("encode image urls: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO products (name, url, description, physical_description, image_urls, main_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.Name, p.URL, p.Description, p.PhysicalDescription, imageURLs, p.MainImageURL,
	)
	result, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product.
func (s *ProductStore) Update(p *models.Product) error {
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	imageURLs, err := json.Marshal(p.ImageURLs)
	if err != nil {
		return fmt.Errorf("encode image urls: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE products SET
			name = $1, url = $2, description = $3, physical_description = $4,
			image_urls = $5, main_image_url = $6, updated_at = NOW()
		WHERE id = $7`,
		p.Name, p.URL, p.Description, p.PhysicalDescription, imageURLs, p.MainImageURL, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a product by ID.
func (s *ProductStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Admin endpoints. Authentication is handled outside this client.

// ListProductsAdmin returns every product, published or not.
func (c *Client) ListProductsAdmin(ctx context.Context) ([]Product, error) {
	var products []Product
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/products", "/admin/products", nil), &products)
	return products, err
}

// GetProductAdmin returns the product with id.
func (c *Client) GetProductAdmin(ctx context.Context, id int64) (Product, error) {
	var product Product
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/products/{id}", adminProductPath(id), nil), &product)
	return product, err
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	var v validator
	v.require("name", req.Name)
	v.require("slug", req.Slug)
	v.check(req.PriceCents >= 0, "priceCents", "must not be negative")
	v.check(req.Quantity >= 0, "quantity", "must not be negative")
	if err := v.err(); err != nil {
		return Product{}, err
	}

	r, err := newRequest(http.MethodPost, "/admin/products", "/admin/products", nil).withJSON(req)
	if err != nil {
		return Product{}, err
	}
	var product Product
	err = c.do(ctx, r, &product)
	return product, err
}

// UpdateProduct patches the product with id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	r, err := newRequest(http.MethodPut, "/admin/products/{id}", adminProductPath(id), nil).withJSON(req)
	if err != nil {
		return Product{}, err
	}
	var product Product
	err = c.do(ctx, r, &product)
	return product, err
}

// DeleteProduct deletes the product with id.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, "/admin/products/{id}", adminProductPath(id), nil), nil)
}

func adminProductPath(id int64) string {
	return "/admin/products/" + strconv.FormatInt(id, 10)
}

// ListProductPhotos returns the photos of a product.
func (c *Client) ListProductPhotos(ctx context.Context, productID int64) ([]ProductPhoto, error) {
	var photos []ProductPhoto
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/product-photos/product/{id}",
		"/admin/product-photos/product/"+strconv.FormatInt(productID, 10), nil), &photos)
	return photos, err
}

// UploadProductPhoto uploads an image file for a product as multipart form data.
func (c *Client) UploadProductPhoto(ctx context.Context, productID int64, filename string, file io.Reader) (PhotoUploadResponse, error) {
	var v validator
	v.require("filename", filename)
	v.check(file != nil, "file", "is required")
	if err := v.err(); err != nil {
		return PhotoUploadResponse{}, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return PhotoUploadResponse{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return PhotoUploadResponse{}, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return PhotoUploadResponse{}, fmt.Errorf("close multipart: %w", err)
	}

	r := newRequest(http.MethodPost, "/admin/products/{id}/photos/upload",
		adminProductPath(productID)+"/photos/upload", nil)
	r.body = buf.Bytes()
	r.contentType = mw.FormDataContentType()

	var resp PhotoUploadResponse
	err = c.do(ctx, r, &resp)
	return resp, err
}

// UpdateProductPhoto patches photo metadata.
func (c *Client) UpdateProductPhoto(ctx context.Context, photoID int64, req UpdateProductPhotoRequest) (ProductPhoto, error) {
	r, err := newRequest(http.MethodPut, "/admin/product-photos/{id}", adminPhotoPath(photoID), nil).withJSON(req)
	if err != nil {
		return ProductPhoto{}, err
	}
	var photo ProductPhoto
	err = c.do(ctx, r, &photo)
	return photo, err
}

// DeleteProductPhoto deletes a photo.
func (c *Client) DeleteProductPhoto(ctx context.Context, photoID int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, "/admin/product-photos/{id}", adminPhotoPath(photoID), nil), nil)
}

func adminPhotoPath(id int64) string {
	return "/admin/product-photos/" + strconv.FormatInt(id, 10)
}

// UpsertTranslation creates or replaces one translation.
func (c *Client) UpsertTranslation(ctx context.Context, req CreateTranslationRequest) (Translation, error) {
	var v validator
	v.require("key", req.Key)
	v.require("locale", req.Locale)
	if err := v.err(); err != nil {
		return Translation{}, err
	}

	r, err := newRequest(http.MethodPost, "/admin/translations", "/admin/translations", nil).withJSON(req)
	if err != nil {
		return Translation{}, err
	}
	var t Translation
	err = c.do(ctx, r, &t)
	return t, err
}

// BulkUpsertTranslations creates or replaces many translations at once.
func (c *Client) BulkUpsertTranslations(ctx context.Context, req BulkTranslationRequest) ([]Translation, error) {
	r, err := newRequest(http.MethodPost, "/admin/translations/bulk", "/admin/translations/bulk", nil).withJSON(req)
	if err != nil {
		return nil, err
	}
	var ts []Translation
	err = c.do(ctx, r, &ts)
	return ts, err
}

// ListTranslationsByLocale returns the stored translations of locale.
func (c *Client) ListTranslationsByLocale(ctx context.Context, locale string) ([]Translation, error) {
	var ts []Translation
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/translations/locale/{locale}",
		"/admin/translations/locale/"+url.PathEscape(locale), nil), &ts)
	return ts, err
}

// ListTranslationsByKey returns the stored translations of key across locales.
func (c *Client) ListTranslationsByKey(ctx context.Context, key string) ([]Translation, error) {
	var ts []Translation
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/translations/key/{key}",
		"/admin/translations/key/"+url.PathEscape(key), nil), &ts)
	return ts, err
}

// DeleteTranslation deletes the translation of key in locale.
func (c *Client) DeleteTranslation(ctx context.Context, key, locale string) error {
	return c.do(ctx, newRequest(http.MethodDelete, "/admin/translations/{key}/{locale}",
		"/admin/translations/"+url.PathEscape(key)+"/"+url.PathEscape(locale), nil), nil)
}

// ListPagesAdmin returns every content page.
func (c *Client) ListPagesAdmin(ctx context.Context) ([]Page, error) {
	var pages []Page
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/pages", "/admin/pages", nil), &pages)
	return pages, err
}

// GetPageAdmin returns the content page with id.
func (c *Client) GetPageAdmin(ctx context.Context, id int64) (Page, error) {
	var page Page
	err := c.do(ctx, newRequest(http.MethodGet, "/admin/pages/{id}", adminPagePath(id), nil), &page)
	return page, err
}

// CreatePage creates a content page.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (Page, error) {
	var v validator
	v.require("slug", req.Slug)
	v.require("title", req.Title)
	if err := v.err(); err != nil {
		return Page{}, err
	}

	r, err := newRequest(http.MethodPost, "/admin/pages", "/admin/pages", nil).withJSON(req)
	if err != nil {
		return Page{}, err
	}
	var page Page
	err = c.do(ctx, r, &page)
	return page, err
}

// UpdatePage patches the content page with id.
func (c *Client) UpdatePage(ctx context.Context, id int64, req UpdatePageRequest) (Page, error) {
	r, err := newRequest(http.MethodPut, "/admin/pages/{id}", adminPagePath(id), nil).withJSON(req)
	if err != nil {
		return Page{}, err
	}
	var page Page
	err = c.do(ctx, r, &page)
	return page, err
}

// DeletePage deletes the content page with id.
func (c *Client) DeletePage(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, "/admin/pages/{id}", adminPagePath(id), nil), nil)
}

func adminPagePath(id int64) string {
	return "/admin/pages/" + strconv.FormatInt(id, 10)
}

// UpdateArtistProfile replaces the artist profile.
func (c *Client) UpdateArtistProfile(ctx context.Context, req UpdateArtistProfileRequest) (ArtistProfile, error) {
	var v validator
	v.require("name", req.Name)
	if err := v.err(); err != nil {
		return ArtistProfile{}, err
	}

	r, err := newRequest(http.MethodPut, "/admin/artist", "/admin/artist", nil).withJSON(req)
	if err != nil {
		return ArtistProfile{}, err
	}
	var profile ArtistProfile
	err = c.do(ctx, r, &profile)
	return profile, err
}

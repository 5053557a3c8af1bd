package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GetArtist returns the public artist profile.
func (c *Client) GetArtist(ctx context.Context, opts ...RequestOption) (ArtistDTO, error) {
	var artist ArtistDTO
	err := c.do(ctx, newRequest(http.MethodGet, "/artist", "/artist", opts), &artist)
	return artist, err
}

// GetProducts returns one page of published products matching q.
func (c *Client) GetProducts(ctx context.Context, q ProductQuery, opts ...RequestOption) (ProductPage, error) {
	r := newRequest(http.MethodGet, "/products", "/products", opts)
	r.query = productValues(q)

	var page ProductPage
	err := c.do(ctx, r, &page)
	return page, err
}

func productValues(q ProductQuery) url.Values {
	values := url.Values{}
	if q.Q != "" {
		values.Set("q", q.Q)
	}
	if q.Page != nil {
		values.Set("page", strconv.Itoa(*q.Page))
	}
	if q.Size != nil {
		values.Set("size", strconv.Itoa(*q.Size))
	}
	return values
}

// GetProduct returns the product detail for slug. A missing product yields
// an error matching ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, slug string, opts ...RequestOption) (ProductDetail, error) {
	var v validator
	v.require("slug", slug)
	if err := v.err(); err != nil {
		return ProductDetail{}, err
	}

	var product ProductDetail
	err := c.do(ctx, newRequest(http.MethodGet, "/products/{slug}", "/products/"+url.PathEscape(slug), opts), &product)
	return product, err
}

// AddToWaitlist subscribes email to restock notifications for slug.
func (c *Client) AddToWaitlist(ctx context.Context, slug string, req WaitlistRequest, opts ...RequestOption) (WaitlistStatus, error) {
	var v validator
	v.require("slug", slug)
	v.require("email", req.Email)
	if err := v.err(); err != nil {
		return "", err
	}

	r, err := newRequest(http.MethodPost, "/products/{slug}/waitlist",
		"/products/"+url.PathEscape(slug)+"/waitlist", opts).withJSON(req)
	if err != nil {
		return "", err
	}
	var status WaitlistStatus
	err = c.do(ctx, r, &status)
	return status, err
}

// CreateOrder places a direct order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, opts ...RequestOption) (CreateOrderResponse, error) {
	var v validator
	v.require("productSlug", req.ProductSlug)
	v.require("email", req.Email)
	v.check(req.Qty >= 1, "qty", "must be at least 1")
	if err := v.err(); err != nil {
		return CreateOrderResponse{}, err
	}

	r, err := newRequest(http.MethodPost, "/orders", "/orders", opts).withJSON(req)
	if err != nil {
		return CreateOrderResponse{}, err
	}
	var resp CreateOrderResponse
	err = c.do(ctx, r.withIdempotencyKey(), &resp)
	return resp, err
}

// GetPages returns all published content pages.
func (c *Client) GetPages(ctx context.Context, opts ...RequestOption) ([]PageDTO, error) {
	var pages []PageDTO
	err := c.do(ctx, newRequest(http.MethodGet, "/pages", "/pages", opts), &pages)
	return pages, err
}

// GetPage returns the content page for slug.
func (c *Client) GetPage(ctx context.Context, slug string, opts ...RequestOption) (PageDTO, error) {
	var v validator
	v.require("slug", slug)
	if err := v.err(); err != nil {
		return PageDTO{}, err
	}

	var page PageDTO
	err := c.do(ctx, newRequest(http.MethodGet, "/pages/{slug}", "/pages/"+url.PathEscape(slug), opts), &page)
	return page, err
}

// GetTranslations returns the translation bundle for locale.
func (c *Client) GetTranslations(ctx context.Context, locale string, opts ...RequestOption) (Translations, error) {
	var v validator
	v.require("locale", locale)
	if err := v.err(); err != nil {
		return nil, err
	}

	translations := Translations{}
	err := c.do(ctx, newRequest(http.MethodGet, "/i18n/{locale}", "/i18n/"+url.PathEscape(locale), opts), &translations)
	return translations, err
}

// GetSupportedLocales returns the locale tags the backend serves.
func (c *Client) GetSupportedLocales(ctx context.Context, opts ...RequestOption) ([]string, error) {
	var locales []string
	err := c.do(ctx, newRequest(http.MethodGet, "/i18n/locales", "/i18n/locales", opts), &locales)
	return locales, err
}

// GetCurrentLocale returns the locale the backend suggests for this visitor.
func (c *Client) GetCurrentLocale(ctx context.Context, opts ...RequestOption) (string, error) {
	var locale string
	err := c.do(ctx, newRequest(http.MethodGet, "/i18n/current", "/i18n/current", opts), &locale)
	return locale, err
}

// CreateCheckoutSession starts a hosted checkout and returns its redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateCheckoutSessionRequest, opts ...RequestOption) (CheckoutSession, error) {
	var v validator
	v.require("productSlug", req.ProductSlug)
	v.require("email", req.Email)
	v.check(req.Qty >= 1, "qty", "must be at least 1")
	if err := v.err(); err != nil {
		return CheckoutSession{}, err
	}

	r, err := newRequest(http.MethodPost, "/orders/checkout-session", "/orders/checkout-session", opts).withJSON(req)
	if err != nil {
		return CheckoutSession{}, err
	}
	var session CheckoutSession
	err = c.do(ctx, r.withIdempotencyKey(), &session)
	return session, err
}

// GetCheckoutSessionStatus returns the status of a checkout session.
func (c *Client) GetCheckoutSessionStatus(ctx context.Context, sessionID string, opts ...RequestOption) (string, error) {
	var v validator
	v.require("sessionId", sessionID)
	if err := v.err(); err != nil {
		return "", err
	}

	r := newRequest(http.MethodGet, "/orders/checkout-session/status", "/orders/checkout-session/status", opts)
	r.query = url.Values{"sessionId": {sessionID}}

	var status string
	err := c.do(ctx, r, &status)
	return status, err
}

package client

// Pageable describes the page request echoed by the backend.
type Pageable struct {
	Unpaged    bool `json:"unpaged,omitempty"`
	Paged      bool `json:"paged,omitempty"`
	PageNumber int  `json:"pageNumber,omitempty"`
	PageSize   int  `json:"pageSize,omitempty"`
	Offset     int  `json:"offset,omitempty"`
	Sort       Sort `json:"sort,omitempty"`
}

// Sort describes the sort order of a page.
type Sort struct {
	Unsorted bool `json:"unsorted,omitempty"`
	Sorted   bool `json:"sorted,omitempty"`
	Empty    bool `json:"empty,omitempty"`
}

// Product is the admin view of a product.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ShortDesc   string `json:"shortDesc"`
	LongDesc    string `json:"longDesc"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	Quantity    int    `json:"quantity"`
	IsPublished bool   `json:"isPublished"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ProductCard is the summary shown in product listings.
// Price is a display string such as "€45.00".
type ProductCard struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
	ThumbnailURL string `json:"thumbnailUrl"`
	InStock      bool   `json:"inStock"`
}

// ProductDetail is the full public view of a product.
type ProductDetail struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Price     string   `json:"price"`
	Currency  string   `json:"currency"`
	LongDesc  string   `json:"longDesc"`
	Quantity  int      `json:"quantity"`
	Photos    []string `json:"photos"`
	UpdatedAt string   `json:"updatedAt"`
	InStock   bool     `json:"inStock"`
}

// ProductPage is one page of product cards.
type ProductPage struct {
	TotalElements    int64         `json:"totalElements"`
	TotalPages       int           `json:"totalPages"`
	Pageable         Pageable      `json:"pageable"`
	NumberOfElements int           `json:"numberOfElements"`
	First            bool          `json:"first"`
	Last             bool          `json:"last"`
	Size             int           `json:"size"`
	Content          []ProductCard `json:"content"`
	Number           int           `json:"number"`
	Sort             Sort          `json:"sort"`
	Empty            bool          `json:"empty"`
}

// Slugs returns the slugs of the cards on the page, in order.
func (p ProductPage) Slugs() []string {
	slugs := make([]string, 0, len(p.Content))
	for _, card := range p.Content {
		if card.Slug != "" {
			slugs = append(slugs, card.Slug)
		}
	}
	return slugs
}

// ProductQuery selects a page of products. Nil Page and Size are omitted
// from the request so the backend applies its own defaults.
type ProductQuery struct {
	Q    string
	Page *int
	Size *int
}

// Int returns a pointer to v, for optional query fields.
func Int(v int) *int {
	return &v
}

// Page is the admin view of a content page.
type Page struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	ContentMD   string `json:"contentMd"`
	IsPublished bool   `json:"isPublished"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// PageDTO is the public view of a content page.
type PageDTO struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	ContentMD string `json:"contentMd"`
	UpdatedAt string `json:"updatedAt"`
}

// ArtistProfile is the admin view of the artist.
type ArtistProfile struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	HeroImageURL string `json:"heroImageUrl"`
	Socials      string `json:"socials"`
	UpdatedAt    string `json:"updatedAt"`
}

// ArtistDTO is the public view of the artist.
type ArtistDTO struct {
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	HeroImageURL string `json:"heroImageUrl"`
	Socials      string `json:"socials"`
	UpdatedAt    string `json:"updatedAt"`
}

// CreateOrderRequest places a direct order.
type CreateOrderRequest struct {
	ProductID   int64  `json:"productId,omitempty"`
	ProductSlug string `json:"productSlug"`
	Qty         int    `json:"qty"`
	Email       string `json:"email"`
}

// CreateOrderResponse is the backend answer to CreateOrder.
type CreateOrderResponse struct {
	OrderID  int64  `json:"orderId"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// WaitlistRequest subscribes an email to a sold-out product.
type WaitlistRequest struct {
	Email string `json:"email"`
}

// WaitlistStatus is the outcome of a waitlist subscription.
type WaitlistStatus string

const (
	WaitlistAdded             WaitlistStatus = "ADDED"
	WaitlistAlreadySubscribed WaitlistStatus = "ALREADY_SUBSCRIBED"
	WaitlistNotEligible       WaitlistStatus = "NOT_ELIGIBLE"
)

// CreateCheckoutSessionRequest starts a hosted checkout.
type CreateCheckoutSessionRequest struct {
	ProductSlug string `json:"productSlug"`
	Qty         int    `json:"qty"`
	Email       string `json:"email"`
	SuccessURL  string `json:"successUrl,omitempty"`
	CancelURL   string `json:"cancelUrl,omitempty"`
}

// CheckoutSession carries the redirect URL of a hosted checkout.
type CheckoutSession struct {
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
	Status      string `json:"status"`
}

// Translations maps translation keys to strings for one locale.
type Translations map[string]string

// CreateTranslationRequest upserts one translation.
type CreateTranslationRequest struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	Value  string `json:"value"`
}

// Translation is a stored translation row.
type Translation struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Locale    string `json:"locale"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updatedAt"`
}

// BulkTranslationRequest upserts translations keyed by key, then locale.
type BulkTranslationRequest struct {
	Translations map[string]map[string]string `json:"translations"`
}

// FieldError describes a rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problem is the RFC 7807 style error body returned by the backend.
type Problem struct {
	Type      string       `json:"type,omitempty"`
	Title     string       `json:"title,omitempty"`
	Status    int          `json:"status,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	Instance  string       `json:"instance,omitempty"`
	Code      string       `json:"code,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// UpdateProductRequest patches a product; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	ShortDesc   *string `json:"shortDesc,omitempty"`
	LongDesc    *string `json:"longDesc,omitempty"`
	PriceCents  *int64  `json:"priceCents,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// CreateProductRequest creates a product.
type CreateProductRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ShortDesc   string `json:"shortDesc,omitempty"`
	LongDesc    string `json:"longDesc,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency,omitempty"`
	Quantity    int    `json:"quantity"`
	IsPublished bool   `json:"isPublished,omitempty"`
}

// CreatePageRequest creates a content page.
type CreatePageRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ContentMD   string `json:"contentMd,omitempty"`
	IsPublished bool   `json:"isPublished,omitempty"`
}

// UpdatePageRequest patches a content page.
type UpdatePageRequest struct {
	Title       *string `json:"title,omitempty"`
	ContentMD   *string `json:"contentMd,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// UpdateArtistProfileRequest replaces the artist profile.
type UpdateArtistProfileRequest struct {
	Name         string `json:"name"`
	Bio          string `json:"bio,omitempty"`
	HeroImageURL string `json:"heroImageUrl,omitempty"`
	Socials      string `json:"socials,omitempty"`
}

// ProductPhoto is a stored product photo.
type ProductPhoto struct {
	ID        int64   `json:"id"`
	Product   Product `json:"product"`
	URL       string  `json:"url"`
	Alt       string  `json:"alt"`
	SortOrder int     `json:"sortOrder"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// UpdateProductPhotoRequest patches photo metadata.
type UpdateProductPhotoRequest struct {
	URL       *string `json:"url,omitempty"`
	Alt       *string `json:"alt,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
	Width     *int    `json:"width,omitempty"`
	Height    *int    `json:"height,omitempty"`
}

// PhotoUploadResponse is returned after a photo upload.
type PhotoUploadResponse struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SortOrder int    `json:"sortOrder"`
	Filename  string `json:"filename"`
}

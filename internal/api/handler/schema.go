package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Products ---

// createProductRequest is bound from JSON or from the fields of a
// multipart form carrying an "image" file.
type createProductRequest struct {
	Name        string  `json:"name"        form:"name"        validate:"required"`
	Description string  `json:"description" form:"description" validate:"required"`
	Price       float64 `json:"price"       form:"price"       validate:"gte=0"`
	Category    string  `json:"category"    form:"category"    validate:"required"`
	Size        string  `json:"size"        form:"size"`
	Featured    bool    `json:"featured"    form:"featured"`
	ImageURL    string  `json:"imageUrl"    form:"imageUrl"`
}

type setFeaturedRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}

type productResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"imageUrl"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	Size           string    `json:"size,omitempty"`
	Featured       bool      `json:"featured"`
	Sold           bool      `json:"sold"`
	Seller         string    `json:"seller,omitempty"`
	CreatedByAdmin bool      `json:"createdByAdmin"`
	CreatedAt      time.Time `json:"createdAt"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	Total      int64             `json:"total"`
	// Message is set when nothing matched the filters.
	Message string `json:"message,omitempty"`
}

type productSummaryResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Sold  bool    `json:"sold"`
}

// --- Users & sessions ---

type addressBody struct {
	Street   string `json:"street"`
	Postcode string `json:"postcode"`
	City     string `json:"city"`
}

type registerRequest struct {
	Name     string      `json:"name"     validate:"required"`
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Address  addressBody `json:"address"`
	Phone    string      `json:"phone"`
}

// updateUserRequest replaces every editable field; omitted fields are cleared.
type updateUserRequest struct {
	Name    string      `json:"name"  validate:"required"`
	Email   string      `json:"email" validate:"required,email"`
	Address addressBody `json:"address"`
	Phone   string      `json:"phone"`
}

type sessionRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Address   addressBody `json:"address"`
	Phone     string      `json:"phone"`
	Admin     bool        `json:"admin"`
	CreatedAt time.Time   `json:"createdAt"`
}

type registerResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type profileResponse struct {
	userResponse
	Products []productSummaryResponse `json:"products"`
	Orders   []orderResponse          `json:"orders"`
	// AccessToken is only returned by POST /sessions.
	AccessToken string `json:"accessToken,omitempty"`
}

// --- Orders ---

type shippingBody struct {
	Name     string `json:"name"     validate:"required"`
	Street   string `json:"street"   validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
	City     string `json:"city"     validate:"required"`
	Phone    string `json:"phone"    validate:"required"`
}

type placeOrderRequest struct {
	Items    []string     `json:"items"    validate:"required,min=1"`
	Shipping shippingBody `json:"shipping"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Processing Shipped"`
}

type orderResponse struct {
	ID    string   `json:"id"`
	Buyer string   `json:"buyer"`
	Items []string `json:"items"`
	// Products expands Items to name/price; set on order reads.
	Products  []productSummaryResponse `json:"products,omitempty"`
	Shipping  shippingBody             `json:"shipping"`
	Status    string                   `json:"status"`
	Fulfilled bool                     `json:"fulfilled"`
	CreatedAt time.Time                `json:"createdAt"`
}

// --- Diagnostics ---

type routeResponse struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

package handler

import (
	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateProductInput(req createProductRequest, seller *domain.User) ports.CreateProductInput {
	return ports.CreateProductInput{
		Seller:      seller,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Size:        req.Size,
		Featured:    req.Featured,
		ImageURL:    req.ImageURL,
	}
}

func toAddress(a addressBody) domain.Address {
	return domain.Address{Street: a.Street, Postcode: a.Postcode, City: a.City}
}

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  toAddress(req.Address),
		Phone:    req.Phone,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: toAddress(req.Address),
		Phone:   req.Phone,
	}
}

func toPlaceOrderInput(req placeOrderRequest, buyer *domain.User, idempotencyKey string) ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		Buyer: buyer,
		Items: req.Items,
		Shipping: domain.ShippingDetails{
			Name:     req.Shipping.Name,
			Street:   req.Shipping.Street,
			Postcode: req.Shipping.Postcode,
			City:     req.Shipping.City,
			Phone:    req.Shipping.Phone,
		},
		IdempotencyKey: idempotencyKey,
	}
}

// --- Domain → Response ---

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Type:           string(p.Type),
		Name:           p.Name,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Price:          p.Price,
		Category:       p.Category,
		Size:           p.Size,
		Featured:       p.Featured,
		Sold:           p.Sold,
		Seller:         p.SellerID,
		CreatedByAdmin: p.CreatedByAdmin,
		CreatedAt:      p.CreatedAt,
	}
}

func toProductListResponse(r *ports.ListProductsResult) productListResponse {
	resp := productListResponse{
		Products:   make([]productResponse, 0, len(r.Items)),
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
		Total:      r.Total,
	}
	for _, p := range r.Items {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	if r.Total == 0 {
		resp.Message = "no products"
	}
	return resp
}

func toSummaries(items []domain.ProductSummary) []productSummaryResponse {
	out := make([]productSummaryResponse, 0, len(items))
	for _, s := range items {
		out = append(out, productSummaryResponse{ID: s.ID, Name: s.Name, Price: s.Price, Sold: s.Sold})
	}
	return out
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Address: addressBody{
			Street:   u.Address.Street,
			Postcode: u.Address.Postcode,
			City:     u.Address.City,
		},
		Phone:     u.Phone,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}

func toProfileResponse(p *ports.UserProfile) profileResponse {
	resp := profileResponse{
		userResponse: toUserResponse(p.User),
		Products:     toSummaries(p.Products),
		Orders:       make([]orderResponse, 0, len(p.Orders)),
	}
	for _, o := range p.Orders {
		resp.Orders = append(resp.Orders, toOrderViewResponse(o))
	}
	return resp
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := o.Items
	if items == nil {
		items = []string{}
	}
	return orderResponse{
		ID:    o.ID,
		Buyer: o.BuyerID,
		Items: items,
		Shipping: shippingBody{
			Name:     o.Shipping.Name,
			Street:   o.Shipping.Street,
			Postcode: o.Shipping.Postcode,
			City:     o.Shipping.City,
			Phone:    o.Shipping.Phone,
		},
		Status:    string(o.Status),
		Fulfilled: o.Fulfilled,
		CreatedAt: o.CreatedAt,
	}
}

func toOrderViewResponse(v ports.OrderView) orderResponse {
	resp := toOrderResponse(v.Order)
	resp.Products = toSummaries(v.Items)
	return resp
}

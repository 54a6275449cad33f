package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

type registerClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type clientResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type registerProductRequest struct {
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	StockQty    int32           `json:"stock_qty"`
}

type productResponse struct {
	ID           int64     `json:"id"`
	Description  string    `json:"description"`
	UnitPrice    string    `json:"unit_price"`
	StockQty     int32     `json:"stock_qty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type placeOrderRequest struct {
	ClientID int64 `json:"client_id"`
	Items    []struct {
		ProductID       int64 `json:"product_id"`
		Quantity        int32 `json:"quantity"`
		DiscountPercent int32 `json:"discount_percent"`
	} `json:"items"`
}

// orderItemResponse не содержит ссылки на заказ: позиции сериализуются
// только внутри своего заказа.
type orderItemResponse struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"product_id"`
	UnitPrice       string `json:"unit_price"`
	Quantity        int32  `json:"quantity"`
	DiscountPercent int32  `json:"discount_percent"`
	Total           string `json:"total"`
}

type orderResponse struct {
	ID       int64               `json:"id"`
	ClientID int64               `json:"client_id"`
	PlacedAt time.Time           `json:"placed_at"`
	Total    string              `json:"total"`
	Items    []orderItemResponse `json:"items"`
}

type orderSummaryResponse struct {
	OrderID    int64     `json:"order_id"`
	ClientName string    `json:"client_name"`
	PlacedAt   time.Time `json:"placed_at"`
	Total      string    `json:"total"`
}

type orderReportResponse struct {
	Orders     []orderSummaryResponse `json:"orders"`
	GrandTotal string                 `json:"grand_total"`
}

func toClientResponse(client domain.Client) clientResponse {
	return clientResponse{
		ID:           client.ID,
		Name:         client.Name,
		Email:        client.Email,
		RegisteredAt: client.RegisteredAt,
	}
}

func toClientResponses(clients []domain.Client) []clientResponse {
	result := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		result = append(result, toClientResponse(client))
	}
	return result
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:           product.ID,
		Description:  product.Description,
		UnitPrice:    product.UnitPrice.StringFixed(2),
		StockQty:     product.StockQty,
		RegisteredAt: product.RegisteredAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	result := make([]productResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}
	return result
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			UnitPrice:       item.UnitPrice.StringFixed(2),
			Quantity:        item.Quantity,
			DiscountPercent: item.DiscountPercent,
			Total:           item.Total().Round(2).StringFixed(2),
		})
	}
	return orderResponse{
		ID:       order.ID,
		ClientID: order.ClientID,
		PlacedAt: order.PlacedAt,
		Total:    order.Total().StringFixed(2),
		Items:    items,
	}
}

func toOrderReportResponse(report domain.OrderReport) orderReportResponse {
	orders := make([]orderSummaryResponse, 0, len(report.Orders))
	for _, summary := range report.Orders {
		orders = append(orders, orderSummaryResponse{
			OrderID:    summary.OrderID,
			ClientName: summary.ClientName,
			PlacedAt:   summary.PlacedAt,
			Total:      summary.Total.StringFixed(2),
		})
	}
	return orderReportResponse{
		Orders:     orders,
		GrandTotal: report.GrandTotal.StringFixed(2),
	}
}

func (r placeOrderRequest) toDomain() domain.PlaceOrderRequest {
	lines := make([]domain.OrderLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, domain.OrderLine{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return domain.PlaceOrderRequest{ClientID: r.ClientID, Lines: lines}
}

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/shopspring/decimal"
)

// flexID accepts ids sent either as JSON numbers or strings
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// localTime is a backend timestamp. The backend emits zone-less local
// date-times, which are read in the configured location; RFC 3339 values
// keep their own offset.
type localTime string

const localLayout = "2006-01-02T15:04:05"

func (t localTime) in(loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(string(t))
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(localLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return ts, nil
}

type itemDTO struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	SubTotal    decimal.Decimal `json:"subTotal"`
}

type orderDTO struct {
	ID           flexID          `json:"id"`
	ShopID       flexID          `json:"shopId"`
	CustomerName string          `json:"customerName"`
	ShopName     string          `json:"shopName"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Status       string          `json:"status"`
	CreatedAt    localTime       `json:"createdAt"`
	Items        []itemDTO       `json:"items"`
}

func (d *orderDTO) toDomain(loc *time.Location) (order.Order, error) {
	status, err := order.ParseStatus(d.Status)
	if err != nil {
		return order.Order{}, fmt.Errorf("order %s: %w", d.ID, err)
	}
	created, err := d.CreatedAt.in(loc)
	if err != nil {
		return order.Order{}, fmt.Errorf("order %s: %w", d.ID, err)
	}

	o := order.Order{
		ID:           string(d.ID),
		ShopID:       string(d.ShopID),
		ShopName:     d.ShopName,
		CustomerName: d.CustomerName,
		Address:      d.Address,
		Phone:        d.Phone,
		CreatedAt:    created,
		Status:       status,
		TotalPrice:   d.TotalPrice,
		Items:        make([]order.Item, len(d.Items)),
	}
	for i, it := range d.Items {
		o.Items[i] = order.Item{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			SubTotal:    it.SubTotal,
		}
	}
	return o, nil
}

type productDTO struct {
	ID           flexID          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PriceTray    decimal.Decimal `json:"priceTray"`
	PricePortion decimal.Decimal `json:"pricePortion"`
}

func (d *productDTO) toDomain() (order.Product, error) {
	id, err := strconv.ParseInt(string(d.ID), 10, 64)
	if err != nil {
		return order.Product{}, fmt.Errorf("product %q: id must be an integer", d.ID)
	}
	return order.Product{
		ID:           id,
		Name:         d.Name,
		Description:  d.Description,
		PriceTray:    d.PriceTray,
		PricePortion: d.PricePortion,
	}, nil
}

// Credentials log an operator in
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
}

// Package shared contiene DTOs para /v1/shared.
package shared

// StoreView es una tienda partner sin su app key.
type StoreView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	AppID  string `json:"app_id"`
}

type ListResponse struct {
	Stores []StoreView `json:"stores"`
}

// ConnectRequest es el body de POST /v1/shared/connect.
type ConnectRequest struct {
	Domain string `json:"domain" validate:"required,url"`
	AppID  string `json:"app_id" validate:"required"`
	AppKey string `json:"app_key" validate:"required"`
}

type InventoryStateRequest struct {
	SharedCode string `json:"shared_code" validate:"required"`
	CardID     int    `json:"card_id" validate:"gt=0"`
	Num        int    `json:"num" validate:"gt=0"`
}

type TradeRequest struct {
	SharedCode string `json:"shared_code" validate:"required"`
	Contact    string `json:"contact" validate:"required,max=255"`
	Num        int    `json:"num" validate:"gt=0"`
	CardID     int    `json:"card_id" validate:"gt=0"`
	Device     int    `json:"device" validate:"gte=0"`
	Password   string `json:"password" validate:"max=255"`
}

// DataResponse envuelve el data crudo del partner.
type DataResponse struct {
	Data map[string]any `json:"data"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type TradeResponse struct {
	Secret string `json:"secret"`
}

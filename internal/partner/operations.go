package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Connect valida las credenciales contra domain y devuelve el payload de
// conexión del partner (nil si no manda data).
func (c *Client) Connect(ctx context.Context, domain, appID, appKey string) (map[string]any, error) {
	return c.post(ctx, domain, pathConnect, appID, appKey, nil)
}

// Items lista los productos compartidos por la tienda.
func (c *Client) Items(ctx context.Context, s Store) (map[string]any, error) {
	return c.post(ctx, s.Domain, pathItems, s.AppID, s.AppKey, nil)
}

// InventoryState consulta si hay stock para num unidades. La data se ignora.
func (c *Client) InventoryState(ctx context.Context, s Store, sharedCode string, cardID, num int) (bool, error) {
	_, err := c.post(ctx, s.Domain, pathInventoryState, s.AppID, s.AppKey, map[string]string{
		"shared_code": sharedCode,
		"card_id":     strconv.Itoa(cardID),
		"num":         strconv.Itoa(num),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Trade compra en el partner y devuelve el secreto entregado (claves, tarjetas...).
func (c *Client) Trade(ctx context.Context, s Store, sharedCode, contact string, num, cardID, device int, password string) (string, error) {
	data, err := c.post(ctx, s.Domain, pathTrade, s.AppID, s.AppKey, map[string]string{
		"shared_code": sharedCode,
		"contact":     contact,
		"num":         strconv.Itoa(num),
		"card_id":     strconv.Itoa(cardID),
		"device":      strconv.Itoa(device),
		"password":    password,
	})
	if err != nil {
		return "", err
	}
	return toString(data["secret"]), nil
}

// DraftCard pagina las tarjetas precargadas de un producto.
func (c *Client) DraftCard(ctx context.Context, s Store, sharedCode string, page int) (map[string]any, error) {
	return c.post(ctx, s.Domain, pathDraftCard, s.AppID, s.AppKey, map[string]string{
		"sharedCode": sharedCode,
		"page":       strconv.Itoa(page),
	})
}

// Inventory devuelve el inventario de un producto.
func (c *Client) Inventory(ctx context.Context, s Store, sharedCode string) (map[string]any, error) {
	return c.post(ctx, s.Domain, pathInventory, s.AppID, s.AppKey, map[string]string{
		"sharedCode": sharedCode,
	})
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

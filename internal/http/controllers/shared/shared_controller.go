// Package shared contiene el controller admin que hace de proxy al API de
// shared inventory de las tiendas partner.
package shared

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/mallkit/internal/http/dto/shared"
	httperrors "github.com/dropDatabas3/mallkit/internal/http/errors"
	mw "github.com/dropDatabas3/mallkit/internal/http/middlewares"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/partner"
	"github.com/dropDatabas3/mallkit/internal/shared"
	"github.com/dropDatabas3/mallkit/internal/validate"
)

// Partner es lo que el controller usa de partner.Client.
type Partner interface {
	Connect(ctx context.Context, domain, appID, appKey string) (map[string]any, error)
	Items(ctx context.Context, s partner.Store) (map[string]any, error)
	InventoryState(ctx context.Context, s partner.Store, sharedCode string, cardID, num int) (bool, error)
	Trade(ctx context.Context, s partner.Store, sharedCode, contact string, num, cardID, device int, password string) (string, error)
	DraftCard(ctx context.Context, s partner.Store, sharedCode string, page int) (map[string]any, error)
	Inventory(ctx context.Context, s partner.Store, sharedCode string) (map[string]any, error)
}

type SharedController struct {
	stores  shared.Repository
	partner Partner
}

func NewSharedController(stores shared.Repository, p Partner) *SharedController {
	return &SharedController{stores: stores, partner: p}
}

// List maneja GET /v1/shared.
func (c *SharedController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.stores.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	out := dto.ListResponse{Stores: make([]dto.StoreView, 0, len(list))}
	for _, s := range list {
		out.Stores = append(out.Stores, dto.StoreView{ID: s.ID, Name: s.Name, Domain: s.Domain, AppID: s.AppID})
	}
	httperrors.WriteJSON(w, http.StatusOK, out)
}

// Connect maneja POST /v1/shared/connect.
func (c *SharedController) Connect(w http.ResponseWriter, r *http.Request) {
	var in dto.ConnectRequest
	if !httperrors.ReadJSON(w, r, &in) || !valid(w, in) {
		return
	}
	data, err := c.partner.Connect(r.Context(), in.Domain, in.AppID, in.AppKey)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.DataResponse{Data: data})
}

// Items maneja GET /v1/shared/{id}/items.
func (c *SharedController) Items(w http.ResponseWriter, r *http.Request) {
	st, ok := c.store(w, r)
	if !ok {
		return
	}
	data, err := c.partner.Items(r.Context(), st.Partner())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.DataResponse{Data: data})
}

// InventoryState maneja POST /v1/shared/{id}/inventory-state.
func (c *SharedController) InventoryState(w http.ResponseWriter, r *http.Request) {
	st, ok := c.store(w, r)
	if !ok {
		return
	}
	var in dto.InventoryStateRequest
	if !httperrors.ReadJSON(w, r, &in) || !valid(w, in) {
		return
	}
	res, err := c.partner.InventoryState(r.Context(), st.Partner(), in.SharedCode, in.CardID, in.Num)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: res})
}

// Trade maneja POST /v1/shared/{id}/trade.
func (c *SharedController) Trade(w http.ResponseWriter, r *http.Request) {
	st, ok := c.store(w, r)
	if !ok {
		return
	}
	var in dto.TradeRequest
	if !httperrors.ReadJSON(w, r, &in) || !valid(w, in) {
		return
	}
	secret, err := c.partner.Trade(r.Context(), st.Partner(), in.SharedCode, in.Contact, in.Num, in.CardID, in.Device, in.Password)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	logger.From(r.Context()).Info("shared trade completed",
		logger.StoreID(st.ID),
		logger.String("shared_code", in.SharedCode),
		logger.Int("num", in.Num),
		logger.String("admin", adminSubject(r)),
	)
	httperrors.WriteJSON(w, http.StatusOK, dto.TradeResponse{Secret: secret})
}

// DraftCard maneja GET /v1/shared/{id}/draft-card?shared_code=&page=.
func (c *SharedController) DraftCard(w http.ResponseWriter, r *http.Request) {
	st, ok := c.store(w, r)
	if !ok {
		return
	}
	code, ok := sharedCode(w, r)
	if !ok {
		return
	}
	page := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("page debe ser un entero >= 1"))
			return
		}
		page = n
	}
	data, err := c.partner.DraftCard(r.Context(), st.Partner(), code, page)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.DataResponse{Data: data})
}

// Inventory maneja GET /v1/shared/{id}/inventory?shared_code=.
func (c *SharedController) Inventory(w http.ResponseWriter, r *http.Request) {
	st, ok := c.store(w, r)
	if !ok {
		return
	}
	code, ok := sharedCode(w, r)
	if !ok {
		return
	}
	data, err := c.partner.Inventory(r.Context(), st.Partner(), code)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.DataResponse{Data: data})
}

func (c *SharedController) store(w http.ResponseWriter, r *http.Request) (shared.Store, bool) {
	id := chi.URLParam(r, "id")
	st, err := c.stores.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrStoreUnknown)
		} else {
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return shared.Store{}, false
	}
	return st, true
}

// fail traduce errores del partner: conexión => 502, rechazo => 422 con el msg.
func (c *SharedController) fail(w http.ResponseWriter, r *http.Request, err error) {
	var re *partner.RemoteError
	switch {
	case errors.Is(err, partner.ErrConnection):
		httperrors.WriteError(w, httperrors.ErrPartnerUnreachable)
	case errors.As(err, &re):
		httperrors.WriteError(w, httperrors.ErrPartner.WithDescription(re.Msg))
	default:
		logger.From(r.Context()).Error("shared operation failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}

// adminSubject devuelve el "sub" del token admin, si lo hay.
func adminSubject(r *http.Request) string {
	if sub, ok := mw.GetClaims(r.Context())["sub"].(string); ok {
		return sub
	}
	return ""
}

func valid(w http.ResponseWriter, in any) bool {
	if err := validate.Struct(in); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription(err.Error()))
		return false
	}
	return true
}

func sharedCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.TrimSpace(r.URL.Query().Get("shared_code"))
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("shared_code es requerido"))
		return "", false
	}
	return code, true
}

package httpapi

import (
	"net/http"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/selection"

	"github.com/gin-gonic/gin"
)

type selectionView struct {
	selection.Snapshot
	EffectiveStoreID   *int64 `json:"effectiveStoreId"`
	EffectiveCompanyID *int64 `json:"effectiveCompanyId"`
}

func viewOf(cl auth.Claims, snap selection.Snapshot) selectionView {
	v := selectionView{Snapshot: snap}
	if id, ok := selection.EffectiveStore(cl, snap); ok {
		v.EffectiveStoreID = &id
	}
	if id, ok := selection.EffectiveCompany(cl, snap); ok {
		v.EffectiveCompanyID = &id
	}
	return v
}

func (h Handlers) GetSelection(c *gin.Context) {
	snap, err := h.snapshot(c)
	if err != nil {
		h.storeFailure(c, err)
		return
	}
	cl, _ := auth.ClaimsOf(auth.Current(c.Request.Context()))
	c.JSON(http.StatusOK, gin.H{"data": viewOf(cl, snap)})
}

func (h Handlers) ClearSelection(c *gin.Context) {
	if err := h.Sessions.Selection(h.sid(c)).Clear(c.Request.Context()); err != nil {
		h.storeFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) SelectStore(c *gin.Context) {
	storeID, ok := paramID(c, "storeId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.Sessions.Selection(h.sid(c)).Store.Set(ctx, storeID); err != nil {
		h.storeFailure(c, err)
		return
	}
	h.GetSelection(c)
}

// SelectCompany stores the company together with its owner, read from the warehouse API.
func (h Handlers) SelectCompany(c *gin.Context) {
	companyID, ok := paramID(c, "companyId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	comp, err := h.API.Company(ctx, companyID)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	sel := selection.Company{ID: comp.ID, UserID: comp.OwnerID()}
	if sel.ID == 0 {
		sel.ID = companyID
	}
	if err := h.Sessions.Selection(h.sid(c)).Company.Set(ctx, sel); err != nil {
		h.storeFailure(c, err)
		return
	}
	h.GetSelection(c)
}

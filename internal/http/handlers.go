package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/auth"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/factory"
	"github.com/XTakerDAO/token-factory-sub001/internal/networks"
)

type Handler struct {
	factory  *factory.Facade
	networks *networks.Manager
	verifier *auth.Verifier
}

func NewHandler(f *factory.Facade, nets *networks.Manager, verifier *auth.Verifier) *Handler {
	return &Handler{
		factory:  f,
		networks: nets,
		verifier: verifier,
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response{OK: false, Error: HTTPErrorInvalidJSONText})
		return false
	}
	return true
}

func paramAddr(c *gin.Context, name string) (common.Address, bool) {
	addr, err := parseAddr(c.Param(name))
	if err != nil {
		badRequest(c, err)
		return common.Address{}, false
	}
	return addr, true
}

// GET /api/v1/health
func (h *Handler) Health(c *gin.Context) {
	writeOK(c, http.StatusOK, healthOut{Status: "ok", Version: h.factory.Version(), Time: time.Now().UTC()})
}

// GET /api/v1/factory
func (h *Handler) FactoryInfo(c *gin.Context) {
	writeOK(c, http.StatusOK, factoryOut{
		Address:            h.factory.Address(),
		Owner:              h.factory.Owner(),
		Version:            h.factory.Version(),
		NetworkID:          h.factory.GetNetworkId(),
		ServiceFee:         dec(h.factory.GetServiceFee()),
		FeeRecipient:       h.factory.GetFeeRecipient(),
		TotalCreated:       h.factory.GetTotalCreated(),
		TotalFeesCollected: dec(h.factory.GetTotalFeesCollected()),
	})
}

// GET /api/v1/stats
func (h *Handler) Stats(c *gin.Context) {
	writeOK(c, http.StatusOK, gin.H{
		"totalCreated":       h.factory.GetTotalCreated(),
		"totalFeesCollected": dec(h.factory.GetTotalFeesCollected()),
	})
}

// GET /api/v1/events?after=0&limit=100
func (h *Handler) ListEvents(c *gin.Context) {
	after, err := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultEventPageSize)))
	if err != nil || limit <= 0 {
		limit = DefaultEventPageSize
	}
	if limit > MaxEventPageSize {
		limit = MaxEventPageSize
	}
	evs, err := h.factory.Events(c.Request.Context(), after, limit)
	if err != nil {
		writeErr(c, err)
		return
	}
	if evs == nil {
		evs = []events.Event{}
	}
	writeOK(c, http.StatusOK, evs)
}

// POST /api/v1/assets
func (h *Handler) CreateAsset(c *gin.Context) {
	var req createAssetReq
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := req.Config.toConfig()
	if err != nil {
		badRequest(c, err)
		return
	}
	value, err := parseAmount("value", req.Value)
	if err != nil {
		badRequest(c, err)
		return
	}

	var rcpt factory.Receipt
	if req.Template == "" {
		rcpt, err = h.factory.CreateAsset(c.Request.Context(), callerOf(c), cfg, value)
	} else {
		id, perr := parseTemplate(req.Template)
		if perr != nil {
			badRequest(c, perr)
			return
		}
		rcpt, err = h.factory.CreateAssetWithTemplate(c.Request.Context(), callerOf(c), cfg, id, value)
	}
	if err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusCreated, receiptOut{
		Address:    rcpt.Address,
		Creator:    rcpt.Creator,
		FeePaid:    dec(rcpt.FeePaid),
		Refund:     dec(rcpt.Refund),
		ConfigHash: rcpt.ConfigHash,
		TemplateID: rcpt.TemplateID,
		Salt:       rcpt.Salt,
		Nonce:      rcpt.Nonce,
	})
}

// POST /api/v1/assets/validate
func (h *Handler) ValidateConfiguration(c *gin.Context) {
	var req configReq
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := req.Config.toConfig()
	if err != nil {
		badRequest(c, err)
		return
	}
	v := h.factory.ValidateConfiguration(cfg)
	writeOK(c, http.StatusOK, validationOut{Valid: v.Valid, Reason: v.Reason, Code: string(v.Code)})
}

// POST /api/v1/assets/quote
func (h *Handler) QuoteDeploymentCost(c *gin.Context) {
	var req configReq
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := req.Config.toConfig()
	if err != nil {
		badRequest(c, err)
		return
	}
	q := h.factory.QuoteDeploymentCost(cfg)
	writeOK(c, http.StatusOK, quoteOut{
		GasEstimate:   q.GasEstimate,
		GasPrice:      dec(q.GasPrice),
		EstimatedCost: dec(q.EstimatedCost),
		ServiceFee:    dec(q.ServiceFee),
		Total:         dec(q.Total()),
	})
}

// POST /api/v1/assets/predict
func (h *Handler) PredictAssetAddress(c *gin.Context) {
	var req predictReq
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := req.Config.toConfig()
	if err != nil {
		badRequest(c, err)
		return
	}
	creator, err := parseAddr(req.Creator)
	if err != nil {
		badRequest(c, err)
		return
	}
	if req.Template == "" {
		p, err := h.factory.PredictAssetAddress(cfg, creator)
		if err != nil {
			writeErr(c, err)
			return
		}
		writeOK(c, http.StatusOK, p)
		return
	}
	id, err := parseTemplate(req.Template)
	if err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.factory.PredictAssetAddressWithTemplate(cfg, creator, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, p)
}

// GET /api/v1/assets/:asset
func (h *Handler) GetAsset(c *gin.Context) {
	asset, ok := paramAddr(c, "asset")
	if !ok {
		return
	}
	info, err := h.factory.Asset(asset)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, info)
}

// GET /api/v1/assets/:asset/balances/:holder
func (h *Handler) BalanceOf(c *gin.Context) {
	asset, ok := paramAddr(c, "asset")
	if !ok {
		return
	}
	holder, ok := paramAddr(c, "holder")
	if !ok {
		return
	}
	bal, err := h.factory.BalanceOf(asset, holder)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"holder": holder, "balance": dec(bal)})
}

// GET /api/v1/assets/:asset/allowances/:holder/:spender
func (h *Handler) Allowance(c *gin.Context) {
	asset, ok := paramAddr(c, "asset")
	if !ok {
		return
	}
	holder, ok := paramAddr(c, "holder")
	if !ok {
		return
	}
	spender, ok := paramAddr(c, "spender")
	if !ok {
		return
	}
	v, err := h.factory.Allowance(asset, holder, spender)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"holder": holder, "spender": spender, "allowance": dec(v)})
}

// GET /api/v1/creators/:creator/assets
func (h *Handler) AssetsByCreator(c *gin.Context) {
	creator, ok := paramAddr(c, "creator")
	if !ok {
		return
	}
	assets := h.factory.GetAssetsByCreator(creator)
	if assets == nil {
		assets = []common.Address{}
	}
	writeOK(c, http.StatusOK, creatorAssetsOut{
		Creator: creator,
		Count:   h.factory.GetCreatedCountByUser(creator),
		Assets:  assets,
	})
}

// GET /api/v1/symbols/:symbol
func (h *Handler) SymbolDeployed(c *gin.Context) {
	sym := c.Param("symbol")
	writeOK(c, http.StatusOK, gin.H{"symbol": sym, "deployed": h.factory.IsSymbolDeployed(sym)})
}

// GET /api/v1/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	ids := h.factory.ListTemplates()
	out := make([]templateOut, 0, len(ids))
	for _, id := range ids {
		out = append(out, templateOut{ID: id, Implementation: h.factory.GetTemplate(id)})
	}
	writeOK(c, http.StatusOK, out)
}

// GET /api/v1/templates/:id
func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := parseTemplate(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	writeOK(c, http.StatusOK, templateOut{ID: id, Implementation: h.factory.GetTemplate(id)})
}

// GET /api/v1/blueprints
func (h *Handler) ListBlueprints(c *gin.Context) {
	writeOK(c, http.StatusOK, h.factory.Blueprints())
}

// PUT /api/v1/templates/:id
func (h *Handler) AddTemplate(c *gin.Context) {
	id, err := parseTemplate(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	var req templateReq
	if !bindJSON(c, &req) {
		return
	}
	impl, err := parseAddr(req.Implementation)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.factory.AddTemplate(c.Request.Context(), callerOf(c), id, impl); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, templateOut{ID: id, Implementation: impl})
}

// DELETE /api/v1/templates/:id
func (h *Handler) RemoveTemplate(c *gin.Context) {
	id, err := parseTemplate(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.factory.RemoveTemplate(c.Request.Context(), callerOf(c), id); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, templateOut{ID: id})
}

// GET /api/v1/fees
func (h *Handler) GetFees(c *gin.Context) {
	writeOK(c, http.StatusOK, gin.H{
		"serviceFee":     dec(h.factory.GetServiceFee()),
		"recipient":      h.factory.GetFeeRecipient(),
		"totalCollected": dec(h.factory.GetTotalFeesCollected()),
	})
}

// PUT /api/v1/fees/service
func (h *Handler) SetServiceFee(c *gin.Context) {
	var req amountReq
	if !bindJSON(c, &req) {
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.factory.SetServiceFee(c.Request.Context(), callerOf(c), amount); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"serviceFee": dec(amount)})
}

// PUT /api/v1/fees/recipient
func (h *Handler) SetFeeRecipient(c *gin.Context) {
	var req addressReq
	if !bindJSON(c, &req) {
		return
	}
	recipient, err := parseAddr(req.Address)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.factory.SetFeeRecipient(c.Request.Context(), callerOf(c), recipient); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"recipient": recipient})
}

// GET /api/v1/payouts/:recipient
func (h *Handler) GetPayout(c *gin.Context) {
	recipient, ok := paramAddr(c, "recipient")
	if !ok {
		return
	}
	writeOK(c, http.StatusOK, gin.H{"recipient": recipient, "amount": dec(h.factory.GetPayout(recipient))})
}

// POST /api/v1/payouts/withdraw
func (h *Handler) WithdrawPayout(c *gin.Context) {
	caller := callerOf(c)
	amount, err := h.factory.WithdrawPayout(c.Request.Context(), caller)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"recipient": caller, "amount": dec(amount)})
}

// GET /api/v1/owner
func (h *Handler) GetOwner(c *gin.Context) {
	writeOK(c, http.StatusOK, gin.H{"owner": h.factory.Owner()})
}

// POST /api/v1/owner/transfer
func (h *Handler) TransferOwnership(c *gin.Context) {
	var req addressReq
	if !bindJSON(c, &req) {
		return
	}
	next, err := parseAddr(req.Address)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.factory.TransferOwnership(c.Request.Context(), callerOf(c), next); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"owner": next})
}

// POST /api/v1/owner/renounce
func (h *Handler) RenounceOwnership(c *gin.Context) {
	if err := h.factory.RenounceOwnership(c.Request.Context(), callerOf(c)); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"owner": common.Address{}})
}

// POST /api/v1/upgrade
func (h *Handler) UpgradeTo(c *gin.Context) {
	var req versionReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.factory.UpgradeTo(c.Request.Context(), callerOf(c), req.Version); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"version": h.factory.Version()})
}

// GET /api/v1/networks
func (h *Handler) ListNetworks(c *gin.Context) {
	current := h.factory.GetNetworkId()
	out := []networkOut{}
	if h.networks != nil {
		for _, n := range h.networks.List() {
			out = append(out, networkOut{
				Name:       n.Name,
				ChainID:    n.ChainId,
				ChainIDHex: n.ChainIdHex,
				Explorer:   n.Explorer,
				Current:    n.ChainId == current,
			})
		}
	}
	writeOK(c, http.StatusOK, gin.H{"networkId": current, "networks": out})
}

// GET /api/v1/networks/:chainId/supported
func (h *Handler) NetworkSupported(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("chainId"), 0, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"chainId": id, "supported": h.factory.IsNetworkSupported(id)})
}

// tokenCall runs one signed token operation against the asset in the path.
func (h *Handler) tokenCall(c *gin.Context, fn func(caller, asset common.Address) error) {
	asset, ok := paramAddr(c, "asset")
	if !ok {
		return
	}
	if err := fn(callerOf(c), asset); err != nil {
		writeErr(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"asset": asset})
}

// bindTransfer parses a transferReq; from is required only when needFrom.
func bindTransfer(c *gin.Context, needFrom bool) (from, to common.Address, amount *uint256.Int, ok bool) {
	var req transferReq
	if !bindJSON(c, &req) {
		return
	}
	var err error
	if needFrom {
		if from, err = parseAddr(req.From); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.To != "" {
		if to, err = parseAddr(req.To); err != nil {
			badRequest(c, err)
			return
		}
	}
	if amount, err = parseAmount("amount", req.Amount); err != nil {
		badRequest(c, err)
		return
	}
	return from, to, amount, true
}

// POST /api/v1/assets/:asset/transfer
func (h *Handler) Transfer(c *gin.Context) {
	_, to, amount, ok := bindTransfer(c, false)
	if !ok {
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.Transfer(c.Request.Context(), caller, asset, to, amount)
	})
}

// POST /api/v1/assets/:asset/transfer-from
func (h *Handler) TransferFrom(c *gin.Context) {
	from, to, amount, ok := bindTransfer(c, true)
	if !ok {
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.TransferFrom(c.Request.Context(), caller, asset, from, to, amount)
	})
}

// POST /api/v1/assets/:asset/approve
func (h *Handler) Approve(c *gin.Context) {
	var req approveReq
	if !bindJSON(c, &req) {
		return
	}
	spender, err := parseAddr(req.Spender)
	if err != nil {
		badRequest(c, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.Approve(c.Request.Context(), caller, asset, spender, amount)
	})
}

// POST /api/v1/assets/:asset/mint
func (h *Handler) Mint(c *gin.Context) {
	_, to, amount, ok := bindTransfer(c, false)
	if !ok {
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.Mint(c.Request.Context(), caller, asset, to, amount)
	})
}

// POST /api/v1/assets/:asset/burn
func (h *Handler) Burn(c *gin.Context) {
	_, _, amount, ok := bindTransfer(c, false)
	if !ok {
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.Burn(c.Request.Context(), caller, asset, amount)
	})
}

// POST /api/v1/assets/:asset/burn-from
func (h *Handler) BurnFrom(c *gin.Context) {
	from, _, amount, ok := bindTransfer(c, true)
	if !ok {
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.BurnFrom(c.Request.Context(), caller, asset, from, amount)
	})
}

// POST /api/v1/assets/:asset/pause
func (h *Handler) Pause(c *gin.Context) {
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.Pause(c.Request.Context(), caller, asset)
	})
}

// POST /api/v1/assets/:asset/unpause
func (h *Handler) Unpause(c *gin.Context) {
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.Unpause(c.Request.Context(), caller, asset)
	})
}

// POST /api/v1/assets/:asset/ownership
func (h *Handler) TransferTokenOwnership(c *gin.Context) {
	var req addressReq
	if !bindJSON(c, &req) {
		return
	}
	next, err := parseAddr(req.Address)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.tokenCall(c, func(caller, asset common.Address) error {
		return h.factory.TransferTokenOwnership(c.Request.Context(), caller, asset, next)
	})
}

package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/XTakerDAO/token-factory-sub001/internal/auth"
)

// NewRouter mounts the factory API under /api/v1. Mutating routes require a
// signed request.
func NewRouter(h *Handler, allowOrigins []string) *gin.Engine {
	r := gin.Default()

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", auth.HeaderAddress, auth.HeaderSignature, auth.HeaderTimestamp, auth.HeaderNonce},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(allowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowOrigins
	}
	r.Use(cors.New(cfg))

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.GET("/factory", h.FactoryInfo)
		api.GET("/stats", h.Stats)
		api.GET("/events", h.ListEvents)

		api.POST("/assets/validate", h.ValidateConfiguration)
		api.POST("/assets/quote", h.QuoteDeploymentCost)
		api.POST("/assets/predict", h.PredictAssetAddress)
		api.GET("/assets/:asset", h.GetAsset)
		api.GET("/assets/:asset/balances/:holder", h.BalanceOf)
		api.GET("/assets/:asset/allowances/:holder/:spender", h.Allowance)
		api.GET("/creators/:creator/assets", h.AssetsByCreator)
		api.GET("/symbols/:symbol", h.SymbolDeployed)

		api.GET("/templates", h.ListTemplates)
		api.GET("/templates/:id", h.GetTemplate)
		api.GET("/blueprints", h.ListBlueprints)

		api.GET("/fees", h.GetFees)
		api.GET("/payouts/:recipient", h.GetPayout)
		api.GET("/owner", h.GetOwner)

		api.GET("/networks", h.ListNetworks)
		api.GET("/networks/:chainId/supported", h.NetworkSupported)
	}

	signed := api.Group("", requireSignature(h.verifier))
	{
		signed.POST("/assets", h.CreateAsset)

		signed.POST("/assets/:asset/transfer", h.Transfer)
		signed.POST("/assets/:asset/transfer-from", h.TransferFrom)
		signed.POST("/assets/:asset/approve", h.Approve)
		signed.POST("/assets/:asset/mint", h.Mint)
		signed.POST("/assets/:asset/burn", h.Burn)
		signed.POST("/assets/:asset/burn-from", h.BurnFrom)
		signed.POST("/assets/:asset/pause", h.Pause)
		signed.POST("/assets/:asset/unpause", h.Unpause)
		signed.POST("/assets/:asset/ownership", h.TransferTokenOwnership)

		signed.PUT("/templates/:id", h.AddTemplate)
		signed.DELETE("/templates/:id", h.RemoveTemplate)

		signed.PUT("/fees/service", h.SetServiceFee)
		signed.PUT("/fees/recipient", h.SetFeeRecipient)
		signed.POST("/payouts/withdraw", h.WithdrawPayout)

		signed.POST("/owner/transfer", h.TransferOwnership)
		signed.POST("/owner/renounce", h.RenounceOwnership)
		signed.POST("/upgrade", h.UpgradeTo)
	}

	return r
}

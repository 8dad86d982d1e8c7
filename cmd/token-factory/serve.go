package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/XTakerDAO/token-factory-sub001/internal/auth"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/factory"
	clienthttp "github.com/XTakerDAO/token-factory-sub001/internal/http"
	"github.com/XTakerDAO/token-factory-sub001/internal/networks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the factory HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Info("token-factory",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, nets, closeAll, err := openFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	checkRPC(ctx, nets, f.GetNetworkId())
	go logEvents(ctx, f)

	handler := clienthttp.NewHandler(f, nets, auth.NewVerifier(cfg.Server.SignatureWindow))
	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           clienthttp.NewRouter(handler, cfg.Server.AllowOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", addr, "factory", f.Address().Hex(), "chain_id", f.GetNetworkId())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
	return nil
}

// checkRPC warns when the node configured for the factory's chain serves
// another chain or is unreachable.
func checkRPC(ctx context.Context, nets *networks.Manager, chainID uint64) {
	n, ok := nets.FindByChainID(chainID)
	if !ok {
		log.Warn("factory chain is not in the network registry", "chain_id", chainID)
		return
	}
	if n.RpcUrl == "" {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := networks.Verify(probeCtx, n); err != nil {
		log.Warn("rpc endpoint check failed", "network", n.Name, "error", err)
	}
}

func logEvents(ctx context.Context, f *factory.Facade) {
	ch := make(chan events.Event, 64)
	sub := f.Subscribe(ch)
	defer sub.Unsubscribe()
	for {
		select {
		case ev := <-ch:
			log.Info("event", "seq", ev.Seq, "name", ev.Name, "emitter", ev.Emitter.Hex())
		case <-sub.Err():
			return
		case <-ctx.Done():
			return
		}
	}
}
